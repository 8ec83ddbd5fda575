package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Pipeline step labels. A failure is always attributed to exactly one.
const (
	StepValidate  = "validate"
	StepScript    = "script"
	StepVoiceover = "voiceover"
	StepAssets    = "assets"
	StepRender    = "render"
	StepExport    = "export"
)

// Job owns one pipeline run: its id, temp workspace and the cleanup set.
// Concurrent stages may track files and read the step label, hence the
// mutex.
type Job struct {
	ID  string
	Dir string

	mu      sync.Mutex
	step    string
	tracked []string

	logger *zap.Logger
}

// NewJob creates the per-job temp directory. The directory itself is the
// first tracked path, so the final sweep removes everything under it.
func NewJob(tempRoot string, logger *zap.Logger) (*Job, error) {
	id := uuid.NewString()[:8]
	dir := filepath.Join(tempRoot, "bookreel_"+id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create job dir: %w", err)
	}

	j := &Job{
		ID:     id,
		Dir:    dir,
		step:   StepValidate,
		logger: logger.With(zap.String("job_id", id)),
	}
	j.Track(dir)
	return j, nil
}

// SetStep records the stage currently executing.
func (j *Job) SetStep(step string) {
	j.mu.Lock()
	j.step = step
	j.mu.Unlock()
	j.logger.Info("step started", zap.String("step", step))
}

// Step returns the last step set.
func (j *Job) Step() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.step
}

// Track adds a path to the cleanup sweep.
func (j *Job) Track(path string) {
	j.mu.Lock()
	j.tracked = append(j.tracked, path)
	j.mu.Unlock()
}

// TempPath returns a job-scoped file path, tracked for cleanup.
func (j *Job) TempPath(name string) string {
	path := filepath.Join(j.Dir, name)
	j.Track(path)
	return path
}

// Cleanup removes every tracked path, newest first so files go before the
// job directory. It runs on every exit path; artifacts that must survive
// are moved out beforehand.
func (j *Job) Cleanup() {
	j.mu.Lock()
	tracked := make([]string, len(j.tracked))
	copy(tracked, j.tracked)
	j.mu.Unlock()

	for i := len(tracked) - 1; i >= 0; i-- {
		if err := os.RemoveAll(tracked[i]); err != nil {
			j.logger.Warn("cleanup failed",
				zap.String("path", tracked[i]), zap.Error(err))
		}
	}
	j.logger.Debug("workspace swept", zap.Int("paths", len(tracked)))
}
