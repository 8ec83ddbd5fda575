package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewJobCreatesWorkspace(t *testing.T) {
	root := t.TempDir()

	job, err := NewJob(root, zap.NewNop())
	require.NoError(t, err)

	assert.Len(t, job.ID, 8)
	assert.True(t, strings.HasPrefix(filepath.Base(job.Dir), "bookreel_"))

	info, err := os.Stat(job.Dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestTempPathIsJobScoped(t *testing.T) {
	job, err := NewJob(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	path := job.TempPath("voiceover.mp3")
	assert.Equal(t, filepath.Join(job.Dir, "voiceover.mp3"), path)
}

func TestCleanupSweepsEverything(t *testing.T) {
	root := t.TempDir()
	job, err := NewJob(root, zap.NewNop())
	require.NoError(t, err)

	for _, name := range []string{"voiceover.mp3", "clip_000.mp4", "captions.srt"} {
		require.NoError(t, os.WriteFile(job.TempPath(name), []byte("x"), 0644))
	}

	job.Cleanup()

	_, statErr := os.Stat(job.Dir)
	assert.True(t, os.IsNotExist(statErr))

	entries, readErr := os.ReadDir(root)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestCleanupToleratesAlreadyGoneFiles(t *testing.T) {
	job, err := NewJob(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	job.Track(filepath.Join(job.Dir, "never_created.tmp"))
	job.Cleanup()

	_, statErr := os.Stat(job.Dir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestStepLabelFollowsLastSet(t *testing.T) {
	job, err := NewJob(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, StepValidate, job.Step())
	job.SetStep(StepScript)
	assert.Equal(t, StepScript, job.Step())
	job.SetStep(StepRender)
	assert.Equal(t, StepRender, job.Step())
}

func TestConcurrentJobsDoNotCollide(t *testing.T) {
	root := t.TempDir()

	first, err := NewJob(root, zap.NewNop())
	require.NoError(t, err)
	second, err := NewJob(root, zap.NewNop())
	require.NoError(t, err)

	assert.NotEqual(t, first.Dir, second.Dir)

	first.Cleanup()
	_, statErr := os.Stat(second.Dir)
	assert.NoError(t, statErr, "sweeping one job must not touch another")
}
