package render

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ProbeDuration returns the container duration in seconds as reported by
// ffprobe. The measured value, never a word-count estimate, drives clip
// allocation downstream.
func ProbeDuration(ctx context.Context, path string, logger *zap.Logger) (float64, error) {
	out, err := FFprobe(logger).
		Arg("-v", "error",
			"-show_entries", "format=duration",
			"-of", "default=noprint_wrappers=1:nokey=1",
			path).
		Output(ctx)
	if err != nil {
		return 0, fmt.Errorf("probe %s: %w", filepath.Base(path), err)
	}

	var dur float64
	raw := strings.TrimSpace(out)
	if _, err := fmt.Sscanf(raw, "%f", &dur); err != nil {
		return 0, fmt.Errorf("parse probed duration %q: %w", raw, err)
	}
	if dur <= 0 {
		return 0, fmt.Errorf("probed duration %.3f is not positive", dur)
	}
	return dur, nil
}
