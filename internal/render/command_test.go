package render

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFFmpegAlwaysOverwrites(t *testing.T) {
	cmd := FFmpeg(zap.NewNop()).Arg("-i", "in.mp4", "out.mp4")
	assert.Equal(t, []string{"-y", "-i", "in.mp4", "out.mp4"}, cmd.Args())
}

func TestCommandAccumulatesArgsInOrder(t *testing.T) {
	cmd := FFprobe(zap.NewNop()).
		Arg("-v", "error").
		Arg("-show_entries", "format=duration").
		Arg("media.mp4")

	assert.Equal(t, []string{"-v", "error", "-show_entries", "format=duration", "media.mp4"}, cmd.Args())
}

func TestRunClassifiesMissingBinary(t *testing.T) {
	cmd := &Command{name: "bookreel-no-such-binary", logger: zap.NewNop()}

	err := cmd.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBinaryMissing)

	var execErr *ExecError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "bookreel-no-such-binary", execErr.Name)
}

func TestClassifyEncoderFailure(t *testing.T) {
	cmd := &Command{name: "ffmpeg", logger: zap.NewNop()}

	err := cmd.classify(errors.New("exit status 1"),
		"[mp4 @ 0x1] Unknown encoder 'libx264'")
	assert.ErrorIs(t, err, ErrEncoderFailed)
}

func TestClassifyPermissionDenied(t *testing.T) {
	cmd := &Command{name: "ffmpeg", logger: zap.NewNop()}

	err := cmd.classify(errors.New("exit status 1"),
		"output/final_video.mp4: Permission denied")
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestClassifyGenericFailureKeepsStderr(t *testing.T) {
	cmd := &Command{name: "ffmpeg", logger: zap.NewNop()}

	err := cmd.classify(errors.New("exit status 1"),
		"Invalid data found when processing input")
	assert.NotErrorIs(t, err, ErrBinaryMissing)
	assert.NotErrorIs(t, err, ErrEncoderFailed)
	assert.NotErrorIs(t, err, ErrPermissionDenied)

	var execErr *ExecError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "Invalid data found when processing input", execErr.Stderr)
	assert.Contains(t, err.Error(), "Invalid data found")
}

func TestClassifyWrapsExecNotFound(t *testing.T) {
	cmd := &Command{name: "ffprobe", logger: zap.NewNop()}

	err := cmd.classify(&exec.Error{Name: "ffprobe", Err: exec.ErrNotFound}, "")
	assert.ErrorIs(t, err, ErrBinaryMissing)
}

func TestStderrExcerptIsBounded(t *testing.T) {
	cmd := &Command{name: "ffmpeg", logger: zap.NewNop()}
	noisy := strings.Repeat("frame= 1234 fps=30\n", 500) + "Conversion failed!"

	err := cmd.classify(errors.New("exit status 1"), noisy)

	var execErr *ExecError
	require.ErrorAs(t, err, &execErr)
	assert.LessOrEqual(t, len(execErr.Stderr), stderrExcerptLimit)
	assert.True(t, strings.HasSuffix(execErr.Stderr, "Conversion failed!"),
		"excerpt should keep the end of stderr")
}
