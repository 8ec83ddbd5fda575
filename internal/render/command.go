package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// stderrExcerptLimit bounds how much subprocess stderr an ExecError keeps.
const stderrExcerptLimit = 2048

// Failure classes for media subprocess runs. ErrBinaryMissing and
// ErrPermissionDenied are environment problems, ErrEncoderFailed means the
// installed ffmpeg cannot produce the requested encode.
var (
	ErrBinaryMissing    = errors.New("media binary not found")
	ErrEncoderFailed    = errors.New("encoder failure")
	ErrPermissionDenied = errors.New("filesystem permission denied")
)

// ExecError carries the failed command line and a stderr excerpt so render
// failures can be diagnosed from logs alone.
type ExecError struct {
	Name   string
	Args   []string
	Stderr string
	Err    error
}

func (e *ExecError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s failed: %v: %s", e.Name, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s failed: %v", e.Name, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// Command accumulates subprocess arguments and runs them with captured
// stderr and an optional timeout.
type Command struct {
	name    string
	args    []string
	timeout time.Duration
	logger  *zap.Logger
}

// FFmpeg starts an ffmpeg command line. Output overwrite is always on;
// every invocation targets a fresh or intermediate file.
func FFmpeg(logger *zap.Logger) *Command {
	return &Command{name: "ffmpeg", args: []string{"-y"}, logger: logger}
}

// FFprobe starts an ffprobe command line.
func FFprobe(logger *zap.Logger) *Command {
	return &Command{name: "ffprobe", logger: logger}
}

// Arg appends raw arguments in order.
func (c *Command) Arg(values ...string) *Command {
	c.args = append(c.args, values...)
	return c
}

// Timeout bounds the subprocess runtime.
func (c *Command) Timeout(d time.Duration) *Command {
	c.timeout = d
	return c
}

// Args exposes the accumulated argument list.
func (c *Command) Args() []string { return c.args }

// Run executes the command, discarding stdout.
func (c *Command) Run(ctx context.Context) error {
	_, err := c.run(ctx)
	return err
}

// Output executes the command and returns its stdout.
func (c *Command) Output(ctx context.Context) (string, error) {
	return c.run(ctx)
}

func (c *Command) run(ctx context.Context) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.name, c.args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.logger.Debug("running media command",
		zap.String("binary", c.name),
		zap.Strings("args", c.args))

	if err := cmd.Run(); err != nil {
		return "", c.classify(err, stderr.String())
	}
	return stdout.String(), nil
}

// classify maps a raw subprocess failure onto the known failure classes,
// keeping a stderr excerpt for the report.
func (c *Command) classify(err error, stderr string) error {
	excerpt := tail(strings.TrimSpace(stderr), stderrExcerptLimit)

	cause := err
	switch {
	case errors.Is(err, exec.ErrNotFound):
		cause = fmt.Errorf("%w: %s", ErrBinaryMissing, c.name)
	case isEncoderFailure(excerpt):
		cause = fmt.Errorf("%w: %v", ErrEncoderFailed, err)
	case errors.Is(err, os.ErrPermission) || strings.Contains(strings.ToLower(excerpt), "permission denied"):
		cause = fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}

	return &ExecError{Name: c.name, Args: c.args, Stderr: excerpt, Err: cause}
}

func isEncoderFailure(stderr string) bool {
	lower := strings.ToLower(stderr)
	for _, marker := range []string{"unknown encoder", "encoder not found", "incorrect codec parameters"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// tail keeps the last n bytes; ffmpeg reports the actual failure at the
// end of its stderr stream.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
