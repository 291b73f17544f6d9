package common

import (
	"context"
	stderrors "errors"
	"fmt"
	"os/exec"
	"strings"
)

// CmdRunner is interface for executing external commands
type CmdRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// CommandError carries the stderr of a failed external command so callers can
// map tool-specific messages (e.g. yt-dlp's) to friendlier errors
type CommandError struct {
	Name   string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %v: %s", e.Name, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// realCmdRunner implements CmdRunner using os/exec
type realCmdRunner struct{}

// NewCmdRunner creates a new CmdRunner
func NewCmdRunner() CmdRunner {
	return &realCmdRunner{}
}

// Run executes external command with given arguments and returns its stdout
func (r *realCmdRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	if err != nil {
		cmdErr := &CommandError{Name: name, Err: err}
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			cmdErr.Stderr = strings.TrimSpace(string(exitErr.Stderr))
		}
		return out, cmdErr
	}
	return out, nil
}
