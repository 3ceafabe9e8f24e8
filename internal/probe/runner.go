package probe

import (
	"bytes"
	"context"
	"os/exec"
	"time"
)

// CmdResult holds the captured output of a finished command.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner runs an external command. Implementations return a CmdResult with
// ExitCode set when the process ran (even non-zero), and an error only when
// it could not be started or was cancelled.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (CmdResult, error)
}

// ExecRunner is the os/exec backed Runner.
type ExecRunner struct{}

// Run executes the command and captures stdout/stderr.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (CmdResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// A killed tool can leave grandchildren holding the pipes open.
	cmd.WaitDelay = time.Second

	err := cmd.Run()

	result := CmdResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && ctx.Err() == nil {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, err
	}

	return result, nil
}
