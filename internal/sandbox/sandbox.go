// Package sandbox runs shell commands for the agent, preferring Docker
// isolation and falling back to the host when no daemon is reachable.
package sandbox

import (
	"context"
	"time"
)

// Result captures output of a command.
type Result struct {
	Stdout   string
	Stderr   string
	Code     int
	TimedOut bool
}

// Runner executes commands in a working directory with a timeout.
// Implementations should isolate the command from the host where possible.
type Runner interface {
	RunCmd(ctx context.Context, workDir, name string, args []string, timeout time.Duration) (Result, error)
}

// Run executes a full shell command line via sh -c. This is the entry
// point the run_shell_command tool uses.
func Run(ctx context.Context, r Runner, workDir, command string, timeout time.Duration) (Result, error) {
	return r.RunCmd(ctx, workDir, "sh", []string{"-c", command}, timeout)
}
