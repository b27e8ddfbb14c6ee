package tools

import (
	"context"
	"os"
	"time"

	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/engine"
	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/sandbox"
)

const shellTimeout = 60 * time.Second

// NewRunShellCommandTool executes a shell command in a throwaway scratch
// directory. The sandbox runner decides the isolation level.
func NewRunShellCommandTool(runner sandbox.Runner) engine.Tool {
	return engine.Tool{
		Name: "run_shell_command",
		Description: "Runs a shell command and returns its stdout and stderr. " +
			"The command runs in an empty scratch directory with no network access.",
		SchemaJSON: `{"type":"object","properties":{` +
			`"command":{"type":"string","description":"The shell command line to run"}},` +
			`"required":["command"]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			command, err := stringArg(args, "command")
			if err != nil {
				return "", err
			}

			scratch, err := os.MkdirTemp("", "nexo-shell-*")
			if err != nil {
				return "", err
			}
			defer os.RemoveAll(scratch)

			res, err := sandbox.Run(ctx, runner, scratch, command, shellTimeout)
			if err != nil && res.Stdout == "" && res.Stderr == "" {
				return "", err
			}
			return jsonResult(map[string]any{
				"stdout":    res.Stdout,
				"stderr":    res.Stderr,
				"exit_code": res.Code,
				"timed_out": res.TimedOut,
			})
		},
	}
}
