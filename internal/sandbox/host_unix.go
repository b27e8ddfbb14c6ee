//go:build !windows
// +build !windows

package sandbox

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"syscall"
	"time"
)

const defaultCmdTimeout = 2 * time.Minute

// HostRunner runs commands directly on the host without isolation.
// Used only when Docker is unavailable or explicitly requested.
type HostRunner struct {
	config Config
}

// RunCmd runs a command in workDir with a timeout. timeout <= 0 uses
// the configured default.
func (r *HostRunner) RunCmd(ctx context.Context, workDir, name string, args []string, timeout time.Duration) (Result, error) {
	if timeout <= 0 {
		if r.config.CmdTimeout > 0 {
			timeout = r.config.CmdTimeout
		} else {
			timeout = defaultCmdTimeout
		}
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.Command(name, args...)
	cmd.Dir = workDir
	// New process group so child processes can be killed together.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if err := cmd.Start(); err != nil {
		return Result{}, err
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-cctx.Done():
			if cmd.Process != nil {
				syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
			}
		case <-done:
		}
	}()

	waitErr := cmd.Wait()
	close(done)

	res := Result{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	}

	if waitErr != nil {
		res.Code = 1
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			res.Code = exitErr.ExitCode()
		}
		if errors.Is(cctx.Err(), context.DeadlineExceeded) || errors.Is(cctx.Err(), context.Canceled) {
			res.TimedOut = true
		}
		return res, waitErr
	}

	if errors.Is(cctx.Err(), context.DeadlineExceeded) || errors.Is(cctx.Err(), context.Canceled) {
		res.TimedOut = true
	}

	return res, nil
}
