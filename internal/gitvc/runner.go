// Package gitvc drives the version-control backend used as an append-only
// commit log. Only a handful of primitives are consumed: init, exists,
// dirty-check, revision, discard-uncommitted, and commit-all.
package gitvc

import (
	"bytes"
	"context"
	"os/exec"
)

// RunOptions controls where a backend command executes.
type RunOptions struct {
	Dir string
}

// RunResult captures the output streams of a finished command.
type RunResult struct {
	Stdout []byte
	Stderr []byte
}

// Runner executes an external command. Tests substitute a fake to assert
// command sequences without a real backend.
type Runner interface {
	Run(ctx context.Context, command string, args []string, opts RunOptions) (RunResult, error)
}

// CmdRunner runs commands via os/exec.
type CmdRunner struct{}

func (CmdRunner) Run(ctx context.Context, command string, args []string, opts RunOptions) (RunResult, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return RunResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}, err
}

var _ Runner = CmdRunner{}
