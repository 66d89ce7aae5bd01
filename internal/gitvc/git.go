package gitvc

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"coverbuild/internal/layout"
)

const (
	defaultBinary         = "git"
	defaultCommitterName  = "coverbuild"
	defaultCommitterEmail = "coverbuild@localhost"
)

// CommandError reports a backend command that exited non-zero. It carries
// the full command line and its combined output; failures are never retried
// at this layer.
type CommandError struct {
	Command string
	Args    []string
	Output  string
	Err     error
}

func (e *CommandError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return fmt.Sprintf("%s %s: %v", e.Command, strings.Join(e.Args, " "), e.Err)
	}
	return fmt.Sprintf("%s %s: %v: %s", e.Command, strings.Join(e.Args, " "), e.Err, out)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Git exposes the backend primitives against arbitrary repository
// directories. The committer identity is forced on every commit so the
// ledger never depends on host git configuration.
type Git struct {
	Binary         string
	Runner         Runner
	CommitterName  string
	CommitterEmail string
}

// New returns a Git backend with defaults filled in.
func New(binary string, runner Runner) *Git {
	if binary == "" {
		binary = defaultBinary
	}
	if runner == nil {
		runner = CmdRunner{}
	}
	return &Git{
		Binary:         binary,
		Runner:         runner,
		CommitterName:  defaultCommitterName,
		CommitterEmail: defaultCommitterEmail,
	}
}

// Exists reports whether dir is already a repository.
func (g *Git) Exists(dir string) (bool, error) {
	return layout.DirExists(filepath.Join(dir, ".git"))
}

// Init initializes a repository in dir.
func (g *Git) Init(ctx context.Context, dir string) error {
	_, err := g.run(ctx, dir, "init", "-q")
	return err
}

// IsDirty reports whether dir has uncommitted modifications or untracked
// files.
func (g *Git) IsDirty(ctx context.Context, dir string) (bool, error) {
	res, err := g.run(ctx, dir, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return len(strings.TrimSpace(string(res.Stdout))) > 0, nil
}

// Revision returns the current head commit id, or ok=false when the
// repository has no commits yet.
func (g *Git) Revision(ctx context.Context, dir string) (string, bool, error) {
	res, err := g.Runner.Run(ctx, g.Binary, []string{"rev-parse", "--verify", "--quiet", "HEAD"}, RunOptions{Dir: dir})
	if err != nil {
		// With --quiet a missing HEAD exits non-zero and says nothing;
		// anything on stderr is a real failure.
		if len(strings.TrimSpace(string(res.Stderr))) == 0 {
			return "", false, nil
		}
		return "", false, g.commandError([]string{"rev-parse", "--verify", "--quiet", "HEAD"}, res, err)
	}
	return strings.TrimSpace(string(res.Stdout)), true, nil
}

// Discard resets working files to the last commit and removes all untracked
// files. A write that never reached a commit is treated as never having
// happened.
func (g *Git) Discard(ctx context.Context, dir string) error {
	_, ok, err := g.Revision(ctx, dir)
	if err != nil {
		return err
	}
	if ok {
		if _, err := g.run(ctx, dir, "reset", "--hard", "-q"); err != nil {
			return err
		}
	}
	_, err = g.run(ctx, dir, "clean", "-fdxq")
	return err
}

// CommitAll stages everything and creates a commit, even when the tree is
// unchanged from the parent: the commit boundary itself is the checkpoint
// unit, not its content.
func (g *Git) CommitAll(ctx context.Context, dir, message string) error {
	if _, err := g.run(ctx, dir, "add", "-A"); err != nil {
		return err
	}
	_, err := g.run(ctx, dir,
		"-c", "user.name="+g.CommitterName,
		"-c", "user.email="+g.CommitterEmail,
		"commit", "-q", "--allow-empty", "-m", message)
	return err
}

func (g *Git) run(ctx context.Context, dir string, args ...string) (RunResult, error) {
	res, err := g.Runner.Run(ctx, g.Binary, args, RunOptions{Dir: dir})
	if err != nil {
		return res, g.commandError(args, res, err)
	}
	return res, nil
}

func (g *Git) commandError(args []string, res RunResult, err error) error {
	output := string(res.Stdout)
	if len(res.Stderr) > 0 {
		output += string(res.Stderr)
	}
	return &CommandError{Command: g.Binary, Args: args, Output: output, Err: err}
}
