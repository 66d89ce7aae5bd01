package gitvc

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeCall struct {
	command string
	args    []string
	dir     string
}

type fakeResponse struct {
	res RunResult
	err error
}

// fakeRunner records every invocation and replays scripted responses.
type fakeRunner struct {
	calls     []fakeCall
	responses []fakeResponse
}

func (f *fakeRunner) Run(_ context.Context, command string, args []string, opts RunOptions) (RunResult, error) {
	f.calls = append(f.calls, fakeCall{command: command, args: args, dir: opts.Dir})
	if len(f.responses) == 0 {
		return RunResult{}, nil
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp.res, resp.err
}

func argv(c fakeCall) string {
	return strings.Join(c.args, " ")
}

func TestIsDirty(t *testing.T) {
	runner := &fakeRunner{responses: []fakeResponse{
		{res: RunResult{Stdout: []byte(" M cover.json\n?? junk\n")}},
		{res: RunResult{Stdout: []byte("\n")}},
	}}
	g := New("", runner)

	dirty, err := g.IsDirty(context.Background(), "/repo")
	if err != nil {
		t.Fatalf("dirty check: %v", err)
	}
	if !dirty {
		t.Fatal("expected dirty")
	}

	dirty, err = g.IsDirty(context.Background(), "/repo")
	if err != nil {
		t.Fatalf("dirty check: %v", err)
	}
	if dirty {
		t.Fatal("expected clean")
	}

	if argv(runner.calls[0]) != "status --porcelain" {
		t.Fatalf("unexpected command: %s", argv(runner.calls[0]))
	}
	if runner.calls[0].dir != "/repo" {
		t.Fatalf("expected dir /repo, got %s", runner.calls[0].dir)
	}
}

func TestRevision(t *testing.T) {
	runner := &fakeRunner{responses: []fakeResponse{
		{res: RunResult{Stdout: []byte("abc123\n")}},
	}}
	g := New("", runner)

	rev, ok, err := g.Revision(context.Background(), "/repo")
	if err != nil {
		t.Fatalf("revision: %v", err)
	}
	if !ok || rev != "abc123" {
		t.Fatalf("expected abc123, got %q ok=%v", rev, ok)
	}
}

func TestRevisionNoCommits(t *testing.T) {
	// --quiet makes a missing HEAD exit non-zero with silent stderr.
	runner := &fakeRunner{responses: []fakeResponse{
		{err: errors.New("exit status 1")},
	}}
	g := New("", runner)

	_, ok, err := g.Revision(context.Background(), "/repo")
	if err != nil {
		t.Fatalf("expected no error for missing HEAD, got %v", err)
	}
	if ok {
		t.Fatal("expected no revision")
	}
}

func TestRevisionRealFailure(t *testing.T) {
	runner := &fakeRunner{responses: []fakeResponse{
		{res: RunResult{Stderr: []byte("fatal: not a git repository")}, err: errors.New("exit status 128")},
	}}
	g := New("", runner)

	_, _, err := g.Revision(context.Background(), "/repo")
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected CommandError, got %v", err)
	}
	if !strings.Contains(cmdErr.Output, "not a git repository") {
		t.Fatalf("expected output captured, got %q", cmdErr.Output)
	}
}

func TestDiscardResetsAndCleans(t *testing.T) {
	runner := &fakeRunner{responses: []fakeResponse{
		{res: RunResult{Stdout: []byte("abc123\n")}}, // revision
		{}, // reset
		{}, // clean
	}}
	g := New("", runner)

	if err := g.Discard(context.Background(), "/repo"); err != nil {
		t.Fatalf("discard: %v", err)
	}

	if len(runner.calls) != 3 {
		t.Fatalf("expected 3 commands, got %d", len(runner.calls))
	}
	if argv(runner.calls[1]) != "reset --hard -q" {
		t.Fatalf("unexpected reset command: %s", argv(runner.calls[1]))
	}
	if argv(runner.calls[2]) != "clean -fdxq" {
		t.Fatalf("unexpected clean command: %s", argv(runner.calls[2]))
	}
}

func TestDiscardSkipsResetWithoutCommits(t *testing.T) {
	runner := &fakeRunner{responses: []fakeResponse{
		{err: errors.New("exit status 1")}, // revision: none
		{},                                 // clean
	}}
	g := New("", runner)

	if err := g.Discard(context.Background(), "/repo"); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if len(runner.calls) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(runner.calls))
	}
	if argv(runner.calls[1]) != "clean -fdxq" {
		t.Fatalf("unexpected command: %s", argv(runner.calls[1]))
	}
}

func TestCommitAllSequence(t *testing.T) {
	runner := &fakeRunner{}
	g := New("", runner)

	if err := g.CommitAll(context.Background(), "/repo", "checkpoint 42"); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if len(runner.calls) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(runner.calls))
	}
	if argv(runner.calls[0]) != "add -A" {
		t.Fatalf("unexpected stage command: %s", argv(runner.calls[0]))
	}

	commit := argv(runner.calls[1])
	for _, want := range []string{"--allow-empty", "checkpoint 42", "user.name=coverbuild", "user.email=coverbuild@localhost"} {
		if !strings.Contains(commit, want) {
			t.Errorf("expected commit command to contain %q, got %s", want, commit)
		}
	}
}

func TestCommandErrorMessage(t *testing.T) {
	runner := &fakeRunner{responses: []fakeResponse{
		{res: RunResult{Stderr: []byte("fatal: pathspec")}, err: errors.New("exit status 128")},
	}}
	g := New("", runner)

	err := g.Init(context.Background(), "/repo")
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "git init") || !strings.Contains(msg, "fatal: pathspec") {
		t.Fatalf("expected command and output in message, got %q", msg)
	}
}
