// Package snapshot makes a directory's head value crash-recoverable by
// treating version-control commits as checkpoints. Opening a snapshot
// discards any uncommitted leftovers from a dead writer; committing writes
// the head's files and seals them in one commit, so a reader after a
// completed commit always sees a mutually consistent set of files.
package snapshot

import (
	"context"
	"fmt"
	"os"

	"coverbuild/internal/gitvc"
)

// defaultMessage replaces an empty commit message.
const defaultMessage = "checkpoint"

// Snapshot holds at most one live head value of type T inside a
// version-controlled directory. The holding process owns the directory tree
// exclusively; there is no cross-process locking.
type Snapshot[T any] struct {
	Dir  string
	git  *gitvc.Git
	head *T
}

// Open ensures dir exists and is a repository (initializing one if absent),
// discards any uncommitted modifications left by a prior crash, and loads
// the head with load — unless the repository has no commits yet, in which
// case the snapshot opens without a head.
func Open[T any](ctx context.Context, g *gitvc.Git, dir string, load func(dir string) (T, error)) (*Snapshot[T], error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir %s: %w", dir, err)
	}

	exists, err := g.Exists(dir)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := g.Init(ctx, dir); err != nil {
			return nil, err
		}
	}

	dirty, err := g.IsDirty(ctx, dir)
	if err != nil {
		return nil, err
	}
	if dirty {
		if err := g.Discard(ctx, dir); err != nil {
			return nil, err
		}
	}

	s := &Snapshot[T]{Dir: dir, git: g}

	_, committed, err := g.Revision(ctx, dir)
	if err != nil {
		return nil, err
	}
	if !committed {
		return s, nil
	}

	head, err := load(dir)
	if err != nil {
		return nil, err
	}
	s.head = &head
	return s, nil
}

// Head returns the current head value, if any.
func (s *Snapshot[T]) Head() (T, bool) {
	if s.head == nil {
		var zero T
		return zero, false
	}
	return *s.head, true
}

// SetHead installs the head value. The first head of a fresh snapshot must
// be installed this way before its initial Commit.
func (s *Snapshot[T]) SetHead(v T) {
	s.head = &v
}

// Commit writes the head's files via sync and checkpoints them in a new
// commit. A commit is taken even when nothing changed. Calling Commit on a
// snapshot without a head is a programming error.
func (s *Snapshot[T]) Commit(ctx context.Context, sync func(dir string, head T) error, message string) error {
	if s.head == nil {
		panic("snapshot: commit without a head")
	}
	if message == "" {
		message = defaultMessage
	}
	if err := sync(s.Dir, *s.head); err != nil {
		return err
	}
	return s.git.CommitAll(ctx, s.Dir, message)
}

// Revision returns the commit id of the latest checkpoint, or ok=false for
// a snapshot that has never committed.
func (s *Snapshot[T]) Revision(ctx context.Context) (string, bool, error) {
	return s.git.Revision(ctx, s.Dir)
}
