package workspace

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"coverbuild/internal/gitvc"
	"coverbuild/internal/layout"
	"coverbuild/internal/logx"
	"coverbuild/internal/outcome"
	"coverbuild/internal/progress"
	"coverbuild/internal/snapshot"
)

// Switch is one isolated build environment: its directory skeleton, its
// build log, and the live checkpointed snapshot of its progress record.
type Switch struct {
	ID       string
	Paths    layout.SwitchPaths
	Snapshot *snapshot.Snapshot[*progress.Record]

	git *gitvc.Git
}

func openSwitch(ctx context.Context, g *gitvc.Git, sp layout.SwitchPaths) (*Switch, error) {
	if err := sp.EnsureDirs(); err != nil {
		return nil, err
	}

	snap, err := snapshot.Open(ctx, g, sp.CurrentSnapshotDir, progress.Load)
	if err != nil {
		return nil, fmt.Errorf("open switch %s: %w", sp.ID, err)
	}

	return &Switch{ID: sp.ID, Paths: sp, Snapshot: snap, git: g}, nil
}

// OpenLog opens the switch's plain build log for appending. The external
// builder driver writes its output here.
func (s *Switch) OpenLog() (*log.Logger, io.Closer, error) {
	return logx.Open(s.Paths.LogFile)
}

// Record returns the live progress record, if the switch has ever begun a
// run.
func (s *Switch) Record() (*progress.Record, bool) {
	return s.Snapshot.Head()
}

// Begin starts tracking a fresh run against the given solver-root revision
// and package universe, and takes the initial checkpoint. It refuses to
// clobber an existing record.
func (s *Switch) Begin(ctx context.Context, timestamp string, packages outcome.Set) error {
	if _, ok := s.Snapshot.Head(); ok {
		return fmt.Errorf("switch %s already has a live record", s.ID)
	}
	rec := progress.New(timestamp, packages)
	s.Snapshot.SetHead(rec)
	return s.Sync(ctx, fmt.Sprintf("begin run at %s", timestamp))
}

// Sync writes the record's five files and seals them in one commit.
func (s *Switch) Sync(ctx context.Context, message string) error {
	return s.Snapshot.Commit(ctx, func(dir string, rec *progress.Record) error {
		return rec.Sync(dir)
	}, message)
}

// Rotate retires the live snapshot into the archive under its timestamp and
// begins a fresh record for a new solver-root revision. The archived copy
// is read-only history from then on.
func (s *Switch) Rotate(ctx context.Context, timestamp string, packages outcome.Set) error {
	rec, ok := s.Snapshot.Head()
	if !ok {
		return fmt.Errorf("switch %s has no live record to rotate", s.ID)
	}

	dest := s.Paths.ArchiveDir(rec.Timestamp)
	if exists, err := layout.DirExists(dest); err != nil {
		return err
	} else if exists {
		return fmt.Errorf("switch %s already archived timestamp %s", s.ID, rec.Timestamp)
	}
	if err := os.Rename(s.Paths.CurrentSnapshotDir, dest); err != nil {
		return fmt.Errorf("archive snapshot for switch %s: %w", s.ID, err)
	}

	snap, err := snapshot.Open(ctx, s.git, s.Paths.CurrentSnapshotDir, progress.Load)
	if err != nil {
		return fmt.Errorf("reopen switch %s: %w", s.ID, err)
	}
	s.Snapshot = snap
	return s.Begin(ctx, timestamp, packages)
}

// ArchivedTimestamps lists the solver-root revisions with a retired
// snapshot, in directory order.
func (s *Switch) ArchivedTimestamps() ([]string, error) {
	entries, err := os.ReadDir(s.Paths.PastSnapshotsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read archive for switch %s: %w", s.ID, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

// LoadArchived reconstructs a retired record by timestamp.
func (s *Switch) LoadArchived(timestamp string) (*progress.Record, error) {
	return progress.Load(s.Paths.ArchiveDir(timestamp))
}
