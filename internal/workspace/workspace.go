// Package workspace lays out one coverbuild working directory: a shared
// content cache, an externally managed solver root, and one subdirectory
// per build switch, each holding a live checkpointed snapshot plus an
// archive of past ones.
package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"coverbuild/internal/gitvc"
	"coverbuild/internal/layout"
	"coverbuild/internal/progress"
)

// InvalidSwitchError reports a subdirectory of switches/ that is not a
// build switch.
type InvalidSwitchError struct {
	Path string
}

func (e *InvalidSwitchError) Error() string {
	return fmt.Sprintf("not a build switch: %s", e.Path)
}

// Workspace is a loaded working directory and its switches.
type Workspace struct {
	Paths    layout.WorkspacePaths
	Git      *gitvc.Git
	Switches map[string]*Switch
}

// View selects which switches LoadOrCreate brings up.
type View interface {
	load(ctx context.Context, ws *Workspace) error
}

// SingleSwitch loads or initializes exactly one switch, creating its
// directory skeleton as needed.
type SingleSwitch struct {
	ID string
}

// AllSwitches discovers and loads every switch under switches/. Any entry
// that is not a directory fails the load, naming the entry.
type AllSwitches struct{}

// LoadOrCreate ensures the cache and switches directories exist under the
// workspace root, then loads switches according to the view. Re-opening an
// existing workspace is idempotent: present directories are preserved.
func LoadOrCreate(ctx context.Context, g *gitvc.Git, wp layout.WorkspacePaths, view View) (*Workspace, error) {
	if err := wp.EnsureRoot(); err != nil {
		return nil, err
	}
	if err := wp.EnsureDirs(); err != nil {
		return nil, err
	}

	ws := &Workspace{Paths: wp, Git: g, Switches: map[string]*Switch{}}
	if err := view.load(ctx, ws); err != nil {
		return nil, err
	}
	return ws, nil
}

func (v SingleSwitch) load(ctx context.Context, ws *Workspace) error {
	sw, err := openSwitch(ctx, ws.Git, ws.Paths.Switch(v.ID))
	if err != nil {
		return err
	}
	ws.Switches[sw.ID] = sw
	return nil
}

func (AllSwitches) load(ctx context.Context, ws *Workspace) error {
	discovered, err := Discover(ws.Paths)
	if err != nil {
		return err
	}
	for _, sp := range discovered {
		sw, err := openSwitch(ctx, ws.Git, sp)
		if err != nil {
			return err
		}
		ws.Switches[sw.ID] = sw
	}
	return nil
}

// Discover lists the switch directories under switches/ without opening
// them. Any entry that is not a directory fails discovery, naming the
// entry. Read-only observers use this to inspect switches without running
// the crash cleanup that opening a snapshot implies.
func Discover(wp layout.WorkspacePaths) ([]layout.SwitchPaths, error) {
	entries, err := os.ReadDir(wp.SwitchesDir)
	if err != nil {
		return nil, fmt.Errorf("read switches dir: %w", err)
	}

	var out []layout.SwitchPaths
	for _, e := range entries {
		sp := wp.Switch(e.Name())
		if !e.IsDir() {
			return nil, &InvalidSwitchError{Path: sp.Dir}
		}
		out = append(out, sp)
	}
	return out, nil
}

// ReadRecord loads a switch's live record without opening its snapshot. It
// reports ok=false when the switch has never committed a record. Intended
// for read-only inspection; a consistent view is only guaranteed when no
// writer is mid-checkpoint.
func ReadRecord(sp layout.SwitchPaths) (*progress.Record, bool, error) {
	exists, err := layout.FileExists(filepath.Join(sp.CurrentSnapshotDir, layout.TimestampFile))
	if err != nil {
		return nil, false, err
	}
	if !exists {
		return nil, false, nil
	}
	rec, err := progress.Load(sp.CurrentSnapshotDir)
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// Switch returns a loaded switch by id.
func (ws *Workspace) Switch(id string) (*Switch, bool) {
	sw, ok := ws.Switches[id]
	return sw, ok
}

// SwitchIDs returns the loaded switch ids, sorted.
func (ws *Workspace) SwitchIDs() []string {
	ids := make([]string, 0, len(ws.Switches))
	for id := range ws.Switches {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Sync checkpoints every loaded switch with the same message.
func (ws *Workspace) Sync(ctx context.Context, message string) error {
	for _, sw := range ws.Switches {
		if _, ok := sw.Record(); !ok {
			continue
		}
		if err := sw.Sync(ctx, message); err != nil {
			return err
		}
	}
	return nil
}
