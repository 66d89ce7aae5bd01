package layout

import (
	"fmt"
	"os"
	"path/filepath"
)

// Fixed relative names inside a workspace. These are process-wide constants;
// every component receives resolved paths rather than rebuilding them from
// literals.
const (
	ConfigFileName  = "coverbuild.yaml"
	CacheDirName    = "cache"
	SolverRootName  = "opamroot"
	SwitchesDirName = "switches"

	SwitchLogName       = "log"
	CurrentSnapshotName = "current_timestamp.git"
	PastSnapshotsName   = "past_timestamps"

	TimestampFile   = "timestamp"
	CoverFile       = "cover.json"
	CurEltFile      = "cur_elt.json"
	ReportFile      = "report.json"
	BuildStatusFile = "build_status.json"
)

// WorkspacePaths captures canonical locations for a coverbuild workspace.
type WorkspacePaths struct {
	Root        string
	ConfigFile  string
	CacheDir    string
	SolverRoot  string
	SwitchesDir string
}

// SwitchPaths captures canonical locations inside one switch directory.
type SwitchPaths struct {
	ID                 string
	Dir                string
	LogFile            string
	CurrentSnapshotDir string
	PastSnapshotsDir   string
}

// Resolve determines the workspace root using the optional --workdir flag or
// the current working directory when the flag is empty.
func Resolve(workdirFlag string) (WorkspacePaths, error) {
	var (
		root string
		err  error
	)

	if workdirFlag != "" {
		root, err = filepath.Abs(workdirFlag)
	} else {
		root, err = os.Getwd()
	}
	if err != nil {
		return WorkspacePaths{}, fmt.Errorf("resolve workspace root: %w", err)
	}

	return newWorkspacePaths(root), nil
}

func newWorkspacePaths(root string) WorkspacePaths {
	return WorkspacePaths{
		Root:        root,
		ConfigFile:  filepath.Join(root, ConfigFileName),
		CacheDir:    filepath.Join(root, CacheDirName),
		SolverRoot:  filepath.Join(root, SolverRootName),
		SwitchesDir: filepath.Join(root, SwitchesDirName),
	}
}

// Switch returns the path descriptor for the switch with the given id.
func (w WorkspacePaths) Switch(id string) SwitchPaths {
	dir := filepath.Join(w.SwitchesDir, id)
	return SwitchPaths{
		ID:                 id,
		Dir:                dir,
		LogFile:            filepath.Join(dir, SwitchLogName),
		CurrentSnapshotDir: filepath.Join(dir, CurrentSnapshotName),
		PastSnapshotsDir:   filepath.Join(dir, PastSnapshotsName),
	}
}

// EnsureRoot makes sure the workspace root exists on disk.
func (w WorkspacePaths) EnsureRoot() error {
	if err := os.MkdirAll(w.Root, 0o755); err != nil {
		return fmt.Errorf("create workspace root: %w", err)
	}
	return nil
}

// EnsureDirs creates the shared cache and switches directories. The solver
// root is initialized externally and deliberately left alone here.
func (w WorkspacePaths) EnsureDirs() error {
	for _, dir := range []string{w.CacheDir, w.SwitchesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// EnsureDirs creates the switch directory skeleton: the switch dir itself,
// the live snapshot dir, and the archive dir.
func (s SwitchPaths) EnsureDirs() error {
	dirs := []string{s.Dir, s.CurrentSnapshotDir, s.PastSnapshotsDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ArchiveDir returns the archive location for a retired snapshot identified
// by the solver-root revision it tracked.
func (s SwitchPaths) ArchiveDir(timestamp string) string {
	return filepath.Join(s.PastSnapshotsDir, timestamp)
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
