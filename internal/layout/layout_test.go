package layout

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveFlag(t *testing.T) {
	root := t.TempDir()

	wp, err := Resolve(root)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if wp.Root != root {
		t.Fatalf("expected root %s, got %s", root, wp.Root)
	}
	if wp.CacheDir != filepath.Join(root, "cache") {
		t.Fatalf("unexpected cache dir %s", wp.CacheDir)
	}
	if wp.SolverRoot != filepath.Join(root, "opamroot") {
		t.Fatalf("unexpected solver root %s", wp.SolverRoot)
	}
	if wp.SwitchesDir != filepath.Join(root, "switches") {
		t.Fatalf("unexpected switches dir %s", wp.SwitchesDir)
	}
	if wp.ConfigFile != filepath.Join(root, "coverbuild.yaml") {
		t.Fatalf("unexpected config file %s", wp.ConfigFile)
	}
}

func TestResolveEmptyUsesCwd(t *testing.T) {
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	wp, err := Resolve("")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if wp.Root != cwd {
		t.Fatalf("expected cwd root %s, got %s", cwd, wp.Root)
	}
}

func TestSwitchPaths(t *testing.T) {
	wp := newWorkspacePaths("/work")
	sp := wp.Switch("ocaml-base-compiler.5.1.1")

	base := filepath.Join("/work", "switches", "ocaml-base-compiler.5.1.1")
	if sp.Dir != base {
		t.Fatalf("unexpected switch dir %s", sp.Dir)
	}
	if sp.LogFile != filepath.Join(base, "log") {
		t.Fatalf("unexpected log file %s", sp.LogFile)
	}
	if sp.CurrentSnapshotDir != filepath.Join(base, "current_timestamp.git") {
		t.Fatalf("unexpected snapshot dir %s", sp.CurrentSnapshotDir)
	}
	if sp.PastSnapshotsDir != filepath.Join(base, "past_timestamps") {
		t.Fatalf("unexpected archive dir %s", sp.PastSnapshotsDir)
	}
	if sp.ArchiveDir("abc") != filepath.Join(base, "past_timestamps", "abc") {
		t.Fatalf("unexpected archive path %s", sp.ArchiveDir("abc"))
	}
}

func TestEnsureDirs(t *testing.T) {
	wp := newWorkspacePaths(filepath.Join(t.TempDir(), "ws"))

	if err := wp.EnsureRoot(); err != nil {
		t.Fatalf("ensure root: %v", err)
	}
	if err := wp.EnsureDirs(); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}
	sp := wp.Switch("sw1")
	if err := sp.EnsureDirs(); err != nil {
		t.Fatalf("ensure switch dirs: %v", err)
	}

	for _, dir := range []string{wp.CacheDir, wp.SwitchesDir, sp.Dir, sp.CurrentSnapshotDir, sp.PastSnapshotsDir} {
		ok, err := DirExists(dir)
		if err != nil || !ok {
			t.Errorf("expected directory %s (ok=%v err=%v)", dir, ok, err)
		}
	}

	// Idempotent on an existing tree.
	if err := wp.EnsureDirs(); err != nil {
		t.Fatalf("re-ensure: %v", err)
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")

	ok, err := FileExists(path)
	if err != nil || ok {
		t.Fatalf("expected missing file, got ok=%v err=%v", ok, err)
	}

	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	ok, err = FileExists(path)
	if err != nil || !ok {
		t.Fatalf("expected file, got ok=%v err=%v", ok, err)
	}

	ok, err = FileExists(dir)
	if err != nil || ok {
		t.Fatalf("expected directory to not count as file, got ok=%v", ok)
	}
}
