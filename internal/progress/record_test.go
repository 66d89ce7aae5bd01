package progress

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"coverbuild/internal/durable"
	"coverbuild/internal/layout"
	"coverbuild/internal/outcome"
)

func pkg(name, version string) outcome.PackageID {
	return outcome.PackageID{Name: name, Version: version}
}

func elt(solution string, useful ...outcome.PackageID) CoverElement {
	return CoverElement{
		Solution: json.RawMessage(solution),
		Useful:   outcome.NewSet(useful...),
	}
}

func TestCreateInitialState(t *testing.T) {
	dir := t.TempDir()
	pkgs := outcome.NewSet(pkg("a", "1"), pkg("b", "1"))

	r, err := Create(dir, "abc123", pkgs)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if r.Timestamp != "abc123" {
		t.Fatalf("unexpected timestamp %q", r.Timestamp)
	}
	if len(r.Cover) != 0 || r.CurElt != nil || len(r.Report) != 0 {
		t.Fatalf("expected empty record, got %+v", r)
	}
	if !outcome.StatusEqual(r.Status, outcome.Remaining{Pkgs: pkgs}) {
		t.Fatalf("unexpected status %#v", r.Status)
	}

	for _, name := range []string{
		layout.TimestampFile, layout.CoverFile, layout.CurEltFile,
		layout.ReportFile, layout.BuildStatusFile,
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s on disk: %v", name, err)
		}
	}
}

func TestArchiveCurEltTransition(t *testing.T) {
	e := elt(`{"plan":0}`, pkg("e", "1"))
	c1 := elt(`{"plan":1}`, pkg("c", "1"))
	c2 := elt(`{"plan":2}`, pkg("d", "1"))

	r := New("ts", outcome.NewSet())
	r.Cover = []CoverElement{c1, c2}
	r.SetCurrent(e)

	r.ArchiveCurElt()

	if r.CurElt != nil {
		t.Fatal("expected cur_elt cleared")
	}
	if len(r.Cover) != 3 || !r.Cover[0].Equal(e) || !r.Cover[1].Equal(c1) || !r.Cover[2].Equal(c2) {
		t.Fatalf("expected archived element at front, got %+v", r.Cover)
	}

	// Without a current element the archive is a no-op.
	before := len(r.Cover)
	r.ArchiveCurElt()
	if len(r.Cover) != before || r.CurElt != nil {
		t.Fatal("expected no-op archive")
	}
}

func TestAddToReportMonotonic(t *testing.T) {
	r := New("ts", outcome.NewSet(pkg("a", "1"), pkg("b", "1"), pkg("c", "1")))

	first := []outcome.Entry{
		{Package: pkg("a", "1"), Report: outcome.Success{Log: []string{"ok"}}},
	}
	r.AddToReport(first)

	prevBuilt := r.AlreadyBuilt()
	prevLen := len(r.Report)

	next := []outcome.Entry{
		{Package: pkg("b", "1"), Report: outcome.Failure{Log: []string{"boom"}, Cause: outcome.CauseBuild}},
		{Package: pkg("c", "1"), Report: outcome.Aborted{Deps: outcome.NewSet(pkg("b", "1"))}},
	}
	r.AddToReport(next)

	if len(r.Report) != prevLen+len(next) {
		t.Fatalf("expected report length %d, got %d", prevLen+len(next), len(r.Report))
	}
	want := prevBuilt.Union(outcome.NewSet(pkg("b", "1"), pkg("c", "1")))
	if !r.AlreadyBuilt().Equal(want) {
		t.Fatalf("expected already built %v, got %v", want, r.AlreadyBuilt())
	}
	if r.Report[0].Package != pkg("a", "1") || r.Report[1].Package != pkg("b", "1") {
		t.Fatal("expected existing entries first, insertion order preserved")
	}
}

func TestScenarioSyncLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	a, b := pkg("a", "1"), pkg("b", "1")

	r, err := Create(dir, "abc123", outcome.NewSet(a, b))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !outcome.StatusEqual(r.Status, outcome.Remaining{Pkgs: outcome.NewSet(a, b)}) {
		t.Fatalf("unexpected initial status %#v", r.Status)
	}

	r.AddToReport([]outcome.Entry{
		{Package: a, Report: outcome.Success{Log: []string{"ok"}, Changes: json.RawMessage(`{"installed":1}`)}},
	})
	if len(r.Report) != 1 {
		t.Fatalf("expected one report entry, got %d", len(r.Report))
	}

	r.SetRemaining(outcome.NewSet(b))
	if !outcome.StatusEqual(r.Status, outcome.Remaining{Pkgs: outcome.NewSet(b)}) {
		t.Fatalf("unexpected status after set_remaining: %#v", r.Status)
	}

	r.SetCurrent(elt(`{"solution":["a.1"]}`, a))

	if err := r.Sync(dir); err != nil {
		t.Fatalf("sync: %v", err)
	}
	back, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !r.Equal(back) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", back, r)
	}
}

func TestSetFinished(t *testing.T) {
	r := New("ts", outcome.NewSet(pkg("a", "1")))
	r.SetFinished(outcome.NewSet(pkg("a", "1")))
	if !outcome.StatusEqual(r.Status, outcome.FinishedWithUninstallable{Pkgs: outcome.NewSet(pkg("a", "1"))}) {
		t.Fatalf("unexpected status %#v", r.Status)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(dir)
	var missing *durable.MissingError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingError, got %v", err)
	}
}

func TestLoadMalformedFileNamesPath(t *testing.T) {
	dir := t.TempDir()
	if _, err := Create(dir, "ts", outcome.NewSet(pkg("a", "1"))); err != nil {
		t.Fatalf("create: %v", err)
	}

	reportPath := filepath.Join(dir, layout.ReportFile)
	if err := os.WriteFile(reportPath, []byte(`[{"package":"a.1","report":{"status":"nonsense"}}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected error for malformed report")
	}
	var decode *durable.DecodeError
	if !errors.As(err, &decode) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if decode.Path != reportPath {
		t.Fatalf("expected error to name %s, got %s", reportPath, decode.Path)
	}
}

func TestLoadRejectsOverfullCurElt(t *testing.T) {
	dir := t.TempDir()
	if _, err := Create(dir, "ts", outcome.NewSet(pkg("a", "1"))); err != nil {
		t.Fatalf("create: %v", err)
	}

	two := `[{"solution":{},"useful":[]},{"solution":{},"useful":[]}]`
	if err := os.WriteFile(filepath.Join(dir, layout.CurEltFile), []byte(two), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), layout.CurEltFile) {
		t.Fatalf("expected error naming %s, got %v", layout.CurEltFile, err)
	}
}

func TestCurEltFileShape(t *testing.T) {
	dir := t.TempDir()
	r, err := Create(dir, "ts", outcome.NewSet())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, layout.CurEltFile))
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Fatalf("expected empty array, got %s", data)
	}

	r.SetCurrent(elt(`{"plan":1}`, pkg("a", "1")))
	if err := r.Sync(dir); err != nil {
		t.Fatalf("sync: %v", err)
	}

	var arr []CoverElement
	if err := durable.LoadJSON(filepath.Join(dir, layout.CurEltFile), &arr); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(arr) != 1 {
		t.Fatalf("expected one element, got %d", len(arr))
	}
}
