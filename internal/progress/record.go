// Package progress holds the build progress record: the five durable values
// that together describe how far a switch has gotten through its cover.
// Sync writes the files; committing them is the snapshot layer's job, so
// one commit captures all five at once.
package progress

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"coverbuild/internal/durable"
	"coverbuild/internal/layout"
	"coverbuild/internal/outcome"
)

// CoverElement is one solver solution together with the packages it is
// specifically exercising. The solution payload is opaque: stored and
// re-emitted, never interpreted.
type CoverElement struct {
	Solution json.RawMessage `json:"solution"`
	Useful   outcome.Set     `json:"useful"`
}

// Equal compares elements by solution payload and useful set.
func (e CoverElement) Equal(o CoverElement) bool {
	return outcome.RawEqual(e.Solution, o.Solution) && e.Useful.Equal(o.Useful)
}

// Record is the build progress of one switch against one solver-root
// revision. It is checkpointed as a single atomic snapshot.
type Record struct {
	// Timestamp is the solver-root commit id this record corresponds to,
	// not a wall-clock value.
	Timestamp string
	// Cover lists the fully processed elements, most recently archived
	// first.
	Cover []CoverElement
	// CurElt is the element currently being processed, nil when idle.
	CurElt *CoverElement
	// Report is append-only; its order is the attempt order.
	Report []outcome.Entry
	// Status is the two-state remaining/finished build status.
	Status outcome.Status
}

// New returns a fresh record: empty cover, no current element, empty
// report, and all packages remaining.
func New(timestamp string, packages outcome.Set) *Record {
	return &Record{
		Timestamp: timestamp,
		Status:    outcome.Remaining{Pkgs: packages.Clone()},
	}
}

// Create initializes a fresh record and writes it under dir.
func Create(dir, timestamp string, packages outcome.Set) (*Record, error) {
	r := New(timestamp, packages)
	if err := r.Sync(dir); err != nil {
		return nil, err
	}
	return r, nil
}

// ArchiveCurElt moves the current element, if any, to the front of the
// cover. This is the only operation that mutates the cover.
func (r *Record) ArchiveCurElt() {
	if r.CurElt == nil {
		return
	}
	r.Cover = append([]CoverElement{*r.CurElt}, r.Cover...)
	r.CurElt = nil
}

// SetCurrent installs the element now being processed.
func (r *Record) SetCurrent(e CoverElement) {
	r.CurElt = &e
}

// SetRemaining replaces the build status with Remaining(packages),
// discarding whatever status was there. No reconciliation against the
// report happens here; callers own that invariant.
func (r *Record) SetRemaining(packages outcome.Set) {
	r.Status = outcome.Remaining{Pkgs: packages}
}

// SetFinished replaces the build status with the terminal
// FinishedWithUninstallable(packages).
func (r *Record) SetFinished(uninstallable outcome.Set) {
	r.Status = outcome.FinishedWithUninstallable{Pkgs: uninstallable}
}

// AddToReport appends entries to the report, existing entries first.
func (r *Record) AddToReport(entries []outcome.Entry) {
	r.Report = append(r.Report, entries...)
}

// AlreadyBuilt returns the set of packages that have a report entry. It is
// derived, never stored.
func (r *Record) AlreadyBuilt() outcome.Set {
	built := outcome.NewSet()
	for _, e := range r.Report {
		built.Add(e.Package)
	}
	return built
}

// Equal compares two records field by field.
func (r *Record) Equal(o *Record) bool {
	if r.Timestamp != o.Timestamp {
		return false
	}
	if len(r.Cover) != len(o.Cover) {
		return false
	}
	for i := range r.Cover {
		if !r.Cover[i].Equal(o.Cover[i]) {
			return false
		}
	}
	if (r.CurElt == nil) != (o.CurElt == nil) {
		return false
	}
	if r.CurElt != nil && !r.CurElt.Equal(*o.CurElt) {
		return false
	}
	if len(r.Report) != len(o.Report) {
		return false
	}
	for i := range r.Report {
		if r.Report[i].Package != o.Report[i].Package {
			return false
		}
		if !outcome.ReportEqual(r.Report[i].Report, o.Report[i].Report) {
			return false
		}
	}
	return outcome.StatusEqual(r.Status, o.Status)
}

// statusDoc adapts the status union to the durable JSON codec.
type statusDoc struct {
	Status outcome.Status
}

func (d statusDoc) MarshalJSON() ([]byte, error) {
	return outcome.MarshalStatus(d.Status)
}

func (d *statusDoc) UnmarshalJSON(data []byte) error {
	s, err := outcome.UnmarshalStatus(data)
	if err != nil {
		return err
	}
	d.Status = s
	return nil
}

// Load reconstructs a record from the five files under dir. This assumes
// crash cleanup already ran on the snapshot, so any structurally invalid
// file is corruption and surfaces as an error naming the file.
func Load(dir string) (*Record, error) {
	r := &Record{}

	ts, err := durable.LoadRaw(filepath.Join(dir, layout.TimestampFile))
	if err != nil {
		return nil, err
	}
	r.Timestamp = ts

	if err := durable.LoadJSON(filepath.Join(dir, layout.CoverFile), &r.Cover); err != nil {
		return nil, err
	}

	curPath := filepath.Join(dir, layout.CurEltFile)
	var cur []CoverElement
	if err := durable.LoadJSON(curPath, &cur); err != nil {
		return nil, err
	}
	switch len(cur) {
	case 0:
	case 1:
		r.CurElt = &cur[0]
	default:
		return nil, &durable.DecodeError{
			Path: curPath,
			Err:  fmt.Errorf("expected 0 or 1 current elements, got %d", len(cur)),
		}
	}

	if err := durable.LoadJSON(filepath.Join(dir, layout.ReportFile), &r.Report); err != nil {
		return nil, err
	}

	var status statusDoc
	if err := durable.LoadJSON(filepath.Join(dir, layout.BuildStatusFile), &status); err != nil {
		return nil, err
	}
	r.Status = status.Status

	return r, nil
}

// Sync writes all five durable values under dir. It does not commit.
func (r *Record) Sync(dir string) error {
	if err := durable.SyncRaw(filepath.Join(dir, layout.TimestampFile), r.Timestamp); err != nil {
		return err
	}

	cover := r.Cover
	if cover == nil {
		cover = []CoverElement{}
	}
	if err := durable.SyncJSON(filepath.Join(dir, layout.CoverFile), cover); err != nil {
		return err
	}

	cur := []CoverElement{}
	if r.CurElt != nil {
		cur = []CoverElement{*r.CurElt}
	}
	if err := durable.SyncJSON(filepath.Join(dir, layout.CurEltFile), cur); err != nil {
		return err
	}

	report := r.Report
	if report == nil {
		report = []outcome.Entry{}
	}
	if err := durable.SyncJSON(filepath.Join(dir, layout.ReportFile), report); err != nil {
		return err
	}

	return durable.SyncJSON(filepath.Join(dir, layout.BuildStatusFile), statusDoc{Status: r.Status})
}
