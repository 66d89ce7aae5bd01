package outcome

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Cause classifies where a failed build gave up.
type Cause string

const (
	CauseFetch   Cause = "fetch"
	CauseBuild   Cause = "build"
	CauseInstall Cause = "install"
)

func (c Cause) valid() bool {
	switch c {
	case CauseFetch, CauseBuild, CauseInstall:
		return true
	}
	return false
}

// Report is the outcome of one package attempt. It is a closed union:
// Success, Failure, or Aborted. The sealed method keeps the set closed so
// type switches over it stay exhaustive.
type Report interface {
	reportTag() string
}

// Success records a build that went through. Changes is an opaque payload
// produced by the builder; it is stored and re-emitted byte for byte.
type Success struct {
	Log     []string
	Changes json.RawMessage
}

// Failure records a build that failed during fetch, build, or install.
type Failure struct {
	Log   []string
	Cause Cause
}

// Aborted records a package that was never attempted because every way of
// building it depends on at least one unbuildable package. Deps is never
// empty.
type Aborted struct {
	Deps Set
}

func (Success) reportTag() string { return "success" }
func (Failure) reportTag() string { return "error" }
func (Aborted) reportTag() string { return "aborted" }

// NewAborted builds an Aborted report, enforcing the non-empty invariant.
func NewAborted(deps Set) (Aborted, error) {
	if deps.Len() == 0 {
		return Aborted{}, fmt.Errorf("aborted report with no blocking dependencies")
	}
	return Aborted{Deps: deps}, nil
}

// reportEnvelope is the wire shape shared by all three variants. Pointer
// fields distinguish absent keys from empty values.
type reportEnvelope struct {
	Status  string          `json:"status"`
	Log     *[]string       `json:"log,omitempty"`
	Cause   Cause           `json:"cause,omitempty"`
	Deps    *Set            `json:"deps,omitempty"`
	Changes json.RawMessage `json:"changes,omitempty"`
}

// MarshalReport encodes a report into its tagged wire form.
func MarshalReport(r Report) ([]byte, error) {
	var env reportEnvelope
	switch v := r.(type) {
	case Success:
		log := nonNilLog(v.Log)
		env = reportEnvelope{Status: "success", Log: &log, Changes: v.Changes}
	case Failure:
		if !v.Cause.valid() {
			return nil, fmt.Errorf("invalid failure cause %q", v.Cause)
		}
		log := nonNilLog(v.Log)
		env = reportEnvelope{Status: "error", Log: &log, Cause: v.Cause}
	case Aborted:
		if v.Deps.Len() == 0 {
			return nil, fmt.Errorf("aborted report with no blocking dependencies")
		}
		deps := v.Deps
		env = reportEnvelope{Status: "aborted", Deps: &deps}
	default:
		return nil, fmt.Errorf("unknown report variant %T", r)
	}
	return json.Marshal(env)
}

// UnmarshalReport decodes the tagged wire form, rejecting unknown tags,
// missing keys, and empty Aborted dependency sets.
func UnmarshalReport(data []byte) (Report, error) {
	var env reportEnvelope
	if err := unmarshalStrict(data, &env); err != nil {
		return nil, err
	}

	switch env.Status {
	case "success":
		if env.Log == nil {
			return nil, fmt.Errorf("success report without log")
		}
		if env.Cause != "" || env.Deps != nil {
			return nil, fmt.Errorf("success report with foreign keys")
		}
		return Success{Log: *env.Log, Changes: env.Changes}, nil
	case "error":
		if env.Log == nil {
			return nil, fmt.Errorf("error report without log")
		}
		if !env.Cause.valid() {
			return nil, fmt.Errorf("error report with invalid cause %q", env.Cause)
		}
		if env.Deps != nil || env.Changes != nil {
			return nil, fmt.Errorf("error report with foreign keys")
		}
		return Failure{Log: *env.Log, Cause: env.Cause}, nil
	case "aborted":
		if env.Log != nil || env.Cause != "" || env.Changes != nil {
			return nil, fmt.Errorf("aborted report with foreign keys")
		}
		if env.Deps == nil || env.Deps.Len() == 0 {
			return nil, fmt.Errorf("aborted report with no blocking dependencies")
		}
		return Aborted{Deps: *env.Deps}, nil
	default:
		return nil, fmt.Errorf("unknown report status %q", env.Status)
	}
}

// ReportEqual compares two reports by variant and payload. Opaque raw
// payloads compare under JSON compaction, since the file codec may reindent
// them.
func ReportEqual(a, b Report) bool {
	switch av := a.(type) {
	case Success:
		bv, ok := b.(Success)
		return ok && logEqual(av.Log, bv.Log) && RawEqual(av.Changes, bv.Changes)
	case Failure:
		bv, ok := b.(Failure)
		return ok && av.Cause == bv.Cause && logEqual(av.Log, bv.Log)
	case Aborted:
		bv, ok := b.(Aborted)
		return ok && av.Deps.Equal(bv.Deps)
	}
	return false
}

// Entry is one line of the append-only report: a package paired with its
// outcome.
type Entry struct {
	Package PackageID
	Report  Report
}

type entryEnvelope struct {
	Package PackageID       `json:"package"`
	Report  json.RawMessage `json:"report"`
}

// MarshalJSON encodes the entry as {"package": ..., "report": {...}}.
func (e Entry) MarshalJSON() ([]byte, error) {
	rep, err := MarshalReport(e.Report)
	if err != nil {
		return nil, err
	}
	return json.Marshal(entryEnvelope{Package: e.Package, Report: rep})
}

// UnmarshalJSON decodes the entry, applying the strict report decoding.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var env entryEnvelope
	if err := unmarshalStrict(data, &env); err != nil {
		return err
	}
	if len(env.Report) == 0 {
		return fmt.Errorf("report entry for %s without report", env.Package)
	}
	rep, err := UnmarshalReport(env.Report)
	if err != nil {
		return fmt.Errorf("report entry for %s: %w", env.Package, err)
	}
	e.Package = env.Package
	e.Report = rep
	return nil
}

func nonNilLog(log []string) []string {
	if log == nil {
		return []string{}
	}
	return log
}

func logEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// RawEqual compares two opaque JSON payloads ignoring formatting.
func RawEqual(a, b json.RawMessage) bool {
	if len(a) == 0 || len(b) == 0 {
		return len(a) == 0 && len(b) == 0
	}
	var ca, cb bytes.Buffer
	if json.Compact(&ca, a) != nil || json.Compact(&cb, b) != nil {
		return bytes.Equal(a, b)
	}
	return bytes.Equal(ca.Bytes(), cb.Bytes())
}

// unmarshalStrict decodes JSON rejecting unknown object keys.
func unmarshalStrict(data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}
