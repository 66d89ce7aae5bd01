package outcome

import (
	"encoding/json"
	"fmt"
)

// Wire keys for the two build-status variants.
const (
	remainingKey = "build_remaining"
	finishedKey  = "build_finished_with_uninst"
)

// Status is the overall state of a switch's build run: a closed union of
// Remaining and FinishedWithUninstallable.
type Status interface {
	statusKey() string
}

// Remaining holds the packages not yet attempted.
type Remaining struct {
	Pkgs Set
}

// FinishedWithUninstallable is terminal: no more attempts are possible and
// Pkgs is the set that could never be built.
type FinishedWithUninstallable struct {
	Pkgs Set
}

func (Remaining) statusKey() string                 { return remainingKey }
func (FinishedWithUninstallable) statusKey() string { return finishedKey }

// StatusEqual reports whether two statuses have the same variant and
// set-equal payload.
func StatusEqual(a, b Status) bool {
	switch av := a.(type) {
	case Remaining:
		bv, ok := b.(Remaining)
		return ok && av.Pkgs.Equal(bv.Pkgs)
	case FinishedWithUninstallable:
		bv, ok := b.(FinishedWithUninstallable)
		return ok && av.Pkgs.Equal(bv.Pkgs)
	}
	return false
}

// MarshalStatus encodes a status as a single-key object.
func MarshalStatus(s Status) ([]byte, error) {
	var pkgs Set
	switch v := s.(type) {
	case Remaining:
		pkgs = v.Pkgs
	case FinishedWithUninstallable:
		pkgs = v.Pkgs
	default:
		return nil, fmt.Errorf("unknown status variant %T", s)
	}
	if pkgs == nil {
		pkgs = NewSet()
	}
	return json.Marshal(map[string]Set{s.statusKey(): pkgs})
}

// UnmarshalStatus decodes the single-key object form, rejecting unknown
// keys and any key count other than one.
func UnmarshalStatus(data []byte) (Status, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if len(raw) != 1 {
		return nil, fmt.Errorf("build status must have exactly one key, got %d", len(raw))
	}
	for key, val := range raw {
		var pkgs Set
		if err := json.Unmarshal(val, &pkgs); err != nil {
			return nil, fmt.Errorf("build status %q: %w", key, err)
		}
		switch key {
		case remainingKey:
			return Remaining{Pkgs: pkgs}, nil
		case finishedKey:
			return FinishedWithUninstallable{Pkgs: pkgs}, nil
		default:
			return nil, fmt.Errorf("unknown build status key %q", key)
		}
	}
	return nil, fmt.Errorf("empty build status")
}
