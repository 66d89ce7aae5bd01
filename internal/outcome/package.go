// Package outcome holds the build-outcome vocabulary: package identifiers
// and sets of them, the per-package report, and the overall build status.
// The JSON shapes are a fixed external format shared with the solver and
// builder; decoding is strict and rejects anything that does not match.
package outcome

import (
	"fmt"
	"sort"
	"strings"
)

// PackageID identifies one versioned package. The wire form is
// "name.version", split at the first dot: names never contain dots,
// versions may.
type PackageID struct {
	Name    string
	Version string
}

func (p PackageID) String() string {
	return p.Name + "." + p.Version
}

// Less orders identifiers by name, then version.
func (p PackageID) Less(o PackageID) bool {
	if p.Name != o.Name {
		return p.Name < o.Name
	}
	return p.Version < o.Version
}

// ParsePackageID parses the "name.version" wire form.
func ParsePackageID(s string) (PackageID, error) {
	i := strings.Index(s, ".")
	if i <= 0 || i == len(s)-1 {
		return PackageID{}, fmt.Errorf("malformed package id %q", s)
	}
	return PackageID{Name: s[:i], Version: s[i+1:]}, nil
}

// MarshalText implements encoding.TextMarshaler, so identifiers encode as
// JSON strings wherever they appear.
func (p PackageID) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *PackageID) UnmarshalText(data []byte) error {
	id, err := ParsePackageID(string(data))
	if err != nil {
		return err
	}
	*p = id
	return nil
}

// Set is a set of package identifiers. It encodes as a sorted JSON array.
type Set map[PackageID]struct{}

// NewSet builds a set from the given identifiers.
func NewSet(ids ...PackageID) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts an identifier.
func (s Set) Add(id PackageID) {
	s[id] = struct{}{}
}

// Has reports membership.
func (s Set) Has(id PackageID) bool {
	_, ok := s[id]
	return ok
}

// Len returns the set size.
func (s Set) Len() int { return len(s) }

// Clone returns an independent copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Union returns a new set holding the members of both sets.
func (s Set) Union(o Set) Set {
	out := s.Clone()
	for id := range o {
		out[id] = struct{}{}
	}
	return out
}

// Equal reports whether both sets have exactly the same members.
func (s Set) Equal(o Set) bool {
	if len(s) != len(o) {
		return false
	}
	for id := range s {
		if !o.Has(id) {
			return false
		}
	}
	return true
}

// Sorted returns the members in (name, version) order.
func (s Set) Sorted() []PackageID {
	ids := make([]PackageID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
	return ids
}

// MarshalJSON encodes the set as a sorted array of wire-form strings.
func (s Set) MarshalJSON() ([]byte, error) {
	ids := s.Sorted()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%q", id.String())
	}
	return []byte("[" + strings.Join(parts, ",") + "]"), nil
}

// UnmarshalJSON decodes a JSON array of wire-form strings.
func (s *Set) UnmarshalJSON(data []byte) error {
	var ids []PackageID
	if err := unmarshalStrict(data, &ids); err != nil {
		return err
	}
	*s = NewSet(ids...)
	return nil
}
