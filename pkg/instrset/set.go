// Package instrset computes the set of functions a directed fuzzer should
// instrument to steer execution toward a list of target functions.
package instrset

import (
	"maps"
	"slices"
)

// Set is an unordered collection of function names.
type Set map[string]struct{}

// NewSet builds a Set from the given names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Add inserts name into the set.
func (s Set) Add(name string) {
	s[name] = struct{}{}
}

// Has reports whether name is in the set.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// AddAll inserts every member of other into the set.
func (s Set) AddAll(other Set) {
	maps.Copy(s, other)
}

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	return maps.Clone(s)
}

// Sorted materializes the set as a lexicographically sorted slice.
func (s Set) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}
