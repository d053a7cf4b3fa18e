package model

import "sort"

// CodeSet is a set of distinct code strings. It is the accumulator that
// becomes the final extraction result: a code appears at most once no matter
// how many frames produced it or in which phase.
//
// Design decision: CodeSet itself is not synchronized. The scan worker pool
// merges outcomes at a single mutex-guarded collection point and the
// controller folds them in from one goroutine, so pushing a lock into the
// set would only hide the actual synchronization boundary.
type CodeSet struct {
	codes map[string]struct{}
}

// NewCodeSet creates an empty CodeSet.
func NewCodeSet() *CodeSet {
	return &CodeSet{codes: make(map[string]struct{})}
}

// Add inserts a code into the set. Empty strings are ignored.
func (s *CodeSet) Add(code string) {
	if code == "" {
		return
	}
	s.codes[code] = struct{}{}
}

// AddAll inserts every code from the slice.
func (s *CodeSet) AddAll(codes []string) {
	for _, code := range codes {
		s.Add(code)
	}
}

// Contains reports whether the code is in the set.
func (s *CodeSet) Contains(code string) bool {
	_, ok := s.codes[code]
	return ok
}

// Len returns the number of distinct codes.
func (s *CodeSet) Len() int {
	return len(s.codes)
}

// Slice returns the codes sorted lexicographically.
// Sorting gives deterministic output regardless of worker completion order.
func (s *CodeSet) Slice() []string {
	out := make([]string, 0, len(s.codes))
	for code := range s.codes {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}
