// Package novelty holds the pure decision logic of the monitor: the warm-up
// baseline, the set-difference novelty test and the alert cooldown.
// Nothing here performs I/O.
package novelty

import (
	"sort"
	"strings"
)

// LabelSet is a set of object class labels. The zero value is an empty set
// that can be read but not written; use NewLabelSet to build one.
type LabelSet map[string]struct{}

// NewLabelSet builds a set from the given labels. Duplicates collapse.
func NewLabelSet(labels ...string) LabelSet {
	s := make(LabelSet, len(labels))
	for _, label := range labels {
		s[label] = struct{}{}
	}
	return s
}

// Add inserts a label.
func (s LabelSet) Add(label string) {
	s[label] = struct{}{}
}

// Contains reports whether label is in the set.
func (s LabelSet) Contains(label string) bool {
	_, ok := s[label]
	return ok
}

// Len returns the number of labels.
func (s LabelSet) Len() int {
	return len(s)
}

// IsEmpty reports whether the set has no labels.
func (s LabelSet) IsEmpty() bool {
	return len(s) == 0
}

// Clone returns an independent copy.
func (s LabelSet) Clone() LabelSet {
	c := make(LabelSet, len(s))
	for label := range s {
		c[label] = struct{}{}
	}
	return c
}

// Equal reports whether both sets hold exactly the same labels.
func (s LabelSet) Equal(other LabelSet) bool {
	if len(s) != len(other) {
		return false
	}
	for label := range s {
		if !other.Contains(label) {
			return false
		}
	}
	return true
}

// SubsetOf reports whether every label of s is also in other.
func (s LabelSet) SubsetOf(other LabelSet) bool {
	for label := range s {
		if !other.Contains(label) {
			return false
		}
	}
	return true
}

// Sorted returns the labels in lexical order.
func (s LabelSet) Sorted() []string {
	labels := make([]string, 0, len(s))
	for label := range s {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// String renders the set as a comma separated, sorted list.
func (s LabelSet) String() string {
	return strings.Join(s.Sorted(), ", ")
}
