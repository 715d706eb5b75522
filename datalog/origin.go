// Package datalog implements the bounded Datalog evaluator: origin
// tagged facts, trust-scoped rule application, fixed-point iteration,
// expression evaluation and the query primitives an authorizer drives
// (spec.md §4.3, §4.4).
package datalog

import "sort"

// Origin identifies which block (or the authorizer) produced a fact.
// AuthorizerOrigin is the sentinel for "produced by the authorizer",
// mirroring usize::MAX in the reference implementation (spec.md §3).
type Origin uint64

// AuthorizerOrigin is the sentinel origin for authorizer-supplied
// facts and rules.
const AuthorizerOrigin Origin = ^Origin(0)

// OriginSet is the set of origins that jointly produced a fact,
// represented as a sorted slice (spec.md §9 design note: "a small
// sorted vector of block ids up to the block count").
type OriginSet []Origin

// NewOriginSet returns a sorted, deduplicated OriginSet containing the
// given origins.
func NewOriginSet(origins ...Origin) OriginSet {
	var s OriginSet
	for _, o := range origins {
		s = s.add(o)
	}
	return s
}

func (s OriginSet) add(o Origin) OriginSet {
	i := sort.Search(len(s), func(i int) bool { return s[i] >= o })
	if i < len(s) && s[i] == o {
		return s
	}
	out := make(OriginSet, 0, len(s)+1)
	out = append(out, s[:i]...)
	out = append(out, o)
	out = append(out, s[i:]...)
	return out
}

// Union returns the sorted union of s and o.
func (s OriginSet) Union(o OriginSet) OriginSet {
	out := s
	for _, v := range o {
		out = out.add(v)
	}
	return out
}

// Contains reports whether o is in s.
func (s OriginSet) Contains(o Origin) bool {
	i := sort.Search(len(s), func(i int) bool { return s[i] >= o })
	return i < len(s) && s[i] == o
}

// Equal reports whether s and o contain exactly the same origins.
func (s OriginSet) Equal(o OriginSet) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// key returns a comparable representation usable as a map key.
func (s OriginSet) key() string {
	b := make([]byte, 0, len(s)*9)
	for _, o := range s {
		for i := 0; i < 8; i++ {
			b = append(b, byte(o>>(56-8*i)))
		}
		b = append(b, ',')
	}
	return string(b)
}

// TrustedOrigins is the set of origins a rule is allowed to draw facts
// from (spec.md §4.3). It is built fresh for each rule evaluation from
// that rule's scope list and the enclosing context.
type TrustedOrigins OriginSet

// Contains reports whether o is trusted.
func (t TrustedOrigins) Contains(o Origin) bool {
	return OriginSet(t).Contains(o)
}

// Subset reports whether every origin in o is trusted by t — the
// visibility test of spec.md §3: "A fact is visible to a rule iff its
// origin set is a subset of the rule's TrustedOrigins."
func (t TrustedOrigins) Subset(o OriginSet) bool {
	for _, v := range o {
		if !t.Contains(v) {
			return false
		}
	}
	return true
}
