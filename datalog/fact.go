package datalog

import "github.com/biscuit-core/biscuit/term"

// Fact is a ground predicate tagged with the set of origins that
// produced it (spec.md §3). Facts are immutable once inserted.
type Fact struct {
	Predicate term.Predicate
	Origins   OriginSet
}

// FactStore is the origin-tagged fact store of spec.md §4.4:
// Map<Origin, Set<Fact>> keyed by origin-set fingerprint, deduplicated
// by structural equality within an origin set.
type FactStore struct {
	byOrigin map[string][]Fact
}

// NewFactStore returns an empty store.
func NewFactStore() *FactStore {
	return &FactStore{byOrigin: make(map[string][]Fact)}
}

// Insert adds a fact if an equal predicate is not already recorded
// under the same origin set. Returns true if the fact was newly
// added.
func (s *FactStore) Insert(origins OriginSet, pred term.Predicate) bool {
	key := origins.key()
	bucket := s.byOrigin[key]
	for _, f := range bucket {
		if f.Predicate.Equal(pred) {
			return false
		}
	}
	s.byOrigin[key] = append(bucket, Fact{Predicate: pred, Origins: origins})
	return true
}

// Len returns the total number of facts across all origins.
func (s *FactStore) Len() int {
	n := 0
	for _, b := range s.byOrigin {
		n += len(b)
	}
	return n
}

// All returns every fact in the store, across all origins.
func (s *FactStore) All() []Fact {
	out := make([]Fact, 0, s.Len())
	for _, b := range s.byOrigin {
		out = append(out, b...)
	}
	return out
}

// Visible returns the facts whose origin set is a subset of trusted
// (spec.md §3 fact-visibility rule), optionally filtered further by
// Predicate.Match against pred: same name and arity, and equal values
// wherever pred has a non-variable argument.
func (s *FactStore) Visible(trusted TrustedOrigins, pred *term.Predicate) []Fact {
	var out []Fact
	for _, b := range s.byOrigin {
		for _, f := range b {
			if !trusted.Subset(f.Origins) {
				continue
			}
			if pred != nil && !f.Predicate.Match(*pred) {
				continue
			}
			out = append(out, f)
		}
	}
	return out
}

// Clone returns an independent copy of s.
func (s *FactStore) Clone() *FactStore {
	out := &FactStore{byOrigin: make(map[string][]Fact, len(s.byOrigin))}
	for k, b := range s.byOrigin {
		out.byOrigin[k] = append([]Fact(nil), b...)
	}
	return out
}
