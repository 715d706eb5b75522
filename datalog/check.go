package datalog

import (
	"github.com/biscuit-core/biscuit/symbol"
	"github.com/biscuit-core/biscuit/term"
)

// CheckKind selects how a Check's queries combine (spec.md §4.5).
type CheckKind byte

const (
	// CheckOne succeeds if at least one query produces a result
	// ("check if").
	CheckOne CheckKind = iota
	// CheckAll succeeds if, for at least one query, every binding of
	// its body satisfies all its expressions (vacuously true when the
	// body has no bindings) ("check all").
	CheckAll
	// CheckReject succeeds if the query produces no result
	// ("reject if").
	CheckReject
)

// Check is a condition that must hold for the token or request to
// remain valid. Queries is one or more rule bodies sharing Kind's
// combinator. Evaluate reports a failing Check as false; the
// Authorizer records it as a FailedCheck naming its origin and keeps
// evaluating the remaining checks and policies (spec.md §4.5).
type Check struct {
	Kind    CheckKind
	Queries []Rule
}

// Evaluate runs c's queries against facts visible from trusted and
// reports whether the check holds.
func (c Check) Evaluate(facts *FactStore, trusted TrustedOrigins, blockID Origin, sym *symbol.Table, externs map[string]ExternFunc) (bool, error) {
	switch c.Kind {
	case CheckOne:
		for _, q := range c.Queries {
			matched, err := queryHasResult(q, facts, trusted, blockID, sym, externs)
			if err != nil {
				return false, err
			}
			if matched {
				return true, nil
			}
		}
		return false, nil

	case CheckAll:
		for _, q := range c.Queries {
			matched, err := QueryMatchAll(q, facts, trusted, blockID, sym, externs)
			if err != nil {
				return false, err
			}
			if matched {
				return true, nil
			}
		}
		return false, nil

	case CheckReject:
		for _, q := range c.Queries {
			matched, err := queryHasResult(q, facts, trusted, blockID, sym, externs)
			if err != nil {
				return false, err
			}
			if matched {
				return false, nil
			}
		}
		return true, nil

	default:
		return false, ErrInvalidType
	}
}

// queryHasResult reports whether q has at least one satisfying binding.
// An error while evaluating one of q.Expressions under a particular
// binding only disqualifies that binding — it does not abort the
// search for other bindings, and does not fail the query (spec.md §4.5
// scenario S6: a check's expression misbehaving on one binding must
// not abort authorization).
func queryHasResult(q Rule, facts *FactStore, trusted TrustedOrigins, blockID Origin, sym *symbol.Table, externs map[string]ExternFunc) (bool, error) {
	found := false
	err := q.join(facts, trusted, 0, Bindings{}, NewOriginSet(), func(b Bindings, _ OriginSet) error {
		for _, expr := range q.Expressions {
			v, err := expr.Evaluate(b, sym, externs)
			if err != nil {
				return nil
			}
			boolVal, isBoolean := v.(term.Bool)
			if !isBoolean || !bool(boolVal) {
				return nil
			}
		}
		found = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}
