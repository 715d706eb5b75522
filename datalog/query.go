package datalog

import (
	"github.com/biscuit-core/biscuit/symbol"
	"github.com/biscuit-core/biscuit/term"
)

// QueryRule evaluates r against facts visible from trusted and returns
// every distinct instantiation of r.Head produced; Authorizer.Query
// and Authorizer.QueryAll both return its full result. Results are
// deduplicated by structural equality.
func QueryRule(r Rule, facts *FactStore, trusted TrustedOrigins, blockID Origin, sym *symbol.Table, externs map[string]ExternFunc) ([]term.Predicate, error) {
	var out []term.Predicate
	err := r.join(facts, trusted, 0, Bindings{}, NewOriginSet(), func(b Bindings, _ OriginSet) error {
		for _, expr := range r.Expressions {
			v, err := expr.Evaluate(b, sym, externs)
			if err != nil {
				return nil
			}
			bv, isBool := v.(term.Bool)
			if !isBool || !bool(bv) {
				return nil
			}
		}
		head, err := substitute(r.Head, b)
		if err != nil {
			return err
		}
		for _, existing := range out {
			if existing.Equal(head) {
				return nil
			}
		}
		out = append(out, head)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// QueryMatch reports whether r has at least one satisfying binding,
// without materializing the results (spec.md §4.5's "check if"
// primitive).
func QueryMatch(r Rule, facts *FactStore, trusted TrustedOrigins, blockID Origin, sym *symbol.Table, externs map[string]ExternFunc) (bool, error) {
	return queryHasResult(r, facts, trusted, blockID, sym, externs)
}

// QueryMatchAll reports whether every binding r's body produces
// satisfies every expression in r.Expressions — the universal "check
// all" primitive of spec.md §4.4/§4.5, true vacuously when the body
// produces no bindings at all. An expression-evaluation error on one
// binding only disqualifies that binding, consistent with
// queryHasResult.
func QueryMatchAll(r Rule, facts *FactStore, trusted TrustedOrigins, blockID Origin, sym *symbol.Table, externs map[string]ExternFunc) (bool, error) {
	ok := true
	err := r.join(facts, trusted, 0, Bindings{}, NewOriginSet(), func(b Bindings, _ OriginSet) error {
		for _, expr := range r.Expressions {
			v, err := expr.Evaluate(b, sym, externs)
			if err != nil {
				ok = false
				return nil
			}
			boolVal, isBoolean := v.(term.Bool)
			if !isBoolean || !bool(boolVal) {
				ok = false
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return ok, nil
}
