package datalog

import "github.com/biscuit-core/biscuit/symbol"

// PolicyKind is the effect a matching Policy has on authorization
// (spec.md §4.5).
type PolicyKind byte

const (
	PolicyAllow PolicyKind = iota
	PolicyDeny
)

// Policy is an authorizer-local rule evaluated, in declaration order,
// after the authorizer checks and the authority block's checks
// (whatever their result) and before the attenuation blocks' checks.
// The first Policy whose Queries produce a result decides the outcome
// (spec.md §4.5 "Policies: first-match-wins").
type Policy struct {
	Kind    PolicyKind
	Queries []Rule
}

// Evaluate reports whether any of p's queries match.
func (p Policy) Evaluate(facts *FactStore, trusted TrustedOrigins, blockID Origin, sym *symbol.Table, externs map[string]ExternFunc) (bool, error) {
	for _, q := range p.Queries {
		matched, err := queryHasResult(q, facts, trusted, blockID, sym, externs)
		if err != nil {
			return false, err
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}
