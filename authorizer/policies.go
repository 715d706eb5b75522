package authorizer

import (
	"github.com/biscuit-core/biscuit/datalog"
	"github.com/biscuit-core/biscuit/term"
	"github.com/biscuit-core/biscuit/token/wire"
)

// policiesVersion is the wire format version this implementation
// writes for a standalone serialized policy set.
const policiesVersion uint32 = 1

// SerializePolicies encodes the authorizer-local facts, rules, checks
// and policies added directly to a, independent of any loaded token,
// so a host can persist and reload a reusable authorization policy
// set (spec.md §9).
func (a *Authorizer) SerializePolicies() ([]byte, error) {
	return wire.EncodeAuthorizerPolicies(wire.AuthorizerPolicies{
		Version:  policiesVersion,
		Symbols:  a.symbols.Strings(),
		Facts:    a.localFacts,
		Rules:    a.localRules,
		Checks:   a.localChecks,
		Policies: a.policies,
	})
}

// LoadPolicies decodes a policy set produced by SerializePolicies and
// adds its facts, rules, checks and policies to a. It does not replace
// anything already present.
func (a *Authorizer) LoadPolicies(data []byte) error {
	ap, err := wire.DecodeAuthorizerPolicies(data)
	if err != nil {
		return err
	}
	for _, s := range ap.Symbols {
		a.symbols.Insert(s)
	}
	for _, f := range ap.Facts {
		a.AddFact(f)
	}
	for _, r := range ap.Rules {
		a.AddRule(r)
	}
	a.localChecks = append(a.localChecks, ap.Checks...)
	a.policies = append(a.policies, ap.Policies...)
	return nil
}

// Clone returns a copy of a with its own symbol table, its own lists
// of facts, rules, checks and policies, and a reset run cache, so the
// same base policy set can be authorized against many requests without
// re-adding facts and rules each time (spec.md §9 "Authorizer reuse
// via Clone"). The extern registry and the loaded token are shared
// with the receiver. The clone's world is rebuilt from the local facts
// and rules and the token's blocks, so facts derived by an earlier run
// of the receiver are not carried over.
func (a *Authorizer) Clone() *Authorizer {
	clone := &Authorizer{
		symbols:     a.symbols.Clone(),
		pkIndex:     make(datalog.PublicKeyIndex, len(a.pkIndex)),
		externs:     a.externs,
		localScopes: append([]datalog.Scope(nil), a.localScopes...),
		localChecks: append([]datalog.Check(nil), a.localChecks...),
		localFacts:  append([]term.Predicate(nil), a.localFacts...),
		localRules:  append([]datalog.Rule(nil), a.localRules...),
		policies:    append([]datalog.Policy(nil), a.policies...),
		allOrigins:  a.allOrigins,
		tok:         a.tok,
		limits:      a.limits,
	}
	for k, v := range a.pkIndex {
		clone.pkIndex[k] = append([]datalog.Origin(nil), v...)
	}
	clone.world = datalog.NewWorld(clone.symbols, clone.externs)

	for _, f := range clone.localFacts {
		clone.world.Facts.Insert(datalog.NewOriginSet(datalog.AuthorizerOrigin), f)
	}
	containing := datalog.TrustedOrigins(datalog.NewOriginSet(datalog.AuthorizerOrigin, 0))
	for _, r := range clone.localRules {
		clone.world.AddRule(datalog.AuthorizerOrigin, r, containing)
	}

	if clone.tok != nil {
		for _, blk := range clone.tok.Blocks() {
			origin := datalog.Origin(blk.Index)
			trusted, err := blockTrustedOrigins(blk, clone.pkIndex)
			if err != nil {
				continue
			}
			for _, f := range blk.Facts {
				clone.world.Facts.Insert(datalog.NewOriginSet(origin), f)
			}
			for _, r := range blk.Rules {
				clone.world.AddRule(origin, r, trusted)
			}
		}
	}

	return clone
}
