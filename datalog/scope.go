package datalog

import "github.com/biscuit-core/biscuit/symbol"

// ScopeKind identifies which trust scope a Scope value represents.
type ScopeKind byte

const (
	ScopeAuthority ScopeKind = iota
	ScopePrevious
	ScopePublicKey
)

// Scope is one entry of a rule's explicit scope list (spec.md §4.3).
type Scope struct {
	Kind      ScopeKind
	PublicKey symbol.ID // valid when Kind == ScopePublicKey
}

// PublicKeyIndex maps an interned public key id to the block ids that
// carry it as their external_key (spec.md §9: "Public-key → block-id
// index... a simple map[pk] → vec[block_id] suffices").
type PublicKeyIndex map[symbol.ID][]Origin

// FromScopes resolves a rule's scope list into the TrustedOrigins it
// grants, per spec.md §4.3. An empty list yields {blockID, AUTHORIZER}
// plus the enclosing block's containing scopes; a non-empty list
// starts from {blockID, AUTHORIZER} alone and ignores containing:
//
//	empty scope       -> {blockID, AUTHORIZER} ∪ containing
//	Authority         -> add 0
//	Previous          -> add all ids strictly less than blockID
//	                     (an error for the authorizer itself)
//	PublicKey(pk)     -> add every block whose external_key == pk
func FromScopes(scopes []Scope, containing TrustedOrigins, blockID Origin, index PublicKeyIndex) (TrustedOrigins, error) {
	base := NewOriginSet(blockID, AuthorizerOrigin)

	if len(scopes) == 0 {
		return TrustedOrigins(base.Union(OriginSet(containing))), nil
	}

	out := OriginSet(base)
	for _, s := range scopes {
		switch s.Kind {
		case ScopeAuthority:
			out = out.add(0)
		case ScopePrevious:
			if blockID == AuthorizerOrigin {
				return nil, ErrPreviousScopeOnAuthorizer
			}
			for id := Origin(0); id < blockID; id++ {
				out = out.add(id)
			}
		case ScopePublicKey:
			for _, id := range index[s.PublicKey] {
				out = out.add(id)
			}
		}
	}
	return TrustedOrigins(out), nil
}
