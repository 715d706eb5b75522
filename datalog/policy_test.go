package datalog

import (
	"testing"

	"github.com/biscuit-core/biscuit/symbol"
	"github.com/biscuit-core/biscuit/term"
	"github.com/stretchr/testify/require"
)

func TestPolicyEvaluateMatchesAnyQuery(t *testing.T) {
	sym := symbol.New()
	store, resource := factStoreWithResource(sym, "file1")

	v := term.Variable("r")
	p := Policy{Kind: PolicyAllow, Queries: []Rule{{Body: []term.Predicate{{Name: resource, Args: []term.Term{v}}}}}}
	ok, err := p.Evaluate(store, TrustedOrigins(NewOriginSet(0)), Origin(0), sym, nil)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestPolicyEvaluateNoMatch(t *testing.T) {
	sym := symbol.New()
	resource := sym.Insert("resource")
	store := NewFactStore()

	v := term.Variable("r")
	p := Policy{Kind: PolicyDeny, Queries: []Rule{{Body: []term.Predicate{{Name: resource, Args: []term.Term{v}}}}}}
	ok, err := p.Evaluate(store, TrustedOrigins(NewOriginSet(0)), Origin(0), sym, nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPolicyAllowAllAlwaysMatchesEmptyRule(t *testing.T) {
	sym := symbol.New()
	store := NewFactStore()
	p := Policy{Kind: PolicyAllow, Queries: []Rule{{}}}
	ok, err := p.Evaluate(store, TrustedOrigins{}, AuthorizerOrigin, sym, nil)
	require.NoError(t, err)
	require.True(t, ok)
}
