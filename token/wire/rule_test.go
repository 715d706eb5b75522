package wire

import (
	"testing"

	"github.com/biscuit-core/biscuit/datalog"
	"github.com/biscuit-core/biscuit/symbol"
	"github.com/biscuit-core/biscuit/term"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeScope(t *testing.T) {
	cases := []datalog.Scope{
		{Kind: datalog.ScopeAuthority},
		{Kind: datalog.ScopePrevious},
		{Kind: datalog.ScopePublicKey, PublicKey: symbol.ID(3)},
	}
	for _, s := range cases {
		b := EncodeScope(s)
		got, err := DecodeScope(b)
		require.NoError(t, err)
		require.Equal(t, s, got)
	}
}

func TestEncodeDecodeRule(t *testing.T) {
	sym := symbol.New()
	resource := sym.Insert("resource")
	result := sym.Insert("result")
	v := term.Variable("x")

	r := datalog.Rule{
		Head: term.Predicate{Name: result, Args: []term.Term{v}},
		Body: []term.Predicate{{Name: resource, Args: []term.Term{v}}},
		Expressions: []datalog.Expression{
			{datalog.ValueOp{Term: term.Bool(true)}},
		},
		Scopes: []datalog.Scope{{Kind: datalog.ScopeAuthority}},
	}

	b, err := EncodeRule(r)
	require.NoError(t, err)
	got, err := DecodeRule(b)
	require.NoError(t, err)

	require.True(t, r.Head.Equal(got.Head))
	require.Len(t, got.Body, 1)
	require.True(t, r.Body[0].Equal(got.Body[0]))
	require.Len(t, got.Expressions, 1)
	require.Equal(t, r.Scopes, got.Scopes)
}

func TestEncodeDecodeCheck(t *testing.T) {
	sym := symbol.New()
	resource := sym.Insert("resource")
	c := datalog.Check{
		Kind: datalog.CheckAll,
		Queries: []datalog.Rule{
			{Body: []term.Predicate{{Name: resource, Args: []term.Term{term.Variable("x")}}}},
		},
	}

	b, err := EncodeCheck(c)
	require.NoError(t, err)
	got, err := DecodeCheck(b)
	require.NoError(t, err)
	require.Equal(t, c.Kind, got.Kind)
	require.Len(t, got.Queries, 1)
}

func TestEncodeDecodePolicy(t *testing.T) {
	sym := symbol.New()
	resource := sym.Insert("resource")
	p := datalog.Policy{
		Kind: datalog.PolicyAllow,
		Queries: []datalog.Rule{
			{Body: []term.Predicate{{Name: resource, Args: []term.Term{term.Variable("x")}}}},
		},
	}

	b, err := EncodePolicy(p)
	require.NoError(t, err)
	got, err := DecodePolicy(b)
	require.NoError(t, err)
	require.Equal(t, p.Kind, got.Kind)
	require.Len(t, got.Queries, 1)
}
