package datalog

import (
	"testing"

	"github.com/biscuit-core/biscuit/symbol"
	"github.com/biscuit-core/biscuit/term"
	"github.com/stretchr/testify/require"
)

func TestQueryRuleReturnsDedupedBindings(t *testing.T) {
	sym := symbol.New()
	resource := sym.Insert("resource")
	result := sym.Insert("result")

	store := NewFactStore()
	store.Insert(NewOriginSet(0), term.Predicate{Name: resource, Args: []term.Term{term.Integer(1)}})
	store.Insert(NewOriginSet(0), term.Predicate{Name: resource, Args: []term.Term{term.Integer(1)}})
	store.Insert(NewOriginSet(0), term.Predicate{Name: resource, Args: []term.Term{term.Integer(2)}})

	v := term.Variable("r")
	r := Rule{
		Head: term.Predicate{Name: result, Args: []term.Term{v}},
		Body: []term.Predicate{{Name: resource, Args: []term.Term{v}}},
	}

	out, err := QueryRule(r, store, TrustedOrigins(NewOriginSet(0)), Origin(0), sym, nil)
	require.NoError(t, err)
	require.Len(t, out, 2)
}

func TestQueryMatchReportsExistence(t *testing.T) {
	sym := symbol.New()
	resource := sym.Insert("resource")
	store := NewFactStore()
	store.Insert(NewOriginSet(0), term.Predicate{Name: resource, Args: []term.Term{term.Integer(1)}})

	v := term.Variable("r")
	ok, err := QueryMatch(Rule{Body: []term.Predicate{{Name: resource, Args: []term.Term{v}}}},
		store, TrustedOrigins(NewOriginSet(0)), Origin(0), sym, nil)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = QueryMatch(Rule{Body: []term.Predicate{{Name: resource, Args: []term.Term{v}}}},
		store, TrustedOrigins{}, Origin(0), sym, nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestQueryMatchAllIsVacuouslyTrueOnNoBindings(t *testing.T) {
	sym := symbol.New()
	operation := sym.Insert("operation")
	store := NewFactStore()

	v := term.Variable("op")
	r := Rule{Body: []term.Predicate{{Name: operation, Args: []term.Term{v}}}}

	ok, err := QueryMatchAll(r, store, TrustedOrigins(NewOriginSet(0)), Origin(0), sym, nil)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestQueryMatchAllRequiresEveryBindingToSatisfyExpressions(t *testing.T) {
	sym := symbol.New()
	operation := sym.Insert("operation")
	store := NewFactStore()
	store.Insert(NewOriginSet(0), term.Predicate{Name: operation, Args: []term.Term{term.String(sym.Insert("read"))}})
	store.Insert(NewOriginSet(0), term.Predicate{Name: operation, Args: []term.Term{term.String(sym.Insert("write"))}})

	v := term.Variable("op")
	r := Rule{Body: []term.Predicate{{Name: operation, Args: []term.Term{v}}},
		Expressions: []Expression{{ValueOp{Term: v}, ValueOp{Term: term.String(sym.Insert("read"))}, BinaryOp{Kind: BinaryEqual}}}}

	ok, err := QueryMatchAll(r, store, TrustedOrigins(NewOriginSet(0)), Origin(0), sym, nil)
	require.NoError(t, err)
	require.False(t, ok)
}
