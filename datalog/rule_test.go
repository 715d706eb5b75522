package datalog

import (
	"testing"

	"github.com/biscuit-core/biscuit/symbol"
	"github.com/biscuit-core/biscuit/term"
	"github.com/stretchr/testify/require"
)

func TestRuleApplyDerivesFactAndUnionsOrigins(t *testing.T) {
	sym := symbol.New()
	user := sym.Insert("user")
	canRead := sym.Insert("can_read")
	right := sym.Insert("right")

	store := NewFactStore()
	store.Insert(NewOriginSet(0), term.Predicate{Name: user, Args: []term.Term{term.Integer(1)}})
	store.Insert(NewOriginSet(1), term.Predicate{Name: right, Args: []term.Term{term.Integer(1)}})

	v := term.Variable("u")
	r := Rule{
		Head: term.Predicate{Name: canRead, Args: []term.Term{v}},
		Body: []term.Predicate{
			{Name: user, Args: []term.Term{v}},
			{Name: right, Args: []term.Term{v}},
		},
	}

	trusted := TrustedOrigins(NewOriginSet(0, 1, 2))
	derived, err := r.Apply(store, trusted, Origin(2), sym, nil)
	require.NoError(t, err)
	require.Len(t, derived, 1)
	require.Equal(t, OriginSet{0, 1, 2}, derived[0].Origins)
	require.Equal(t, canRead, derived[0].Predicate.Name)
}

func TestRuleApplyRejectsUnboundHeadVariable(t *testing.T) {
	sym := symbol.New()
	name := sym.Insert("fact")
	r := Rule{
		Head: term.Predicate{Name: name, Args: []term.Term{term.Variable("unbound")}},
	}
	store := NewFactStore()
	_, err := r.Apply(store, TrustedOrigins{}, Origin(0), sym, nil)
	require.ErrorIs(t, err, ErrUnknownVariable)
}

func TestRuleApplyFiltersByExpression(t *testing.T) {
	sym := symbol.New()
	amount := sym.Insert("amount")
	ok := sym.Insert("ok")

	store := NewFactStore()
	store.Insert(NewOriginSet(0), term.Predicate{Name: amount, Args: []term.Term{term.Integer(5)}})
	store.Insert(NewOriginSet(0), term.Predicate{Name: amount, Args: []term.Term{term.Integer(50)}})

	v := term.Variable("a")
	r := Rule{
		Head: term.Predicate{Name: ok, Args: []term.Term{v}},
		Body: []term.Predicate{{Name: amount, Args: []term.Term{v}}},
		Expressions: []Expression{{
			ValueOp{Term: v},
			ValueOp{Term: term.Integer(10)},
			BinaryOp{Kind: BinaryLessThan},
		}},
	}

	trusted := TrustedOrigins(NewOriginSet(0))
	derived, err := r.Apply(store, trusted, Origin(0), sym, nil)
	require.NoError(t, err)
	require.Len(t, derived, 1)
	require.Equal(t, term.Integer(5), derived[0].Predicate.Args[0])
}

// TestRuleApplyDropsBindingOnExpressionError confirms that an overflow
// (or any other expression-evaluation error) on one binding only drops
// that binding instead of aborting the whole rule application, so the
// fixed point still derives facts from every other binding.
func TestRuleApplyDropsBindingOnExpressionError(t *testing.T) {
	sym := symbol.New()
	amount := sym.Insert("amount")
	ok := sym.Insert("ok")

	store := NewFactStore()
	store.Insert(NewOriginSet(0), term.Predicate{Name: amount, Args: []term.Term{term.Integer(1)}})
	store.Insert(NewOriginSet(0), term.Predicate{Name: amount, Args: []term.Term{term.Integer(2)}})

	v := term.Variable("a")
	r := Rule{
		Head: term.Predicate{Name: ok, Args: []term.Term{v}},
		Body: []term.Predicate{{Name: amount, Args: []term.Term{v}}},
		Expressions: []Expression{{
			ValueOp{Term: v},
			ValueOp{Term: term.Integer(0)},
			BinaryOp{Kind: BinaryDiv},
			ValueOp{Term: term.Integer(0)},
			BinaryOp{Kind: BinaryGreaterThan},
		}},
	}

	trusted := TrustedOrigins(NewOriginSet(0))
	derived, err := r.Apply(store, trusted, Origin(0), sym, nil)
	require.NoError(t, err)
	require.Len(t, derived, 0)
}

func TestRuleApplyRepeatedVariableMustAgree(t *testing.T) {
	sym := symbol.New()
	edge := sym.Insert("edge")
	loop := sym.Insert("loop")

	store := NewFactStore()
	store.Insert(NewOriginSet(0), term.Predicate{Name: edge, Args: []term.Term{term.Integer(1), term.Integer(2)}})
	store.Insert(NewOriginSet(0), term.Predicate{Name: edge, Args: []term.Term{term.Integer(3), term.Integer(3)}})

	v := term.Variable("x")
	r := Rule{
		Head: term.Predicate{Name: loop, Args: []term.Term{v}},
		Body: []term.Predicate{{Name: edge, Args: []term.Term{v, v}}},
	}

	trusted := TrustedOrigins(NewOriginSet(0))
	derived, err := r.Apply(store, trusted, Origin(0), sym, nil)
	require.NoError(t, err)
	require.Len(t, derived, 1)
	require.Equal(t, term.Integer(3), derived[0].Predicate.Args[0])
}
