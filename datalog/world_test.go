package datalog

import (
	"testing"

	"github.com/biscuit-core/biscuit/symbol"
	"github.com/biscuit-core/biscuit/term"
	"github.com/stretchr/testify/require"
)

func TestWorldRunFixedPoint(t *testing.T) {
	sym := symbol.New()
	parent := sym.Insert("parent")
	ancestor := sym.Insert("ancestor")

	w := NewWorld(sym, nil)
	w.AddFact(NewOriginSet(0), Fact{Predicate: term.Predicate{Name: parent, Args: []term.Term{term.Integer(1), term.Integer(2)}}})
	w.AddFact(NewOriginSet(0), Fact{Predicate: term.Predicate{Name: parent, Args: []term.Term{term.Integer(2), term.Integer(3)}}})

	x, y, z := term.Variable("x"), term.Variable("y"), term.Variable("z")
	containing := TrustedOrigins(NewOriginSet(0))

	// ancestor(x, y) :- parent(x, y)
	w.AddRule(Origin(0), Rule{
		Head: term.Predicate{Name: ancestor, Args: []term.Term{x, y}},
		Body: []term.Predicate{{Name: parent, Args: []term.Term{x, y}}},
	}, containing)
	// ancestor(x, z) :- parent(x, y), ancestor(y, z)
	w.AddRule(Origin(0), Rule{
		Head: term.Predicate{Name: ancestor, Args: []term.Term{x, z}},
		Body: []term.Predicate{
			{Name: parent, Args: []term.Term{x, y}},
			{Name: ancestor, Args: []term.Term{y, z}},
		},
	}, containing)

	limits := DefaultRunLimits()
	require.NoError(t, w.Run(&limits))

	pattern := term.Predicate{Name: ancestor, Args: []term.Term{term.Integer(1), term.Integer(3)}}
	visible := w.Facts.Visible(TrustedOrigins(NewOriginSet(0)), &pattern)
	require.Len(t, visible, 1)
}

func TestWorldRunHitsMaxFacts(t *testing.T) {
	sym := symbol.New()
	counter := sym.Insert("counter")
	next := sym.Insert("next")

	w := NewWorld(sym, nil)
	w.AddFact(NewOriginSet(0), Fact{Predicate: term.Predicate{Name: counter, Args: []term.Term{term.Integer(0)}}})

	v := term.Variable("n")
	containing := TrustedOrigins(NewOriginSet(0))
	w.AddRule(Origin(0), Rule{
		Head: term.Predicate{Name: next, Args: []term.Term{v}},
		Body: []term.Predicate{{Name: counter, Args: []term.Term{v}}},
	}, containing)

	limits := RunLimits{MaxFacts: 1, MaxIterations: 100}
	err := w.Run(&limits)
	var rle *RunLimitError
	require.ErrorAs(t, err, &rle)
	require.Equal(t, RunLimitMaxFacts, rle.Kind)
}

func TestWorldRunHitsMaxIterations(t *testing.T) {
	sym := symbol.New()
	even := sym.Insert("even")
	odd := sym.Insert("odd")

	w := NewWorld(sym, nil)
	w.AddFact(NewOriginSet(0), Fact{Predicate: term.Predicate{Name: even, Args: []term.Term{term.Integer(0)}}})

	containing := TrustedOrigins(NewOriginSet(0))
	v := term.Variable("v")
	w.AddRule(Origin(0), Rule{
		Head: term.Predicate{Name: odd, Args: []term.Term{v}},
		Body: []term.Predicate{{Name: even, Args: []term.Term{v}}},
	}, containing)

	limits := RunLimits{MaxFacts: 1000, MaxIterations: 0}
	err := w.Run(&limits)
	var rle *RunLimitError
	require.ErrorAs(t, err, &rle)
	require.Equal(t, RunLimitMaxIterations, rle.Kind)
}

func TestWorldDumpAndDumpCode(t *testing.T) {
	sym := symbol.New()
	name := sym.Insert("fact")

	w := NewWorld(sym, nil)
	w.AddFact(NewOriginSet(0), Fact{Predicate: term.Predicate{Name: name, Args: []term.Term{term.Integer(1)}}})

	require.NotEmpty(t, w.Dump())
	require.NotEmpty(t, w.DumpCode())
}

func TestWorldPublicKeyIndex(t *testing.T) {
	sym := symbol.New()
	w := NewWorld(sym, nil)
	pk := sym.Insert("some-key")
	w.IndexPublicKey(pk, Origin(2))

	require.Equal(t, []Origin{2}, w.PublicKeyIndex()[pk])
}
