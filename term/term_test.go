package term

import (
	"testing"
	"time"

	"github.com/biscuit-core/biscuit/symbol"
	"github.com/stretchr/testify/require"
)

func TestTermEqual(t *testing.T) {
	require.True(t, Integer(42).Equal(Integer(42)))
	require.False(t, Integer(42).Equal(Integer(43)))
	require.False(t, Integer(42).Equal(Variable("x")))

	require.True(t, Bytes([]byte("abc")).Equal(Bytes([]byte("abc"))))
	require.False(t, Bytes([]byte("abc")).Equal(Bytes([]byte("abd"))))

	require.True(t, Bool(true).Equal(Bool(true)))
	require.True(t, Null{}.Equal(Null{}))
}

func TestSetEqualIgnoresOrder(t *testing.T) {
	a := Set{Integer(1), Integer(2), Integer(3)}
	b := Set{Integer(3), Integer(1), Integer(2)}
	require.True(t, a.Equal(b))

	c := Set{Integer(1), Integer(2)}
	require.False(t, a.Equal(c))
}

func TestSetWellFormedRejectsNestedSetsAndVariables(t *testing.T) {
	require.True(t, Set{Integer(1), String(2)}.WellFormed())
	require.False(t, Set{Variable("x")}.WellFormed())
	require.False(t, Set{Set{Integer(1)}}.WellFormed())
}

func TestMapWellFormedRejectsNestedSets(t *testing.T) {
	ok := NewMap([2]Term{String(1), Integer(1)})
	require.True(t, ok.WellFormed())

	bad := NewMap([2]Term{String(1), Set{Integer(1)}})
	require.False(t, bad.WellFormed())
}

func TestMapEqualIgnoresEntryOrder(t *testing.T) {
	a := NewMap([2]Term{Integer(1), Integer(10)}, [2]Term{Integer(2), Integer(20)})
	b := NewMap([2]Term{Integer(2), Integer(20)}, [2]Term{Integer(1), Integer(10)})
	require.True(t, a.Equal(b))
}

func TestPredicateMatchTreatsVariablesAsWildcards(t *testing.T) {
	sym := symbol.New()
	name := sym.Insert("resource")

	ground := Predicate{Name: name, Args: []Term{String(sym.Insert("file1"))}}
	pattern := Predicate{Name: name, Args: []Term{Variable("x")}}
	require.True(t, ground.Match(pattern))

	other := Predicate{Name: name, Args: []Term{String(sym.Insert("file2"))}}
	groundPattern := Predicate{Name: name, Args: []Term{String(sym.Insert("file1"))}}
	require.False(t, other.Match(groundPattern))
}

func TestPredicateIsGround(t *testing.T) {
	sym := symbol.New()
	name := sym.Insert("op")

	require.True(t, Predicate{Name: name, Args: []Term{Integer(1)}}.IsGround())
	require.False(t, Predicate{Name: name, Args: []Term{Variable("x")}}.IsGround())
}

func TestDateString(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	d := Date(now.Unix())
	require.Equal(t, now.Format(time.RFC3339), d.String(nil))
}

func TestPredicateClone(t *testing.T) {
	p := Predicate{Name: 1, Args: []Term{Integer(1)}}
	c := p.Clone()
	require.True(t, p.Equal(c))
	c.Args[0] = Integer(2)
	require.False(t, p.Equal(c))
}
