package datalog

import (
	"testing"

	"github.com/biscuit-core/biscuit/symbol"
	"github.com/biscuit-core/biscuit/term"
	"github.com/stretchr/testify/require"
)

func TestFactStoreInsertDedupesWithinSameOrigin(t *testing.T) {
	sym := symbol.New()
	name := sym.Insert("resource")
	pred := term.Predicate{Name: name, Args: []term.Term{term.Integer(1)}}

	store := NewFactStore()
	require.True(t, store.Insert(NewOriginSet(0), pred))
	require.False(t, store.Insert(NewOriginSet(0), pred))
	require.Equal(t, 1, store.Len())
}

func TestFactStoreSameFactUnderDifferentOriginsIsDistinct(t *testing.T) {
	sym := symbol.New()
	name := sym.Insert("resource")
	pred := term.Predicate{Name: name, Args: []term.Term{term.Integer(1)}}

	store := NewFactStore()
	store.Insert(NewOriginSet(0), pred)
	store.Insert(NewOriginSet(1), pred)
	require.Equal(t, 2, store.Len())
}

func TestFactStoreVisibleFiltersByTrust(t *testing.T) {
	sym := symbol.New()
	name := sym.Insert("resource")
	pred := term.Predicate{Name: name, Args: []term.Term{term.Integer(1)}}

	store := NewFactStore()
	store.Insert(NewOriginSet(0), pred)
	store.Insert(NewOriginSet(1), pred)

	trusted := TrustedOrigins(NewOriginSet(0))
	visible := store.Visible(trusted, nil)
	require.Len(t, visible, 1)
	require.Equal(t, OriginSet{0}, visible[0].Origins)
}

func TestFactStoreVisibleFiltersByPredicate(t *testing.T) {
	sym := symbol.New()
	resource := sym.Insert("resource")
	operation := sym.Insert("operation")

	store := NewFactStore()
	store.Insert(NewOriginSet(0), term.Predicate{Name: resource, Args: []term.Term{term.Integer(1)}})
	store.Insert(NewOriginSet(0), term.Predicate{Name: operation, Args: []term.Term{term.Integer(2)}})

	trusted := TrustedOrigins(NewOriginSet(0))
	pattern := term.Predicate{Name: resource, Args: []term.Term{term.Variable("x")}}
	visible := store.Visible(trusted, &pattern)
	require.Len(t, visible, 1)
	require.Equal(t, resource, visible[0].Predicate.Name)
}

func TestFactStoreClone(t *testing.T) {
	sym := symbol.New()
	name := sym.Insert("resource")
	pred := term.Predicate{Name: name, Args: []term.Term{term.Integer(1)}}

	store := NewFactStore()
	store.Insert(NewOriginSet(0), pred)
	clone := store.Clone()
	clone.Insert(NewOriginSet(0), term.Predicate{Name: name, Args: []term.Term{term.Integer(2)}})

	require.Equal(t, 1, store.Len())
	require.Equal(t, 2, clone.Len())
}
