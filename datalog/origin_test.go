package datalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewOriginSetSortsAndDedupes(t *testing.T) {
	s := NewOriginSet(3, 1, 2, 1)
	require.Equal(t, OriginSet{1, 2, 3}, s)
}

func TestOriginSetUnion(t *testing.T) {
	a := NewOriginSet(1, 3)
	b := NewOriginSet(2, 3)
	require.Equal(t, OriginSet{1, 2, 3}, a.Union(b))
}

func TestOriginSetContains(t *testing.T) {
	s := NewOriginSet(1, 5, 9)
	require.True(t, s.Contains(5))
	require.False(t, s.Contains(6))
}

func TestOriginSetEqual(t *testing.T) {
	a := NewOriginSet(1, 2)
	b := NewOriginSet(2, 1)
	require.True(t, a.Equal(b))
	require.False(t, a.Equal(NewOriginSet(1, 2, 3)))
}

func TestTrustedOriginsSubset(t *testing.T) {
	trusted := TrustedOrigins(NewOriginSet(0, 1, AuthorizerOrigin))
	require.True(t, trusted.Subset(NewOriginSet(0, 1)))
	require.False(t, trusted.Subset(NewOriginSet(0, 2)))
}

func TestAuthorizerOriginIsMaxUint64(t *testing.T) {
	require.Equal(t, Origin(^uint64(0)), AuthorizerOrigin)
}
