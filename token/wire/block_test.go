package wire

import (
	"testing"

	"github.com/biscuit-core/biscuit/datalog"
	"github.com/biscuit-core/biscuit/symbol"
	"github.com/biscuit-core/biscuit/term"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeBlock(t *testing.T) {
	sym := symbol.New()
	resource := sym.Insert("resource")

	blk := Block{
		Symbols:    []string{"file1"},
		PublicKeys: [][]byte{{1, 2, 3}},
		Facts:      []term.Predicate{{Name: resource, Args: []term.Term{term.Integer(1)}}},
		Rules:      nil,
		Checks: []datalog.Check{
			{Kind: datalog.CheckOne, Queries: []datalog.Rule{
				{Body: []term.Predicate{{Name: resource, Args: []term.Term{term.Variable("x")}}}},
			}},
		},
		Scopes:  []datalog.Scope{{Kind: datalog.ScopeAuthority}},
		Context: "ctx",
		Version: 4,
	}

	b, err := EncodeBlock(blk)
	require.NoError(t, err)
	got, err := DecodeBlock(b)
	require.NoError(t, err)

	require.Equal(t, blk.Symbols, got.Symbols)
	require.Equal(t, blk.PublicKeys, got.PublicKeys)
	require.Len(t, got.Facts, 1)
	require.True(t, blk.Facts[0].Equal(got.Facts[0]))
	require.Len(t, got.Checks, 1)
	require.Equal(t, blk.Scopes, got.Scopes)
	require.Equal(t, blk.Context, got.Context)
	require.Equal(t, blk.Version, got.Version)
}

func TestEncodeDecodeBlockEmpty(t *testing.T) {
	blk := Block{Version: 4}
	b, err := EncodeBlock(blk)
	require.NoError(t, err)
	got, err := DecodeBlock(b)
	require.NoError(t, err)
	require.Equal(t, blk, got)
}
