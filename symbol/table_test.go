package symbol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInsertReusesDefaultSymbols(t *testing.T) {
	tbl := New()
	id := tbl.Insert("resource")
	require.Less(t, uint64(id), uint64(Offset))
	require.Equal(t, "resource", tbl.Str(id))
	require.Equal(t, 0, tbl.Len())
}

func TestInsertNewSymbolStartsAtOffset(t *testing.T) {
	tbl := New()
	id := tbl.Insert("my_custom_symbol")
	require.Equal(t, ID(Offset), id)
	require.Equal(t, "my_custom_symbol", tbl.Str(id))

	again := tbl.Insert("my_custom_symbol")
	require.Equal(t, id, again)
	require.Equal(t, 1, tbl.Len())
}

func TestSymLooksUpWithoutInserting(t *testing.T) {
	tbl := New()
	_, ok := tbl.Sym("not_present")
	require.False(t, ok)

	id := tbl.Insert("present")
	got, ok := tbl.Sym("present")
	require.True(t, ok)
	require.Equal(t, id, got)
}

func TestCloneIsIndependent(t *testing.T) {
	tbl := New()
	tbl.Insert("a")
	clone := tbl.Clone()
	clone.Insert("b")

	require.Equal(t, 1, tbl.Len())
	require.Equal(t, 2, clone.Len())
}

func TestSplitOff(t *testing.T) {
	tbl := New()
	tbl.Insert("a")
	tbl.Insert("b")
	tbl.Insert("c")

	tail := tbl.SplitOff(1)
	require.Equal(t, []string{"a"}, tbl.Strings())
	require.Equal(t, []string{"b", "c"}, tail.Strings())
}

func TestIsDisjoint(t *testing.T) {
	a := New()
	a.Insert("x")
	b := New()
	b.Insert("y")
	require.True(t, a.IsDisjoint(b))

	b.Insert("x")
	require.False(t, a.IsDisjoint(b))
}

func TestExtendSkipsExistingSymbols(t *testing.T) {
	a := New()
	a.Insert("x")
	b := New()
	b.Insert("x")
	b.Insert("y")

	a.Extend(b)
	require.Equal(t, []string{"x", "y"}, a.Strings())
}

func TestMergeReturnsRemapping(t *testing.T) {
	a := New()
	a.Insert("x")

	b := New()
	bY := b.Insert("y")

	remap := a.Merge(b)
	newID, ok := a.Sym("y")
	require.True(t, ok)
	require.Equal(t, newID, remap[bY])

	for i := range Default {
		require.Equal(t, ID(i), remap[ID(i)])
	}
}

func TestStrOutOfRangeIsAPlaceholder(t *testing.T) {
	tbl := New()
	require.Contains(t, tbl.Str(ID(Offset+5)), "invalid symbol")
}
