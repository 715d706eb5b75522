package symbol

import (
	"testing"

	"github.com/biscuit-core/biscuit/sig"
	"github.com/stretchr/testify/require"
)

func key(b byte) sig.PublicKey {
	var pk sig.PublicKey
	pk.Algorithm = sig.Ed25519
	pk.Bytes[0] = b
	return pk
}

func TestPublicKeyTableInsertDedupes(t *testing.T) {
	tbl := NewPublicKeyTable()
	a := tbl.Insert(key(1))
	b := tbl.Insert(key(1))
	require.Equal(t, a, b)
	require.Equal(t, 1, tbl.Len())
}

func TestPublicKeyTableGetAndIndex(t *testing.T) {
	tbl := NewPublicKeyTable()
	id := tbl.Insert(key(2))

	got, ok := tbl.Get(id)
	require.True(t, ok)
	require.Equal(t, key(2), got)

	idx, ok := tbl.Index(key(2))
	require.True(t, ok)
	require.Equal(t, id, idx)

	_, ok = tbl.Get(ID(99))
	require.False(t, ok)
}

func TestPublicKeyTableSplitOff(t *testing.T) {
	tbl := NewPublicKeyTable()
	tbl.Insert(key(1))
	tbl.Insert(key(2))
	tbl.Insert(key(3))

	tail := tbl.SplitOff(1)
	require.Equal(t, []sig.PublicKey{key(1)}, tbl.Keys())
	require.Equal(t, []sig.PublicKey{key(2), key(3)}, tail.Keys())
}

func TestPublicKeyTableExtend(t *testing.T) {
	a := NewPublicKeyTable()
	a.Insert(key(1))
	b := NewPublicKeyTable()
	b.Insert(key(1))
	b.Insert(key(2))

	a.Extend(b)
	require.Equal(t, []sig.PublicKey{key(1), key(2)}, a.Keys())
}
