package symbol

import "github.com/biscuit-core/biscuit/sig"

// PublicKeyTable is the "parallel interned table" for public keys
// spec.md §4.1 asks for: the same append-only, id-reversible structure
// as Table, but keyed on sig.PublicKey instead of string.
type PublicKeyTable struct {
	keys []sig.PublicKey
}

// NewPublicKeyTable returns an empty public-key table.
func NewPublicKeyTable() *PublicKeyTable {
	return &PublicKeyTable{}
}

// Insert returns the id for k, inserting it if not already present.
func (t *PublicKeyTable) Insert(k sig.PublicKey) ID {
	for i, v := range t.keys {
		if v == k {
			return ID(i)
		}
	}
	t.keys = append(t.keys, k)
	return ID(len(t.keys) - 1)
}

// Get returns the public key for id.
func (t *PublicKeyTable) Get(id ID) (sig.PublicKey, bool) {
	if int(id) < 0 || int(id) >= len(t.keys) {
		return sig.PublicKey{}, false
	}
	return t.keys[id], true
}

// Index returns the id of k without inserting it.
func (t *PublicKeyTable) Index(k sig.PublicKey) (ID, bool) {
	for i, v := range t.keys {
		if v == k {
			return ID(i), true
		}
	}
	return 0, false
}

// Len returns the number of interned public keys.
func (t *PublicKeyTable) Len() int {
	return len(t.keys)
}

// Clone returns an independent copy of t.
func (t *PublicKeyTable) Clone() *PublicKeyTable {
	return &PublicKeyTable{keys: append([]sig.PublicKey(nil), t.keys...)}
}

// Extend inserts every key of other into t.
func (t *PublicKeyTable) Extend(other *PublicKeyTable) {
	for _, k := range other.keys {
		t.Insert(k)
	}
}

// Keys returns every interned public key, in insertion order.
func (t *PublicKeyTable) Keys() []sig.PublicKey {
	return append([]sig.PublicKey(nil), t.keys...)
}

// SplitOff removes and returns the keys inserted since the table had
// length at, leaving t with only its first at entries — the public-key
// counterpart of Table.SplitOff, used when a block builder wants to
// carve out just the keys it introduced.
func (t *PublicKeyTable) SplitOff(at int) *PublicKeyTable {
	if at > len(t.keys) {
		panic("symbol: split index out of bounds")
	}
	tail := append([]sig.PublicKey(nil), t.keys[at:]...)
	t.keys = t.keys[:at]
	return &PublicKeyTable{keys: tail}
}
