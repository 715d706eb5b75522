// Package symbol implements the bidirectional string and public-key
// interning tables shared by every block in a token.
package symbol

import "fmt"

// Offset is the first id available to symbols inserted by a token or
// an authorizer. Ids below Offset are reserved for the built-in table.
const Offset = 1024

// Default lists the symbols predefined in every implementation, so
// common predicate and attribute names never need to travel on the
// wire.
var Default = [...]string{
	"read",
	"write",
	"resource",
	"operation",
	"right",
	"time",
	"role",
	"owner",
	"tenant",
	"namespace",
	"user",
	"team",
	"service",
	"admin",
	"email",
	"group",
	"member",
	"ip_address",
	"client",
	"client_ip",
	"domain",
	"path",
	"version",
	"cluster",
	"node",
	"hostname",
	"nonce",
	"query",
	"authority",
	"ambient",
	"current_time",
	"revocation_id",
}

// ID is an interned symbol identifier. Values below Offset index into
// Default; values at or above Offset index into a Table's own slice.
type ID uint64

// Table is an append-only, bidirectional string table. The zero value
// is an empty table ready to use.
type Table struct {
	strings []string
}

// New returns an empty table.
func New() *Table {
	return &Table{}
}

// Insert returns the id for s, inserting it if not already present.
func (t *Table) Insert(s string) ID {
	if id, ok := indexOf(Default[:], s); ok {
		return ID(id)
	}
	if id, ok := indexOf(t.strings, s); ok {
		return ID(Offset + id)
	}
	t.strings = append(t.strings, s)
	return ID(Offset + len(t.strings) - 1)
}

// Sym returns the id for s without inserting it, and false if s is
// not present in the table.
func (t *Table) Sym(s string) (ID, bool) {
	if id, ok := indexOf(Default[:], s); ok {
		return ID(id), true
	}
	if id, ok := indexOf(t.strings, s); ok {
		return ID(Offset + id), true
	}
	return 0, false
}

// Str returns the string for id, or a placeholder if id is out of
// range.
func (t *Table) Str(id ID) string {
	if int(id) < len(Default) {
		return Default[id]
	}
	idx := int(id) - Offset
	if idx < 0 || idx >= len(t.strings) {
		return fmt.Sprintf("<invalid symbol %d>", id)
	}
	return t.strings[idx]
}

// Len returns the number of symbols inserted into this table, not
// counting the built-in defaults.
func (t *Table) Len() int {
	return len(t.strings)
}

// Strings returns the symbols inserted into this table, in insertion
// order, not counting the built-in defaults.
func (t *Table) Strings() []string {
	return append([]string(nil), t.strings...)
}

// Clone returns an independent copy of t, with its own copy of the
// inserted symbols.
func (t *Table) Clone() *Table {
	return &Table{strings: append([]string(nil), t.strings...)}
}

// SplitOff removes and returns the symbols inserted since the table
// had length at, leaving t with only its first at symbols. Used when
// a block builder wants to carve out just the symbols it introduced.
func (t *Table) SplitOff(at int) *Table {
	if at > len(t.strings) {
		panic("symbol: split index out of bounds")
	}
	tail := append([]string(nil), t.strings[at:]...)
	t.strings = t.strings[:at]
	return &Table{strings: tail}
}

// IsDisjoint reports whether t and other share no user-inserted
// symbol. Block symbol tables must be disjoint before being merged
// into a token's running table.
func (t *Table) IsDisjoint(other *Table) bool {
	seen := make(map[string]struct{}, len(t.strings))
	for _, s := range t.strings {
		seen[s] = struct{}{}
	}
	for _, s := range other.strings {
		if _, ok := seen[s]; ok {
			return false
		}
	}
	return true
}

// Extend inserts every symbol of other into t, skipping symbols
// already present.
func (t *Table) Extend(other *Table) {
	for _, s := range other.strings {
		t.Insert(s)
	}
}

// Merge inserts every symbol of other into t and returns the mapping
// from other's ids to their id in t, so that callers can rewrite
// terms imported alongside other's symbols (spec.md §4.1: "Merging two
// tables appends new entries and returns an id remapping table applied
// to all terms being imported").
func (t *Table) Merge(other *Table) map[ID]ID {
	remap := make(map[ID]ID, len(other.strings))
	for i := range Default {
		remap[ID(i)] = ID(i)
	}
	for i, s := range other.strings {
		oldID := ID(Offset + i)
		remap[oldID] = t.Insert(s)
	}
	return remap
}

func indexOf(strs []string, s string) (int, bool) {
	for i, v := range strs {
		if v == s {
			return i, true
		}
	}
	return 0, false
}
