// Package term implements the typed value model Datalog facts, rules,
// checks and expressions are built from (spec.md §3): a closed tagged
// union plus the Predicate shape that carries it.
package term

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/biscuit-core/biscuit/symbol"
)

// Type identifies the concrete kind of a Term.
type Type byte

const (
	TypeVariable Type = iota
	TypeInteger
	TypeString
	TypeDate
	TypeBytes
	TypeBool
	TypeSet
	TypeNull
	TypeArray
	TypeMap
)

// Term is a tagged value: a Variable, or one of the ground value
// kinds (Integer, String, Date, Bytes, Bool, Set, Null, Array, Map).
type Term interface {
	Type() Type
	Equal(Term) bool
	// String renders the term using sym to resolve interned String
	// ids back to text, for debugging.
	String(sym *symbol.Table) string
}

// Variable names an unbound placeholder in a rule or check body. It
// is never present in a ground Fact.
type Variable string

func (Variable) Type() Type { return TypeVariable }
func (v Variable) Equal(t Term) bool {
	o, ok := t.(Variable)
	return ok && v == o
}
func (v Variable) String(*symbol.Table) string { return "$" + string(v) }

// Integer is a signed 64-bit integer value.
type Integer int64

func (Integer) Type() Type { return TypeInteger }
func (i Integer) Equal(t Term) bool {
	o, ok := t.(Integer)
	return ok && i == o
}
func (i Integer) String(*symbol.Table) string { return fmt.Sprintf("%d", int64(i)) }

// String is an interned text value: the symbol table id of the
// underlying string, not the string itself (spec.md §3 "String
// (interned)").
type String symbol.ID

func (String) Type() Type { return TypeString }
func (s String) Equal(t Term) bool {
	o, ok := t.(String)
	return ok && s == o
}
func (s String) String(sym *symbol.Table) string {
	return fmt.Sprintf("%q", sym.Str(symbol.ID(s)))
}

// Date is a Unix timestamp, seconds since the epoch, compared as
// unsigned (spec.md §4.2).
type Date uint64

func (Date) Type() Type { return TypeDate }
func (d Date) Equal(t Term) bool {
	o, ok := t.(Date)
	return ok && d == o
}
func (d Date) String(*symbol.Table) string {
	return time.Unix(int64(d), 0).UTC().Format(time.RFC3339)
}

// Bytes is an opaque binary blob.
type Bytes []byte

func (Bytes) Type() Type { return TypeBytes }
func (b Bytes) Equal(t Term) bool {
	o, ok := t.(Bytes)
	if !ok || len(o) != len(b) {
		return false
	}
	for i := range b {
		if b[i] != o[i] {
			return false
		}
	}
	return true
}
func (b Bytes) String(*symbol.Table) string {
	return fmt.Sprintf("hex:%s", hex.EncodeToString(b))
}

// Bool is a boolean value.
type Bool bool

func (Bool) Type() Type { return TypeBool }
func (b Bool) Equal(t Term) bool {
	o, ok := t.(Bool)
	return ok && b == o
}
func (b Bool) String(*symbol.Table) string { return fmt.Sprintf("%t", bool(b)) }

// Null is the absence of a value.
type Null struct{}

func (Null) Type() Type               { return TypeNull }
func (Null) Equal(t Term) bool        { _, ok := t.(Null); return ok }
func (Null) String(*symbol.Table) string { return "null" }

// Set is an unordered collection of distinct, non-variable, non-set
// terms (spec.md §3: "Sets and maps disallow nested sets").
type Set []Term

func (Set) Type() Type { return TypeSet }
func (s Set) Equal(t Term) bool {
	o, ok := t.(Set)
	if !ok || len(o) != len(s) {
		return false
	}
	for _, v := range s {
		if !containsTerm(o, v) {
			return false
		}
	}
	return true
}
func (s Set) String(sym *symbol.Table) string {
	parts := make([]string, 0, len(s))
	for _, e := range s {
		parts = append(parts, e.String(sym))
	}
	sort.Strings(parts)
	return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
}

// WellFormed reports whether s satisfies the well-formedness
// invariant: no element is a Variable or a Set, and no element is
// itself a Map containing a Set (checked recursively by Map.WellFormed
// for Map elements).
func (s Set) WellFormed() bool {
	for _, e := range s {
		switch e.Type() {
		case TypeVariable, TypeSet:
			return false
		case TypeMap:
			if !e.(Map).WellFormed() {
				return false
			}
		}
	}
	return true
}

func containsTerm(set []Term, v Term) bool {
	for _, e := range set {
		if e.Equal(v) {
			return true
		}
	}
	return false
}

// Array is an ordered sequence of terms.
type Array []Term

func (Array) Type() Type { return TypeArray }
func (a Array) Equal(t Term) bool {
	o, ok := t.(Array)
	if !ok || len(o) != len(a) {
		return false
	}
	for i := range a {
		if !a[i].Equal(o[i]) {
			return false
		}
	}
	return true
}
func (a Array) String(sym *symbol.Table) string {
	parts := make([]string, len(a))
	for i, e := range a {
		parts[i] = e.String(sym)
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, ", "))
}

// mapEntry is one key/value pair of a Map. Entries keep the order
// NewMap received them in; Equal compares them regardless of order.
type mapEntry struct {
	Key   Term
	Value Term
}

// Map is a term-keyed associative array. Like Set, it disallows
// nested Set values (spec.md §3).
type Map []mapEntry

// NewMap builds a Map from the given key/value pairs.
func NewMap(pairs ...[2]Term) Map {
	m := make(Map, len(pairs))
	for i, p := range pairs {
		m[i] = mapEntry{Key: p[0], Value: p[1]}
	}
	return m
}

// Pairs returns m's key/value entries as plain two-element arrays, for
// callers outside the package that need to walk a Map without relying
// on its internal representation.
func (m Map) Pairs() [][2]Term {
	out := make([][2]Term, len(m))
	for i, e := range m {
		out[i] = [2]Term{e.Key, e.Value}
	}
	return out
}

func (Map) Type() Type { return TypeMap }
func (m Map) Equal(t Term) bool {
	o, ok := t.(Map)
	if !ok || len(o) != len(m) {
		return false
	}
	for _, e := range m {
		found := false
		for _, oe := range o {
			if e.Key.Equal(oe.Key) && e.Value.Equal(oe.Value) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
func (m Map) String(sym *symbol.Table) string {
	parts := make([]string, len(m))
	for i, e := range m {
		parts[i] = fmt.Sprintf("%s: %s", e.Key.String(sym), e.Value.String(sym))
	}
	sort.Strings(parts)
	return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
}

// WellFormed checks that no key or value is a Variable or a Set
// (directly, or transitively through a nested Map).
func (m Map) WellFormed() bool {
	for _, e := range m {
		for _, v := range [2]Term{e.Key, e.Value} {
			switch v.Type() {
			case TypeVariable, TypeSet:
				return false
			case TypeMap:
				if !v.(Map).WellFormed() {
					return false
				}
			}
		}
	}
	return true
}

// Predicate is a named, ordered sequence of terms.
type Predicate struct {
	Name symbol.ID
	Args []Term
}

// Equal reports whether p and o are structurally identical.
func (p Predicate) Equal(o Predicate) bool {
	if p.Name != o.Name || len(p.Args) != len(o.Args) {
		return false
	}
	for i := range p.Args {
		if !p.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

// Match reports whether p and o could unify: same name and arity,
// with every non-variable argument position equal.
func (p Predicate) Match(o Predicate) bool {
	if p.Name != o.Name || len(p.Args) != len(o.Args) {
		return false
	}
	for i := range p.Args {
		_, pv := p.Args[i].(Variable)
		_, ov := o.Args[i].(Variable)
		if pv || ov {
			continue
		}
		if !p.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

// IsGround reports whether p contains no Variable, i.e. is a valid
// Fact predicate.
func (p Predicate) IsGround() bool {
	for _, a := range p.Args {
		if a.Type() == TypeVariable {
			return false
		}
	}
	return true
}

// Clone returns a shallow copy of p with its own Args slice.
func (p Predicate) Clone() Predicate {
	return Predicate{Name: p.Name, Args: append([]Term(nil), p.Args...)}
}

func (p Predicate) String(sym *symbol.Table) string {
	parts := make([]string, len(p.Args))
	for i, a := range p.Args {
		parts[i] = a.String(sym)
	}
	return fmt.Sprintf("%s(%s)", sym.Str(p.Name), strings.Join(parts, ", "))
}
