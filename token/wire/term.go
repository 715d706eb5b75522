package wire

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/biscuit-core/biscuit/symbol"
	"github.com/biscuit-core/biscuit/term"
)

// Term field numbers. Term is a oneof: exactly one of these is present
// on encode, except fieldTermSet/fieldTermArray/fieldTermMapEntry,
// which may repeat (once per element) to represent a collection whose
// presence alone also signals the term's type.
const (
	fieldTermVariable = protowire.Number(1)
	fieldTermInteger  = protowire.Number(2)
	fieldTermString   = protowire.Number(3)
	fieldTermDate     = protowire.Number(4)
	fieldTermBytes    = protowire.Number(5)
	fieldTermBool     = protowire.Number(6)
	fieldTermSet      = protowire.Number(7)
	fieldTermNull     = protowire.Number(8)
	fieldTermArray    = protowire.Number(9)
	fieldTermMapEntry = protowire.Number(10)

	fieldMapEntryKey   = protowire.Number(1)
	fieldMapEntryValue = protowire.Number(2)
)

// EncodeTerm serializes a single term.Term value.
func EncodeTerm(t term.Term) ([]byte, error) {
	var b []byte
	switch v := t.(type) {
	case term.Variable:
		b = appendStringField(b, fieldTermVariable, string(v))
	case term.Integer:
		b = appendVarintField(b, fieldTermInteger, zigzag(int64(v)))
	case term.String:
		b = appendVarintField(b, fieldTermString, uint64(v))
	case term.Date:
		b = appendVarintField(b, fieldTermDate, uint64(v))
	case term.Bytes:
		b = appendBytesField(b, fieldTermBytes, v)
	case term.Bool:
		val := uint64(0)
		if v {
			val = 1
		}
		b = appendVarintField(b, fieldTermBool, val)
	case term.Null:
		b = appendBytesField(b, fieldTermNull, nil)
	case term.Set:
		for _, e := range v {
			eb, err := EncodeTerm(e)
			if err != nil {
				return nil, err
			}
			b = appendBytesField(b, fieldTermSet, eb)
		}
		if len(v) == 0 {
			// an empty set still needs to be distinguishable from a
			// present-but-empty message: mark it explicitly.
			b = appendBytesField(b, fieldTermSet, nil)
			b = appendEmptySetMarker(b)
		}
	case term.Array:
		for _, e := range v {
			eb, err := EncodeTerm(e)
			if err != nil {
				return nil, err
			}
			b = appendBytesField(b, fieldTermArray, eb)
		}
		if len(v) == 0 {
			b = appendEmptyArrayMarker(b)
		}
	case term.Map:
		entries := mapEntries(v)
		for _, e := range entries {
			keyB, err := EncodeTerm(e.key)
			if err != nil {
				return nil, err
			}
			valB, err := EncodeTerm(e.value)
			if err != nil {
				return nil, err
			}
			var entry []byte
			entry = appendBytesField(entry, fieldMapEntryKey, keyB)
			entry = appendBytesField(entry, fieldMapEntryValue, valB)
			b = appendBytesField(b, fieldTermMapEntry, entry)
		}
		if len(entries) == 0 {
			b = appendEmptyMapMarker(b)
		}
	default:
		return nil, ErrMalformed
	}
	return b, nil
}

// the zero-length Set/Array/Map cases are rare enough on the wire (an
// empty collection literal) that they are marked with a dedicated
// sentinel field rather than complicating the common per-element path.
const (
	fieldEmptySet   = protowire.Number(11)
	fieldEmptyArray = protowire.Number(12)
	fieldEmptyMap   = protowire.Number(13)
)

func appendEmptySetMarker(b []byte) []byte   { return appendVarintField(b, fieldEmptySet, 1) }
func appendEmptyArrayMarker(b []byte) []byte { return appendVarintField(b, fieldEmptyArray, 1) }
func appendEmptyMapMarker(b []byte) []byte   { return appendVarintField(b, fieldEmptyMap, 1) }

type mapEntryPair struct{ key, value term.Term }

// mapEntries extracts a term.Map's entries in encounter order.
func mapEntries(m term.Map) []mapEntryPair {
	pairs := m.Pairs()
	out := make([]mapEntryPair, len(pairs))
	for i, p := range pairs {
		out[i] = mapEntryPair{key: p[0], value: p[1]}
	}
	return out
}

// DecodeTerm parses a single term.Term value.
func DecodeTerm(b []byte) (term.Term, error) {
	fields, err := parseFields(b)
	if err != nil {
		return nil, err
	}

	var setElems, arrayElems []term.Term
	var mapPairs [][2]term.Term
	sawEmptySet, sawEmptyArray, sawEmptyMap := false, false, false

	for _, f := range fields {
		switch f.Num {
		case fieldTermVariable:
			return term.Variable(f.Bytes), nil
		case fieldTermInteger:
			return term.Integer(unzigzag(f.Varint)), nil
		case fieldTermString:
			return term.String(symbol.ID(f.Varint)), nil
		case fieldTermDate:
			return term.Date(f.Varint), nil
		case fieldTermBytes:
			return term.Bytes(f.Bytes), nil
		case fieldTermBool:
			return term.Bool(f.Varint != 0), nil
		case fieldTermNull:
			return term.Null{}, nil
		case fieldEmptySet:
			sawEmptySet = true
		case fieldEmptyArray:
			sawEmptyArray = true
		case fieldEmptyMap:
			sawEmptyMap = true
		case fieldTermSet:
			if len(f.Bytes) == 0 {
				continue
			}
			e, err := DecodeTerm(f.Bytes)
			if err != nil {
				return nil, err
			}
			setElems = append(setElems, e)
		case fieldTermArray:
			e, err := DecodeTerm(f.Bytes)
			if err != nil {
				return nil, err
			}
			arrayElems = append(arrayElems, e)
		case fieldTermMapEntry:
			entryFields, err := parseFields(f.Bytes)
			if err != nil {
				return nil, err
			}
			var key, value term.Term
			for _, ef := range entryFields {
				switch ef.Num {
				case fieldMapEntryKey:
					key, err = DecodeTerm(ef.Bytes)
				case fieldMapEntryValue:
					value, err = DecodeTerm(ef.Bytes)
				}
				if err != nil {
					return nil, err
				}
			}
			mapPairs = append(mapPairs, [2]term.Term{key, value})
		}
	}

	switch {
	case sawEmptySet:
		return term.Set(nil), nil
	case sawEmptyArray:
		return term.Array(nil), nil
	case sawEmptyMap:
		return term.NewMap(), nil
	case setElems != nil:
		return term.Set(setElems), nil
	case arrayElems != nil:
		return term.Array(arrayElems), nil
	case mapPairs != nil:
		return term.NewMap(mapPairs...), nil
	}
	return nil, ErrMalformed
}

// EncodePredicate serializes a term.Predicate: its interned name id
// and its argument terms in order.
func EncodePredicate(p term.Predicate) ([]byte, error) {
	var b []byte
	b = appendVarintField(b, 1, uint64(p.Name))
	for _, a := range p.Args {
		ab, err := EncodeTerm(a)
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, 2, ab)
	}
	return b, nil
}

// DecodePredicate parses a term.Predicate.
func DecodePredicate(b []byte) (term.Predicate, error) {
	fields, err := parseFields(b)
	if err != nil {
		return term.Predicate{}, err
	}
	var p term.Predicate
	for _, f := range fields {
		switch f.Num {
		case 1:
			p.Name = symbol.ID(f.Varint)
		case 2:
			t, err := DecodeTerm(f.Bytes)
			if err != nil {
				return term.Predicate{}, err
			}
			p.Args = append(p.Args, t)
		}
	}
	return p, nil
}
