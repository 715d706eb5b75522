// Package wire hand-encodes the token's on-disk representation using
// the protobuf wire format directly, through
// google.golang.org/protobuf/encoding/protowire's low-level varint and
// tag primitives, rather than through generated .pb.go code (spec.md
// §6: no protoc toolchain is assumed available). Every message is
// encoded with fields in a fixed ascending order and repeated fields
// in a stable order, so two calls to Encode* on the same value always
// produce byte-identical output. Set elements and Map entries are
// written in their stored order, so two Sets or Maps that are Equal
// but hold their elements in different orders encode differently.
package wire

import (
	"errors"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrMalformed is returned for any wire payload that does not parse as
// a well-formed sequence of protobuf fields, or that is missing a
// required field.
var ErrMalformed = errors.New("wire: malformed message")

// field is one decoded top-level field of a message: exactly one of
// Varint or Bytes is meaningful, selected by Type.
type field struct {
	Num    protowire.Number
	Type   protowire.Type
	Varint uint64
	Bytes  []byte
}

// parseFields splits b into its top-level fields without interpreting
// them, so each Decode* function can pick out the numbers it expects
// and ignore the rest (forward compatible with unknown fields).
func parseFields(b []byte) ([]field, error) {
	var out []field
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, ErrMalformed
		}
		b = b[n:]

		f := field{Num: num, Type: typ}
		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, ErrMalformed
			}
			f.Varint = v
			b = b[n:]
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, ErrMalformed
			}
			f.Bytes = append([]byte(nil), v...)
			b = b[n:]
		case protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return nil, ErrMalformed
			}
			f.Varint = v
			b = b[n:]
		case protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return nil, ErrMalformed
			}
			f.Varint = uint64(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, ErrMalformed
			}
			b = b[n:]
		}
		out = append(out, f)
	}
	return out, nil
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendStringField(b []byte, num protowire.Number, s string) []byte {
	return appendBytesField(b, num, []byte(s))
}

func zigzag(v int64) uint64 { return protowire.EncodeZigZag(v) }
func unzigzag(v uint64) int64 { return protowire.DecodeZigZag(v) }
