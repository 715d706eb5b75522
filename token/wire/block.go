package wire

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/biscuit-core/biscuit/datalog"
	"github.com/biscuit-core/biscuit/term"
)

// Block is the wire shape of one token block: plain data, with no
// dependency on the token package's own Block type, so the token
// package can convert to/from it without an import cycle (mirrors the
// teacher's pb.Block / tokenBlockToProtoBlock split).
type Block struct {
	Symbols    []string
	PublicKeys [][]byte
	Facts      []term.Predicate
	Rules      []datalog.Rule
	Checks     []datalog.Check
	Scopes     []datalog.Scope
	Context    string
	Version    uint32
}

const (
	fieldBlockSymbol    = protowire.Number(1)
	fieldBlockPublicKey = protowire.Number(2)
	fieldBlockFact      = protowire.Number(3)
	fieldBlockRule      = protowire.Number(4)
	fieldBlockCheck     = protowire.Number(5)
	fieldBlockContext   = protowire.Number(6)
	fieldBlockVersion   = protowire.Number(7)
	fieldBlockScope     = protowire.Number(8)
)

// EncodeBlock serializes a Block.
func EncodeBlock(blk Block) ([]byte, error) {
	var b []byte
	for _, s := range blk.Symbols {
		b = appendStringField(b, fieldBlockSymbol, s)
	}
	for _, k := range blk.PublicKeys {
		b = appendBytesField(b, fieldBlockPublicKey, k)
	}
	for _, f := range blk.Facts {
		fb, err := EncodePredicate(f)
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, fieldBlockFact, fb)
	}
	for _, r := range blk.Rules {
		rb, err := EncodeRule(r)
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, fieldBlockRule, rb)
	}
	for _, c := range blk.Checks {
		cb, err := EncodeCheck(c)
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, fieldBlockCheck, cb)
	}
	b = appendStringField(b, fieldBlockContext, blk.Context)
	b = appendVarintField(b, fieldBlockVersion, uint64(blk.Version))
	for _, s := range blk.Scopes {
		b = appendBytesField(b, fieldBlockScope, EncodeScope(s))
	}
	return b, nil
}

// DecodeBlock parses a Block.
func DecodeBlock(b []byte) (Block, error) {
	fields, err := parseFields(b)
	if err != nil {
		return Block{}, err
	}
	var blk Block
	for _, f := range fields {
		switch f.Num {
		case fieldBlockSymbol:
			blk.Symbols = append(blk.Symbols, string(f.Bytes))
		case fieldBlockPublicKey:
			blk.PublicKeys = append(blk.PublicKeys, f.Bytes)
		case fieldBlockFact:
			p, err := DecodePredicate(f.Bytes)
			if err != nil {
				return Block{}, err
			}
			blk.Facts = append(blk.Facts, p)
		case fieldBlockRule:
			r, err := DecodeRule(f.Bytes)
			if err != nil {
				return Block{}, err
			}
			blk.Rules = append(blk.Rules, r)
		case fieldBlockCheck:
			c, err := DecodeCheck(f.Bytes)
			if err != nil {
				return Block{}, err
			}
			blk.Checks = append(blk.Checks, c)
		case fieldBlockScope:
			s, err := DecodeScope(f.Bytes)
			if err != nil {
				return Block{}, err
			}
			blk.Scopes = append(blk.Scopes, s)
		case fieldBlockContext:
			blk.Context = string(f.Bytes)
		case fieldBlockVersion:
			blk.Version = uint32(f.Varint)
		}
	}
	return blk, nil
}
