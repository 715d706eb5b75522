// Package token implements a biscuit's signed block chain: building
// blocks, appending attenuations, verifying the signature chain, and
// the wire serialization that carries a token between services
// (spec.md §4.6).
package token

import (
	"github.com/biscuit-core/biscuit/datalog"
	"github.com/biscuit-core/biscuit/sig"
	"github.com/biscuit-core/biscuit/symbol"
	"github.com/biscuit-core/biscuit/term"
	"github.com/biscuit-core/biscuit/token/wire"
)

// CurrentVersion is the block format version this implementation
// writes. A verifier rejects blocks whose Version exceeds it.
const CurrentVersion uint32 = 4

// Block is one link of a token: the authority block (index 0) or one
// of its attenuations. Symbols and PublicKeys hold only the entries
// this block itself introduces — a running token merges them into its
// shared tables on Append (spec.md §4.1).
type Block struct {
	Index       uint32
	Symbols     *symbol.Table
	PublicKeys  *symbol.PublicKeyTable
	Facts       []term.Predicate
	Rules       []datalog.Rule
	Checks      []datalog.Check
	Scopes      []datalog.Scope
	Context     string
	Version     uint32
	ExternalKey *sig.PublicKey
}

// toWire converts b to its wire representation.
func (b *Block) toWire() (wire.Block, error) {
	var keys [][]byte
	for _, k := range b.PublicKeys.Keys() {
		keys = append(keys, k.Marshal())
	}
	return wire.Block{
		Symbols:    b.Symbols.Strings(),
		PublicKeys: keys,
		Facts:      b.Facts,
		Rules:      b.Rules,
		Checks:     b.Checks,
		Scopes:     b.Scopes,
		Context:    b.Context,
		Version:    b.Version,
	}, nil
}

// blockFromWire reconstructs a Block from its wire form. index is the
// chain position the caller already knows from the container; externalKey
// is non-nil when this block arrived signed by a third party.
func blockFromWire(index uint32, w wire.Block, externalKey *sig.PublicKey) (*Block, error) {
	symbols := symbol.New()
	for _, s := range w.Symbols {
		symbols.Insert(s)
	}
	pubkeys := symbol.NewPublicKeyTable()
	for _, raw := range w.PublicKeys {
		pk, err := sig.UnmarshalPublicKey(raw)
		if err != nil {
			return nil, err
		}
		pubkeys.Insert(pk)
	}
	return &Block{
		Index:       index,
		Symbols:     symbols,
		PublicKeys:  pubkeys,
		Facts:       w.Facts,
		Rules:       w.Rules,
		Checks:      w.Checks,
		Scopes:      w.Scopes,
		Context:     w.Context,
		Version:     w.Version,
		ExternalKey: externalKey,
	}, nil
}

// Marshal serializes b's Block payload (not including its signature or
// the enclosing SignedBlock framing).
func (b *Block) Marshal() ([]byte, error) {
	w, err := b.toWire()
	if err != nil {
		return nil, err
	}
	return wire.EncodeBlock(w)
}
