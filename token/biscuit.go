package token

import (
	"crypto/rand"
	"io"

	"github.com/biscuit-core/biscuit/sig"
	"github.com/biscuit-core/biscuit/symbol"
	"github.com/biscuit-core/biscuit/token/wire"
)

// KeyProvider resolves the root public key a token was signed with,
// by the optional root_key_id it carries, supporting root-key
// rotation (spec.md §4.6: "root keys are looked up by an optional
// root_key_id carried on the wire").
type KeyProvider interface {
	PublicKey(id *uint32) (sig.PublicKey, error)
}

// StaticKeyProvider always returns the same key, for deployments with
// a single root key and no rotation.
type StaticKeyProvider struct{ Key sig.PublicKey }

func (p StaticKeyProvider) PublicKey(*uint32) (sig.PublicKey, error) { return p.Key, nil }

// Biscuit is a verified or freshly built token: a chain of signed
// blocks sharing one running symbol table.
type Biscuit struct {
	authority *Block
	blocks    []*Block

	symbols    *symbol.Table
	publicKeys *symbol.PublicKeyTable

	rootKeyID *uint32

	authoritySigned wire.SignedBlock
	blocksSigned    []wire.SignedBlock

	lastPayload   []byte
	lastNextPub   []byte
	lastSignature []byte
	nextSecret    *sig.PrivateKey

	sealed          bool
	sealedSignature []byte
}

// New creates a single-block token signed by root.
func New(rng io.Reader, root sig.Keypair, rootKeyID *uint32, baseSymbols *symbol.Table, authority *Block) (*Biscuit, error) {
	if rng == nil {
		rng = rand.Reader
	}
	if authority.Index != 0 {
		return nil, ErrInvalidBlockIndex
	}

	symbols := baseSymbols.Clone()
	if !symbols.IsDisjoint(authority.Symbols) {
		return nil, ErrSymbolTableOverlap
	}
	symbols.Extend(authority.Symbols)

	pubkeys := symbol.NewPublicKeyTable()
	pubkeys.Extend(authority.PublicKeys)

	payload, err := authority.Marshal()
	if err != nil {
		return nil, err
	}

	nextKP, err := sig.Generate(root.Algorithm, rng)
	if err != nil {
		return nil, err
	}
	nextPub := nextKP.PublicKey.Marshal()

	msg := sig.BlockMessage(payload, nextPub, nil)
	signature, err := root.Private.Sign(msg)
	if err != nil {
		return nil, err
	}

	return &Biscuit{
		authority:  authority,
		symbols:    symbols,
		publicKeys: pubkeys,
		rootKeyID:  rootKeyID,
		authoritySigned: wire.SignedBlock{
			Payload:   payload,
			NextKey:   nextPub,
			Signature: signature,
		},
		lastPayload:   payload,
		lastNextPub:   nextPub,
		lastSignature: signature,
		nextSecret:    nextKP.Private,
	}, nil
}

// CreateBlock returns a BlockBuilder for the next attenuation block.
func (b *Biscuit) CreateBlock() *BlockBuilder {
	return newBlockBuilder(uint32(len(b.blocks)+1), b.symbols.Clone())
}

// Append signs block with the token's current next-block secret and
// adds it to the chain, returning a new Biscuit; the receiver is left
// untouched.
func (b *Biscuit) Append(rng io.Reader, block *Block) (*Biscuit, error) {
	if rng == nil {
		rng = rand.Reader
	}
	if b.sealed {
		return nil, ErrAppendOnSealed
	}
	if !b.symbols.IsDisjoint(block.Symbols) {
		return nil, ErrSymbolTableOverlap
	}
	if int(block.Index) != len(b.blocks)+1 {
		return nil, ErrInvalidBlockIndex
	}

	symbols := b.symbols.Clone()
	symbols.Extend(block.Symbols)
	pubkeys := b.publicKeys.Clone()
	pubkeys.Extend(block.PublicKeys)

	payload, err := block.Marshal()
	if err != nil {
		return nil, err
	}

	nextKP, err := sig.Generate(b.nextSecret.Public().Algorithm, rng)
	if err != nil {
		return nil, err
	}
	nextPub := nextKP.PublicKey.Marshal()

	msg := sig.BlockMessage(payload, nextPub, b.lastSignature)
	signature, err := b.nextSecret.Sign(msg)
	if err != nil {
		return nil, err
	}

	out := &Biscuit{
		authority:       b.authority,
		blocks:          append(append([]*Block(nil), b.blocks...), block),
		symbols:         symbols,
		publicKeys:      pubkeys,
		rootKeyID:       b.rootKeyID,
		authoritySigned: b.authoritySigned,
		blocksSigned:    append(append([]wire.SignedBlock(nil), b.blocksSigned...), wire.SignedBlock{Payload: payload, NextKey: nextPub, Signature: signature}),
		lastPayload:     payload,
		lastNextPub:     nextPub,
		lastSignature:   signature,
		nextSecret:      nextKP.Private,
	}
	return out, nil
}

// Seal finalizes the token: the final block's next-key secret signs a
// closing message over itself and is then destroyed, so no further
// block can ever be appended (spec.md §4.4 "sealed = true").
func (b *Biscuit) Seal() (*Biscuit, error) {
	if b.sealed {
		return nil, ErrAlreadySealed
	}
	msg := sig.SealMessage(b.lastPayload, b.lastNextPub, b.lastSignature)
	sealSig, err := b.nextSecret.Sign(msg)
	if err != nil {
		return nil, err
	}
	b.nextSecret.Destroy()

	out := *b
	out.sealed = true
	out.sealedSignature = sealSig
	out.nextSecret = nil
	return &out, nil
}

// Blocks returns the authority block followed by every attenuation,
// in chain order.
func (b *Biscuit) Blocks() []*Block {
	return append([]*Block{b.authority}, b.blocks...)
}

// Symbols returns the token's merged running symbol table.
func (b *Biscuit) Symbols() *symbol.Table { return b.symbols }

// PublicKeys returns the token's merged public-key table.
func (b *Biscuit) PublicKeys() *symbol.PublicKeyTable { return b.publicKeys }

// Sealed reports whether the token has been sealed.
func (b *Biscuit) Sealed() bool { return b.sealed }
