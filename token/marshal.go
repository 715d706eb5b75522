package token

import (
	"github.com/biscuit-core/biscuit/sig"
	"github.com/biscuit-core/biscuit/symbol"
	"github.com/biscuit-core/biscuit/token/wire"
)

// Serialize encodes the token to its wire form. The result carries
// the token's root_key_id, if any, for the verifier's KeyProvider to
// resolve the matching root key.
func (b *Biscuit) Serialize() ([]byte, error) {
	return wire.EncodeBiscuit(wire.Biscuit{
		Authority:       b.authoritySigned,
		Blocks:          b.blocksSigned,
		RootKeyID:       b.rootKeyID,
		SealedSignature: b.sealedSignature,
	}), nil
}

// Unmarshal parses and verifies serialized, resolving the signing root
// key through keys and building the token's running symbol and
// public-key tables on top of baseSymbols.
func Unmarshal(serialized []byte, baseSymbols *symbol.Table, keys KeyProvider) (*Biscuit, error) {
	container, err := wire.DecodeBiscuit(serialized)
	if err != nil {
		return nil, err
	}

	authorityBlock, err := wire.DecodeBlock(container.Authority.Payload)
	if err != nil {
		return nil, err
	}
	if authorityBlock.Version > CurrentVersion {
		return nil, ErrUnsupportedVersion
	}
	authority, err := blockFromWire(0, authorityBlock, nil)
	if err != nil {
		return nil, err
	}

	symbols := baseSymbols.Clone()
	symbols.Extend(authority.Symbols)
	pubkeys := symbol.NewPublicKeyTable()
	pubkeys.Extend(authority.PublicKeys)

	blocks := make([]*Block, 0, len(container.Blocks))
	for i, sb := range container.Blocks {
		w, err := wire.DecodeBlock(sb.Payload)
		if err != nil {
			return nil, err
		}
		if w.Version > CurrentVersion {
			return nil, ErrUnsupportedVersion
		}
		var externalKey *sig.PublicKey
		if len(sb.ExternalKey) > 0 {
			pk, err := sig.UnmarshalPublicKey(sb.ExternalKey)
			if err != nil {
				return nil, err
			}
			externalKey = &pk
		}
		blk, err := blockFromWire(uint32(i+1), w, externalKey)
		if err != nil {
			return nil, err
		}
		symbols.Extend(blk.Symbols)
		pubkeys.Extend(blk.PublicKeys)
		blocks = append(blocks, blk)
	}

	root, err := keys.PublicKey(container.RootKeyID)
	if err != nil {
		return nil, err
	}

	last := container.Authority
	if len(container.Blocks) > 0 {
		last = container.Blocks[len(container.Blocks)-1]
	}

	b := &Biscuit{
		authority:       authority,
		blocks:          blocks,
		symbols:         symbols,
		publicKeys:      pubkeys,
		rootKeyID:       container.RootKeyID,
		authoritySigned: container.Authority,
		blocksSigned:    container.Blocks,
		lastPayload:     last.Payload,
		lastNextPub:     last.NextKey,
		lastSignature:   last.Signature,
		sealed:          len(container.SealedSignature) > 0,
		sealedSignature: container.SealedSignature,
	}

	if err := b.Verify(root); err != nil {
		return nil, err
	}
	return b, nil
}
