package token

import (
	"crypto/rand"
	"io"

	"github.com/biscuit-core/biscuit/sig"
	"github.com/biscuit-core/biscuit/token/wire"
)

// ThirdPartyBlockRequest is what a token holder sends to an external
// party being asked to contribute a block: the public key that the
// new block's delegation is issued against, i.e. the current chain
// tip's next_pub (spec.md §4.6 "third-party blocks").
type ThirdPartyBlockRequest struct {
	PreviousNextKey []byte
}

// ThirdPartyRequest builds the request for the next block a third
// party could append to b.
func (b *Biscuit) ThirdPartyRequest() ThirdPartyBlockRequest {
	return ThirdPartyBlockRequest{PreviousNextKey: b.lastNextPub}
}

// ThirdPartyBlockResponse is what the external party returns: its
// signed, serialized block, ready to be folded back into the chain by
// the original holder.
type ThirdPartyBlockResponse struct {
	Payload           []byte
	ExternalSignature []byte
	ExternalKey       []byte
}

// BuildThirdPartyBlock signs block on behalf of an external party
// holding keypair, against req (spec.md §4.6: the external signature
// covers the block payload, the preceding next_pub, and the signer's
// own public key, so it cannot be replayed against a different
// chain position).
func BuildThirdPartyBlock(req ThirdPartyBlockRequest, keypair sig.Keypair, block *Block) (*ThirdPartyBlockResponse, error) {
	payload, err := block.Marshal()
	if err != nil {
		return nil, err
	}
	msg := sig.ExternalBlockMessage(payload, req.PreviousNextKey, keypair.PublicKey)
	signature, err := keypair.Private.Sign(msg)
	if err != nil {
		return nil, err
	}
	return &ThirdPartyBlockResponse{
		Payload:           payload,
		ExternalSignature: signature,
		ExternalKey:       keypair.PublicKey.Marshal(),
	}, nil
}

// AppendThirdParty folds an external party's signed block into the
// chain. The chain-link signature is produced locally, by whoever
// holds the current next-block secret — the external signature only
// proves the third party authored the block's content.
func (b *Biscuit) AppendThirdParty(rng io.Reader, resp *ThirdPartyBlockResponse) (*Biscuit, error) {
	if rng == nil {
		rng = rand.Reader
	}
	if b.sealed {
		return nil, ErrAppendOnSealed
	}

	w, err := wire.DecodeBlock(resp.Payload)
	if err != nil {
		return nil, err
	}
	externalKey, err := sig.UnmarshalPublicKey(resp.ExternalKey)
	if err != nil {
		return nil, err
	}
	block, err := blockFromWire(uint32(len(b.blocks)+1), w, &externalKey)
	if err != nil {
		return nil, err
	}
	if !b.symbols.IsDisjoint(block.Symbols) {
		return nil, ErrSymbolTableOverlap
	}

	symbols := b.symbols.Clone()
	symbols.Extend(block.Symbols)
	pubkeys := b.publicKeys.Clone()
	pubkeys.Extend(block.PublicKeys)

	nextKP, err := sig.Generate(b.nextSecret.Public().Algorithm, rng)
	if err != nil {
		return nil, err
	}
	nextPub := nextKP.PublicKey.Marshal()

	msg := sig.BlockMessage(resp.Payload, nextPub, b.lastSignature)
	signature, err := b.nextSecret.Sign(msg)
	if err != nil {
		return nil, err
	}

	signed := wire.SignedBlock{
		Payload:           resp.Payload,
		NextKey:           nextPub,
		Signature:         signature,
		ExternalSignature: resp.ExternalSignature,
		ExternalKey:       resp.ExternalKey,
	}

	return &Biscuit{
		authority:       b.authority,
		blocks:          append(append([]*Block(nil), b.blocks...), block),
		symbols:         symbols,
		publicKeys:      pubkeys,
		rootKeyID:       b.rootKeyID,
		authoritySigned: b.authoritySigned,
		blocksSigned:    append(append([]wire.SignedBlock(nil), b.blocksSigned...), signed),
		lastPayload:     resp.Payload,
		lastNextPub:     nextPub,
		lastSignature:   signature,
		nextSecret:      nextKP.Private,
	}, nil
}
