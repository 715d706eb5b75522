package token

import "github.com/biscuit-core/biscuit/sig"

// Verify checks every signature in the chain against root, the
// expected signer of the authority block, and against each block's
// declared next-key for the one that follows it (spec.md §4.4: each
// block's signature is verified with the *previous* block's next_pub;
// third-party blocks additionally carry their own external signature,
// verified against their own external_key).
func (b *Biscuit) Verify(root sig.PublicKey) error {
	if err := root.Verify(sig.BlockMessage(b.authoritySigned.Payload, b.authoritySigned.NextKey, nil), b.authoritySigned.Signature); err != nil {
		return err
	}

	prevNextKey := b.authoritySigned.NextKey
	prevSignature := b.authoritySigned.Signature

	for _, sb := range b.blocksSigned {
		if len(sb.ExternalKey) > 0 {
			externalPub, err := sig.UnmarshalPublicKey(sb.ExternalKey)
			if err != nil {
				return err
			}
			extMsg := sig.ExternalBlockMessage(sb.Payload, prevNextKey, externalPub)
			if err := externalPub.Verify(extMsg, sb.ExternalSignature); err != nil {
				return err
			}
		}

		prevPub, err := sig.UnmarshalPublicKey(prevNextKey)
		if err != nil {
			return err
		}
		msg := sig.BlockMessage(sb.Payload, sb.NextKey, prevSignature)
		if err := prevPub.Verify(msg, sb.Signature); err != nil {
			return err
		}

		prevNextKey = sb.NextKey
		prevSignature = sb.Signature
	}

	if b.sealed {
		finalPub, err := sig.UnmarshalPublicKey(prevNextKey)
		if err != nil {
			return err
		}
		sealMsg := sig.SealMessage(b.lastPayload, b.lastNextPub, b.lastSignature)
		if err := finalPub.Verify(sealMsg, b.sealedSignature); err != nil {
			return err
		}
	}

	return nil
}
