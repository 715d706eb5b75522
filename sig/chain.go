package sig

import "crypto/sha256"

func sha256P256(msg []byte) []byte {
	sum := sha256.Sum256(msg)
	return sum[:]
}

// BlockMessage returns the bytes signed for a block at position index
// in the chain: the block's own payload, the public key that signs
// the *next* block, and (for every block but the first) the previous
// block's signature — per spec.md §4.4, "Each subsequent block
// re-signs (block_i.payload ‖ block_i.next_pub ‖ sig_{i-1})".
func BlockMessage(payload, nextPub, prevSignature []byte) []byte {
	msg := make([]byte, 0, len(payload)+len(nextPub)+len(prevSignature))
	msg = append(msg, payload...)
	msg = append(msg, nextPub...)
	msg = append(msg, prevSignature...)
	return msg
}

// ExternalBlockMessage returns the bytes a third-party block signs
// with its own external key: the block payload, the preceding block's
// next_pub (what the delegation was issued against), and the
// third-party's own public key, per spec.md §4.4.
func ExternalBlockMessage(payload, precedingNextPub []byte, externalPub PublicKey) []byte {
	msg := make([]byte, 0, len(payload)+len(precedingNextPub)+33)
	msg = append(msg, payload...)
	msg = append(msg, precedingNextPub...)
	return append(msg, externalPub.Marshal()...)
}

// SealMessage returns the bytes signed to seal a token: a signature
// over the chain computed with the final block's next_private key,
// after which that key is destroyed (spec.md §4.4 "sealed = true").
func SealMessage(lastPayload, lastNextPub, lastSignature []byte) []byte {
	return BlockMessage(lastPayload, lastNextPub, lastSignature)
}
