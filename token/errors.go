package token

import "errors"

var (
	// ErrSymbolTableOverlap is returned when a block introduces a
	// symbol already present in the token's running table (spec.md
	// §4.1 requires disjoint block-local tables).
	ErrSymbolTableOverlap = errors.New("token: symbol table overlap")
	// ErrInvalidBlockIndex is returned when a block does not occupy
	// the next position in the chain.
	ErrInvalidBlockIndex = errors.New("token: invalid block index")
	// ErrEmptyKeys names a token with no signature-chain keys. No
	// function in this package returns it.
	ErrEmptyKeys = errors.New("token: empty key chain")
	// ErrUnknownPublicKey names a root key that does not match the one
	// that signed the authority block. Verify does not return it: it
	// reports such a mismatch as the signature error from sig.
	ErrUnknownPublicKey = errors.New("token: unknown root public key")
	// ErrAppendOnSealed is returned by Append on a sealed token.
	ErrAppendOnSealed = errors.New("token: cannot append to a sealed token")
	// ErrAlreadySealed is returned by Seal on an already-sealed token.
	ErrAlreadySealed = errors.New("token: token is already sealed")
	// ErrUnsupportedVersion is returned when a block's format version
	// exceeds CurrentVersion.
	ErrUnsupportedVersion = errors.New("token: unsupported block version")
	// ErrInvalidRootKeyID is returned when a token names a root key id
	// the verifier's key provider does not recognize.
	ErrInvalidRootKeyID = errors.New("token: unknown root key id")
)
