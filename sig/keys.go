// Package sig implements the public-key cryptography used to build and
// verify a biscuit's block signature chain: Ed25519 by default, NIST
// P-256 as the alternate algorithm named on the wire.
package sig

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/awnumar/memguard"
)

// Algorithm identifies which curve a key pair and signature use. It is
// carried on the wire as the algorithm_tag byte preceding a public
// key's 32-byte compressed form (spec.md §6).
type Algorithm byte

const (
	Ed25519 Algorithm = iota
	P256
)

func (a Algorithm) String() string {
	switch a {
	case Ed25519:
		return "ed25519"
	case P256:
		return "p256"
	default:
		return fmt.Sprintf("algorithm(%d)", byte(a))
	}
}

var (
	ErrUnsupportedAlgorithm = errors.New("sig: unsupported algorithm")
	ErrInvalidPublicKeySize = errors.New("sig: invalid public key size")
	ErrInvalidSignatureSize = errors.New("sig: invalid signature size")
	ErrInvalidSignature     = errors.New("sig: invalid signature")
)

// PublicKey is an algorithm-tagged public key, comparable and usable
// as a map key so it can be interned in a symbol.PublicKeyTable and
// indexed by public_key_to_block_id.
type PublicKey struct {
	Algorithm Algorithm
	Bytes     [32]byte
}

// NewPublicKey decodes the 32-byte compressed form of a public key for
// the given algorithm.
func NewPublicKey(alg Algorithm, raw []byte) (PublicKey, error) {
	if len(raw) != 32 {
		return PublicKey{}, ErrInvalidPublicKeySize
	}
	var pk PublicKey
	pk.Algorithm = alg
	copy(pk.Bytes[:], raw)
	return pk, nil
}

// Marshal returns the algorithm_tag ‖ 32-byte-compressed wire form.
func (k PublicKey) Marshal() []byte {
	out := make([]byte, 0, 33)
	out = append(out, byte(k.Algorithm))
	return append(out, k.Bytes[:]...)
}

// UnmarshalPublicKey parses the algorithm_tag ‖ 32-byte-compressed
// wire form produced by Marshal.
func UnmarshalPublicKey(data []byte) (PublicKey, error) {
	if len(data) != 33 {
		return PublicKey{}, ErrInvalidPublicKeySize
	}
	alg := Algorithm(data[0])
	if alg != Ed25519 && alg != P256 {
		return PublicKey{}, ErrUnsupportedAlgorithm
	}
	return NewPublicKey(alg, data[1:])
}

func (k PublicKey) ed25519() ed25519.PublicKey {
	return ed25519.PublicKey(k.Bytes[:])
}

func (k PublicKey) ecdsa() (*ecdsa.PublicKey, error) {
	curve := elliptic.P256()
	x, y := elliptic.UnmarshalCompressed(curve, k.Bytes[:])
	if x == nil {
		return nil, ErrInvalidPublicKeySize
	}
	return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, nil
}

// Verify checks sig over msg under k, dispatching on k.Algorithm.
func (k PublicKey) Verify(msg, signature []byte) error {
	switch k.Algorithm {
	case Ed25519:
		if len(signature) != ed25519.SignatureSize {
			return ErrInvalidSignatureSize
		}
		if !ed25519.Verify(k.ed25519(), msg, signature) {
			return ErrInvalidSignature
		}
		return nil
	case P256:
		if len(signature) != 64 {
			return ErrInvalidSignatureSize
		}
		pub, err := k.ecdsa()
		if err != nil {
			return err
		}
		r := new(big.Int).SetBytes(signature[:32])
		s := new(big.Int).SetBytes(signature[32:])
		hash := sha256P256(msg)
		if !ecdsa.Verify(pub, hash, r, s) {
			return ErrInvalidSignature
		}
		return nil
	default:
		return ErrUnsupportedAlgorithm
	}
}

// PrivateKey wraps the signing half of a key pair. The raw key
// material lives in a memguard.LockedBuffer so it is mlock'd and
// scrubbed from memory once Destroy is called, per spec.md §5's
// zeroize policy for scoped secrets.
type PrivateKey struct {
	algorithm Algorithm
	buf       *memguard.LockedBuffer
}

// Destroy wipes the private key material. Safe to call more than
// once; a destroyed key can no longer sign.
func (k *PrivateKey) Destroy() {
	if k.buf != nil {
		k.buf.Destroy()
	}
}

func (k *PrivateKey) raw() []byte {
	return k.buf.Bytes()
}

// Public derives the public half of the key pair.
func (k *PrivateKey) Public() PublicKey {
	switch k.algorithm {
	case Ed25519:
		pub := ed25519.NewKeyFromSeed(k.raw()).Public().(ed25519.PublicKey)
		var pk PublicKey
		pk.Algorithm = Ed25519
		copy(pk.Bytes[:], pub)
		return pk
	case P256:
		priv := k.ecdsaPrivate()
		var pk PublicKey
		pk.Algorithm = P256
		copy(pk.Bytes[:], elliptic.MarshalCompressed(priv.Curve, priv.X, priv.Y))
		return pk
	default:
		return PublicKey{}
	}
}

func (k *PrivateKey) ecdsaPrivate() *ecdsa.PrivateKey {
	curve := elliptic.P256()
	priv := new(ecdsa.PrivateKey)
	priv.Curve = curve
	priv.D = new(big.Int).SetBytes(k.raw())
	priv.PublicKey.X, priv.PublicKey.Y = curve.ScalarBaseMult(k.raw())
	return priv
}

// Sign signs msg, returning a wire-format signature (64 bytes for
// both Ed25519 and P-256 raw r‖s).
func (k *PrivateKey) Sign(msg []byte) ([]byte, error) {
	switch k.algorithm {
	case Ed25519:
		return ed25519.Sign(ed25519.NewKeyFromSeed(k.raw()), msg), nil
	case P256:
		hash := sha256P256(msg)
		r, s, err := ecdsa.Sign(rand.Reader, k.ecdsaPrivate(), hash)
		if err != nil {
			return nil, err
		}
		out := make([]byte, 64)
		r.FillBytes(out[:32])
		s.FillBytes(out[32:])
		return out, nil
	default:
		return nil, ErrUnsupportedAlgorithm
	}
}

// Keypair is a matched private/public key pair.
type Keypair struct {
	Private *PrivateKey
	PublicKey
}

// Generate creates a new keypair for alg, reading randomness from rng
// (crypto/rand.Reader if nil).
func Generate(alg Algorithm, rng io.Reader) (Keypair, error) {
	if rng == nil {
		rng = rand.Reader
	}

	switch alg {
	case Ed25519:
		_, priv, err := ed25519.GenerateKey(rng)
		if err != nil {
			return Keypair{}, err
		}
		buf := memguard.NewBufferFromBytes(append([]byte(nil), priv.Seed()...))
		pk := &PrivateKey{algorithm: Ed25519, buf: buf}
		return Keypair{Private: pk, PublicKey: pk.Public()}, nil
	case P256:
		curve := elliptic.P256()
		priv, err := ecdsa.GenerateKey(curve, rng)
		if err != nil {
			return Keypair{}, err
		}
		raw := make([]byte, 32)
		priv.D.FillBytes(raw)
		buf := memguard.NewBufferFromBytes(raw)
		pk := &PrivateKey{algorithm: P256, buf: buf}
		return Keypair{Private: pk, PublicKey: pk.Public()}, nil
	default:
		return Keypair{}, ErrUnsupportedAlgorithm
	}
}

// NewPrivateKey wraps raw scalar bytes (an Ed25519 seed or a P-256
// scalar) as a zeroize-on-destroy private key.
func NewPrivateKey(alg Algorithm, raw []byte) (*PrivateKey, error) {
	if alg != Ed25519 && alg != P256 {
		return nil, ErrUnsupportedAlgorithm
	}
	buf := memguard.NewBufferFromBytes(append([]byte(nil), raw...))
	return &PrivateKey{algorithm: alg, buf: buf}, nil
}
