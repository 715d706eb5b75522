package wire

import "google.golang.org/protobuf/encoding/protowire"

// SignedBlock is one link of the token's signature chain on the wire:
// a serialized Block payload, the public key that must verify the
// *next* block's signature, the signature itself, and — for a
// third-party block — the external signer's own signature and public
// key (spec.md §4.4, §4.6).
type SignedBlock struct {
	Payload           []byte
	NextKey           []byte
	Signature         []byte
	ExternalSignature []byte
	ExternalKey       []byte
}

const (
	fieldSignedBlockPayload     = protowire.Number(1)
	fieldSignedBlockNextKey     = protowire.Number(2)
	fieldSignedBlockSignature   = protowire.Number(3)
	fieldSignedBlockExtSig      = protowire.Number(4)
	fieldSignedBlockExtKey      = protowire.Number(5)
)

// EncodeSignedBlock serializes a SignedBlock.
func EncodeSignedBlock(sb SignedBlock) []byte {
	var b []byte
	b = appendBytesField(b, fieldSignedBlockPayload, sb.Payload)
	b = appendBytesField(b, fieldSignedBlockNextKey, sb.NextKey)
	b = appendBytesField(b, fieldSignedBlockSignature, sb.Signature)
	if len(sb.ExternalSignature) > 0 {
		b = appendBytesField(b, fieldSignedBlockExtSig, sb.ExternalSignature)
		b = appendBytesField(b, fieldSignedBlockExtKey, sb.ExternalKey)
	}
	return b
}

// DecodeSignedBlock parses a SignedBlock.
func DecodeSignedBlock(b []byte) (SignedBlock, error) {
	fields, err := parseFields(b)
	if err != nil {
		return SignedBlock{}, err
	}
	var sb SignedBlock
	for _, f := range fields {
		switch f.Num {
		case fieldSignedBlockPayload:
			sb.Payload = f.Bytes
		case fieldSignedBlockNextKey:
			sb.NextKey = f.Bytes
		case fieldSignedBlockSignature:
			sb.Signature = f.Bytes
		case fieldSignedBlockExtSig:
			sb.ExternalSignature = f.Bytes
		case fieldSignedBlockExtKey:
			sb.ExternalKey = f.Bytes
		}
	}
	return sb, nil
}

// Biscuit is the top-level wire container: the authority block, the
// attenuation chain, an optional root-key identifier for rotation
// (spec.md §4.6), and — once the token has been sealed — a final
// sealing signature in place of a reusable next-block key.
type Biscuit struct {
	Authority       SignedBlock
	Blocks          []SignedBlock
	RootKeyID       *uint32
	SealedSignature []byte
}

const (
	fieldBiscuitAuthority = protowire.Number(1)
	fieldBiscuitBlock     = protowire.Number(2)
	fieldBiscuitRootKeyID = protowire.Number(3)
	fieldBiscuitSealed    = protowire.Number(4)
)

// EncodeBiscuit serializes a Biscuit container.
func EncodeBiscuit(bc Biscuit) []byte {
	var b []byte
	b = appendBytesField(b, fieldBiscuitAuthority, EncodeSignedBlock(bc.Authority))
	for _, blk := range bc.Blocks {
		b = appendBytesField(b, fieldBiscuitBlock, EncodeSignedBlock(blk))
	}
	if bc.RootKeyID != nil {
		b = appendVarintField(b, fieldBiscuitRootKeyID, uint64(*bc.RootKeyID))
	}
	if len(bc.SealedSignature) > 0 {
		b = appendBytesField(b, fieldBiscuitSealed, bc.SealedSignature)
	}
	return b
}

// DecodeBiscuit parses a Biscuit container.
func DecodeBiscuit(b []byte) (Biscuit, error) {
	fields, err := parseFields(b)
	if err != nil {
		return Biscuit{}, err
	}
	var bc Biscuit
	for _, f := range fields {
		switch f.Num {
		case fieldBiscuitAuthority:
			sb, err := DecodeSignedBlock(f.Bytes)
			if err != nil {
				return Biscuit{}, err
			}
			bc.Authority = sb
		case fieldBiscuitBlock:
			sb, err := DecodeSignedBlock(f.Bytes)
			if err != nil {
				return Biscuit{}, err
			}
			bc.Blocks = append(bc.Blocks, sb)
		case fieldBiscuitRootKeyID:
			id := uint32(f.Varint)
			bc.RootKeyID = &id
		case fieldBiscuitSealed:
			bc.SealedSignature = f.Bytes
		}
	}
	return bc, nil
}
