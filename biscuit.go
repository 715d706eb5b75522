// Package biscuit is the public facade over the token chain, the
// Datalog engine and the authorization state machine: construct a
// token with Builder, verify and authorize it with Authorizer, and
// serialize either to bytes (spec.md §1, §9).
package biscuit

import (
	"io"

	"github.com/biscuit-core/biscuit/authorizer"
	"github.com/biscuit-core/biscuit/datalog"
	"github.com/biscuit-core/biscuit/sig"
	"github.com/biscuit-core/biscuit/symbol"
	"github.com/biscuit-core/biscuit/term"
	"github.com/biscuit-core/biscuit/token"
)

// Re-exported types, so a caller importing only the root package never
// needs to reach into a subpackage for the shapes it builds requests
// and policies out of.
type (
	Biscuit            = token.Biscuit
	Block              = token.Block
	Builder            = token.Builder
	BlockBuilder       = token.BlockBuilder
	KeyProvider        = token.KeyProvider
	StaticKeyProvider  = token.StaticKeyProvider
	ThirdPartyRequest  = token.ThirdPartyBlockRequest
	ThirdPartyResponse = token.ThirdPartyBlockResponse

	Authorizer  = authorizer.Authorizer
	LogicError  = authorizer.LogicError
	FailedCheck = authorizer.FailedCheck

	Keypair    = sig.Keypair
	PrivateKey = sig.PrivateKey
	PublicKey  = sig.PublicKey
	Algorithm  = sig.Algorithm

	SymbolTable = symbol.Table

	Term      = term.Term
	Predicate = term.Predicate
	Variable  = term.Variable

	Rule   = datalog.Rule
	Check  = datalog.Check
	Policy = datalog.Policy
	Scope  = datalog.Scope

	RunLimits = datalog.RunLimits
)

// Algorithm values, re-exported for callers that only import the root
// package.
const (
	Ed25519 = sig.Ed25519
	P256    = sig.P256
)

// Policy and check combinator kinds.
const (
	PolicyAllow = datalog.PolicyAllow
	PolicyDeny  = datalog.PolicyDeny

	CheckOne    = datalog.CheckOne
	CheckAll    = datalog.CheckAll
	CheckReject = datalog.CheckReject

	ScopeAuthority = datalog.ScopeAuthority
	ScopePrevious  = datalog.ScopePrevious
	ScopePublicKey = datalog.ScopePublicKey
)

// GenerateKeypair creates a fresh keypair for alg, reading randomness
// from rng (crypto/rand.Reader if nil).
func GenerateKeypair(alg Algorithm, rng io.Reader) (Keypair, error) {
	return sig.Generate(alg, rng)
}

// NewBuilder returns a Builder that signs the authority block with
// root. baseSymbols seeds the running symbol table shared by every
// block; pass nil to start from an empty table.
func NewBuilder(root Keypair, baseSymbols *SymbolTable) *Builder {
	return token.NewBuilder(root, baseSymbols)
}

// Unmarshal decodes and verifies a serialized token, resolving its
// root public key through keys.
func Unmarshal(data []byte, baseSymbols *SymbolTable, keys KeyProvider) (*Biscuit, error) {
	return token.Unmarshal(data, baseSymbols, keys)
}

// DefaultRunLimits mirrors the reference implementation's execution
// bounds: 1000 facts, 100 iterations, 1ms (spec.md §4.4, §6).
func DefaultRunLimits() RunLimits {
	return datalog.DefaultRunLimits()
}

// NewAuthorizer returns an authorizer with no token attached, useful
// for evaluating a standalone policy set (spec.md §9).
func NewAuthorizer(limits RunLimits) *Authorizer {
	return authorizer.New(limits)
}

// NewAuthorizerForToken returns an authorizer seeded with tok's
// facts, rules, checks and scopes.
func NewAuthorizerForToken(tok *Biscuit, limits RunLimits) (*Authorizer, error) {
	return authorizer.NewFromToken(tok, limits)
}

// Error sentinels, re-exported so a caller importing only the root
// package can compare against errors.Is without reaching into a
// subpackage.
var (
	ErrSymbolTableOverlap = token.ErrSymbolTableOverlap
	ErrInvalidBlockIndex  = token.ErrInvalidBlockIndex
	ErrEmptyKeys          = token.ErrEmptyKeys
	ErrUnknownPublicKey   = token.ErrUnknownPublicKey
	ErrAppendOnSealed     = token.ErrAppendOnSealed
	ErrAlreadySealed      = token.ErrAlreadySealed
	ErrUnsupportedVersion = token.ErrUnsupportedVersion
	ErrInvalidRootKeyID   = token.ErrInvalidRootKeyID

	ErrNoToken    = authorizer.ErrNoToken
	ErrAlreadyRun = authorizer.ErrAlreadyRun

	ErrUnsupportedAlgorithm = sig.ErrUnsupportedAlgorithm
	ErrInvalidPublicKeySize = sig.ErrInvalidPublicKeySize
	ErrInvalidSignatureSize = sig.ErrInvalidSignatureSize
	ErrInvalidSignature     = sig.ErrInvalidSignature

	ErrPreviousScopeOnAuthorizer = datalog.ErrPreviousScopeOnAuthorizer
	ErrInvalidType               = datalog.ErrInvalidType
	ErrDivByZero                 = datalog.ErrDivByZero
	ErrIntegerOverflow           = datalog.ErrIntegerOverflow
	ErrUnknownVariable           = datalog.ErrUnknownVariable
	ErrStackUnderflow            = datalog.ErrStackUnderflow
	ErrStackOverflow             = datalog.ErrStackOverflow
)
