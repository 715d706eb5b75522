package token

import (
	"github.com/biscuit-core/biscuit/datalog"
	"github.com/biscuit-core/biscuit/sig"
	"github.com/biscuit-core/biscuit/symbol"
	"github.com/biscuit-core/biscuit/term"
)

// BlockBuilder accumulates the facts, rules, checks and scopes of one
// block before it is signed onto a chain (spec.md §4.6). Symbols
// starts as a copy of the table the block will eventually merge into;
// PublicKeys starts empty. Build carves out only the entries this
// builder itself introduced.
type BlockBuilder struct {
	index uint32

	symbols      *symbol.Table
	symbolsStart int
	publicKeys   *symbol.PublicKeyTable
	pubKeysStart int

	facts   []term.Predicate
	rules   []datalog.Rule
	checks  []datalog.Check
	scopes  []datalog.Scope
	context string
}

func newBlockBuilder(index uint32, symbols *symbol.Table) *BlockBuilder {
	return &BlockBuilder{
		index:        index,
		symbols:      symbols,
		symbolsStart: symbols.Len(),
		publicKeys:   symbol.NewPublicKeyTable(),
	}
}

// Symbol interns s into the builder's symbol table and returns it as a
// String term, ready to be used in a fact or rule argument.
func (bb *BlockBuilder) Symbol(s string) term.String {
	return term.String(bb.symbols.Insert(s))
}

// PredicateName interns name the same way Symbol does; kept distinct
// so callers building Predicate.Name (a bare symbol.ID, not a term)
// don't need an extra type assertion.
func (bb *BlockBuilder) PredicateName(name string) symbol.ID {
	return bb.symbols.Insert(name)
}

// AddFact appends a ground fact to the block. It is an error to add a
// fact containing a Variable (spec.md §3: facts are always ground).
func (bb *BlockBuilder) AddFact(pred term.Predicate) error {
	if !pred.IsGround() {
		return datalog.ErrUnknownVariable
	}
	bb.facts = append(bb.facts, pred)
	return nil
}

// AddRule appends a rule to the block.
func (bb *BlockBuilder) AddRule(r datalog.Rule) {
	bb.rules = append(bb.rules, r)
}

// AddCheck appends a check to the block.
func (bb *BlockBuilder) AddCheck(c datalog.Check) {
	bb.checks = append(bb.checks, c)
}

// AddScope adds one of the block's default trust scopes (spec.md
// §4.3), applied to every rule in the block that declares no scope of
// its own.
func (bb *BlockBuilder) AddScope(s datalog.Scope) {
	bb.scopes = append(bb.scopes, s)
}

// TrustPublicKey interns an external public key into the block's
// table and returns the symbol id a ScopePublicKey scope can
// reference.
func (bb *BlockBuilder) TrustPublicKey(k sig.PublicKey) symbol.ID {
	// public keys are interned into the symbol table as the raw bytes
	// of their marshaled form, so ScopePublicKey's PublicKey field (a
	// symbol.ID) can serve as the lookup key; the key is not added to
	// the block's PublicKeys table.
	return bb.symbols.Insert(string(k.Marshal()))
}

// SetContext sets the block's free-form context string.
func (bb *BlockBuilder) SetContext(ctx string) {
	bb.context = ctx
}

// Build finalizes the block, carving the symbols and public keys this
// builder introduced out of the shared tables it was given.
func (bb *BlockBuilder) Build() *Block {
	return &Block{
		Index:      bb.index,
		Symbols:    bb.symbols.SplitOff(bb.symbolsStart),
		PublicKeys: bb.publicKeys.SplitOff(bb.pubKeysStart),
		Facts:      bb.facts,
		Rules:      bb.rules,
		Checks:     bb.checks,
		Scopes:     bb.scopes,
		Context:    bb.context,
		Version:    CurrentVersion,
	}
}

// Builder builds the authority block and signs the resulting token,
// the entry point for constructing a fresh Biscuit (spec.md §4.6).
type Builder struct {
	*BlockBuilder
	root      sig.Keypair
	rootKeyID *uint32
	baseline  *symbol.Table
}

// NewBuilder returns a Builder that will sign the authority block with
// root. baseSymbols seeds the running table shared by every block
// (typically symbol.New() populated with any organization-wide
// symbols); pass nil to start from an empty table.
func NewBuilder(root sig.Keypair, baseSymbols *symbol.Table) *Builder {
	if baseSymbols == nil {
		baseSymbols = symbol.New()
	}
	return &Builder{
		BlockBuilder: newBlockBuilder(0, baseSymbols.Clone()),
		root:         root,
		baseline:     baseSymbols,
	}
}

// WithRootKeyID records the root_key_id the resulting token should
// advertise, for a verifier doing root-key rotation to resolve the
// matching key (spec.md §4.6).
func (b *Builder) WithRootKeyID(id uint32) *Builder {
	b.rootKeyID = &id
	return b
}

// Build signs and returns the finished single-block token.
func (b *Builder) Build() (*Biscuit, error) {
	return New(nil, b.root, b.rootKeyID, b.baseline, b.BlockBuilder.Build())
}
