// Package authorizer implements the authorization state machine that
// decides whether a token permits a request: it drives the Datalog
// engine to a fixed point, then evaluates authorizer checks, the
// token's authority-block checks, policies (first match wins), and
// the remaining attenuation blocks' checks, in that exact order
// (spec.md §4.5).
package authorizer

import (
	"time"

	"github.com/biscuit-core/biscuit/datalog"
	"github.com/biscuit-core/biscuit/symbol"
	"github.com/biscuit-core/biscuit/term"
	"github.com/biscuit-core/biscuit/token"
)

// Authorizer accumulates authorizer-local facts, rules, checks and
// policies, optionally against a loaded token, and decides the
// outcome via Authorize.
type Authorizer struct {
	world   *datalog.World
	symbols *symbol.Table
	pkIndex datalog.PublicKeyIndex
	externs datalog.Externs

	localScopes []datalog.Scope
	localChecks []datalog.Check
	localFacts  []term.Predicate
	localRules  []datalog.Rule
	policies    []datalog.Policy

	// allOrigins is every origin known to the authorizer (every block
	// index plus AuthorizerOrigin), used by QueryAll for a scope-less
	// rule — "explore the whole store" rather than the authorizer's own
	// default trust, per the Rust query_all_inner's token_origins.
	allOrigins datalog.TrustedOrigins

	tok *token.Biscuit

	limits   datalog.RunLimits
	ran      bool
	runError error
	execTime time.Duration
}

// New returns an empty, unauthenticated authorizer (spec.md §9: useful
// when there is no token, or when the same policy set will be reused
// across many tokens via Clone).
func New(limits datalog.RunLimits) *Authorizer {
	symbols := symbol.New()
	externs := datalog.NewExterns()
	return &Authorizer{
		world:      datalog.NewWorld(symbols, externs),
		symbols:    symbols,
		pkIndex:    make(datalog.PublicKeyIndex),
		externs:    externs,
		allOrigins: datalog.TrustedOrigins(datalog.NewOriginSet(datalog.AuthorizerOrigin)),
		limits:     limits,
	}
}

// NewFromToken builds an authorizer seeded with tok's facts, rules,
// checks and scopes, each tagged with the origin of the block that
// declared it (spec.md §4.4, §4.5).
func NewFromToken(tok *token.Biscuit, limits datalog.RunLimits) (*Authorizer, error) {
	a := New(limits)
	a.tok = tok
	a.symbols = tok.Symbols().Clone()
	a.world = datalog.NewWorld(a.symbols, a.externs)

	blocks := tok.Blocks()
	all := datalog.NewOriginSet(datalog.AuthorizerOrigin)
	for _, blk := range blocks {
		origin := datalog.Origin(blk.Index)
		all = all.Union(datalog.NewOriginSet(origin))
		for _, k := range blk.PublicKeys.Keys() {
			id := a.symbols.Insert(string(k.Marshal()))
			a.pkIndex[id] = append(a.pkIndex[id], origin)
		}
	}
	a.allOrigins = datalog.TrustedOrigins(all)

	for _, blk := range blocks {
		origin := datalog.Origin(blk.Index)
		containing, err := blockTrustedOrigins(blk, a.pkIndex)
		if err != nil {
			return nil, err
		}
		for _, f := range blk.Facts {
			a.world.Facts.Insert(datalog.NewOriginSet(origin), f)
		}
		for _, r := range blk.Rules {
			a.world.AddRule(origin, r, containing)
		}
	}

	return a, nil
}

// blockTrustedOrigins resolves a block's own default trust scope
// (spec.md §4.3), the context every check and rule declared directly
// in that block inherits when it names no scope of its own.
func blockTrustedOrigins(blk *token.Block, index datalog.PublicKeyIndex) (datalog.TrustedOrigins, error) {
	return datalog.FromScopes(blk.Scopes, datalog.TrustedOrigins{}, datalog.Origin(blk.Index), index)
}

// AddFact adds an authorizer-local fact.
func (a *Authorizer) AddFact(p term.Predicate) {
	a.localFacts = append(a.localFacts, p)
	a.world.Facts.Insert(datalog.NewOriginSet(datalog.AuthorizerOrigin), p)
}

// AddRule adds an authorizer-local rule.
func (a *Authorizer) AddRule(r datalog.Rule) {
	a.localRules = append(a.localRules, r)
	containing := datalog.TrustedOrigins(datalog.NewOriginSet(datalog.AuthorizerOrigin, 0))
	a.world.AddRule(datalog.AuthorizerOrigin, r, containing)
}

// AddCheck adds an authorizer-local check.
func (a *Authorizer) AddCheck(c datalog.Check) {
	a.localChecks = append(a.localChecks, c)
}

// AddPolicy adds a policy, evaluated in declaration order, first match
// wins (spec.md §4.5).
func (a *Authorizer) AddPolicy(p datalog.Policy) {
	a.policies = append(a.policies, p)
}

// AddScope adds one of the authorizer's own default trust scopes.
func (a *Authorizer) AddScope(s datalog.Scope) {
	a.localScopes = append(a.localScopes, s)
}

// Symbols returns the authorizer's symbol table, shared with any
// loaded token.
func (a *Authorizer) Symbols() *symbol.Table { return a.symbols }

// Externs exposes the host-function registry so callers can Register
// functions before Authorize runs.
func (a *Authorizer) Externs() datalog.Externs { return a.externs }

// Token returns the loaded token, or nil if none was attached.
func (a *Authorizer) Token() *token.Biscuit { return a.tok }

// PrintWorld renders every fact currently known to the authorizer as
// Datalog source text, for diagnostics (spec.md §9).
func (a *Authorizer) PrintWorld() string { return a.world.Dump() }

// Dump is an alias for PrintWorld, matching the teacher's naming.
func (a *Authorizer) Dump() string { return a.world.Dump() }

// DumpCode renders facts followed by rule heads as Datalog source text.
func (a *Authorizer) DumpCode() string { return a.world.DumpCode() }

// run drives the Datalog engine to a fixed point, caching the result
// so repeated calls (from Authorize, Query, QueryAll) do not re-spend
// the run-limit budget (spec.md §9: the reference implementation
// caches execution_time so a second run() is a no-op).
func (a *Authorizer) run() error {
	if a.ran {
		return a.runError
	}
	start := time.Now()
	err := a.world.Run(&a.limits)
	a.execTime = time.Since(start)
	a.ran = true
	a.runError = err
	return err
}

// authorizerTrustedOrigins resolves the authorizer's own default trust
// scope, rooted at AuthorizerOrigin.
func (a *Authorizer) authorizerTrustedOrigins() (datalog.TrustedOrigins, error) {
	return datalog.FromScopes(a.localScopes, datalog.TrustedOrigins{}, datalog.AuthorizerOrigin, a.pkIndex)
}

// Query evaluates r against the current world and returns every
// distinct instantiation of its head. Ad-hoc queries are trusted only
// from the empty scope plus whatever r itself names — never the
// authorizer's own default scope — mirroring the reference
// implementation's query_inner, which passes TrustedOrigins::default()
// as the containing scope regardless of where Query is called from.
func (a *Authorizer) Query(r datalog.Rule) ([]term.Predicate, error) {
	if err := a.run(); err != nil {
		return nil, err
	}
	trusted, err := datalog.FromScopes(r.Scopes, datalog.TrustedOrigins{}, datalog.AuthorizerOrigin, a.pkIndex)
	if err != nil {
		return nil, err
	}
	return datalog.QueryRule(r, a.world.Facts, trusted, datalog.AuthorizerOrigin, a.symbols, a.externs)
}

// QueryAll evaluates r against the current world and returns every
// distinct instantiation of its head, like Query. Unlike Query, a rule
// with no explicit scope of its own sees every origin known to the
// authorizer — the whole evaluated store, not just the authorizer's
// default trust — mirroring the Rust query_all_inner's use of
// token_origins for the no-scope case.
func (a *Authorizer) QueryAll(r datalog.Rule) ([]term.Predicate, error) {
	if err := a.run(); err != nil {
		return nil, err
	}
	trusted := a.allOrigins
	if len(r.Scopes) > 0 {
		t, err := datalog.FromScopes(r.Scopes, datalog.TrustedOrigins{}, datalog.AuthorizerOrigin, a.pkIndex)
		if err != nil {
			return nil, err
		}
		trusted = t
	}
	return datalog.QueryRule(r, a.world.Facts, trusted, datalog.AuthorizerOrigin, a.symbols, a.externs)
}

// Authorize drives the Datalog engine to a fixed point, then decides
// the outcome by the exact evaluation order of spec.md §4.5: authorizer
// checks, then the token's authority-block checks, then policies in
// declaration order (first match wins), then every remaining
// attenuation block's checks. It returns the index of the matched
// Allow policy, or a *LogicError describing why authorization failed.
func (a *Authorizer) Authorize() (int, error) {
	if err := a.run(); err != nil {
		return -1, err
	}

	authTrusted, err := a.authorizerTrustedOrigins()
	if err != nil {
		return -1, err
	}

	var failed []FailedCheck
	for i, c := range a.localChecks {
		ok, err := c.Evaluate(a.world.Facts, authTrusted, datalog.AuthorizerOrigin, a.symbols, a.externs)
		if err != nil {
			return -1, err
		}
		if !ok {
			failed = append(failed, FailedCheck{
				Origin: FailedCheckOrigin{Authorizer: true},
				Index:  i,
				Rule:   checkString(c, a.symbols),
			})
		}
	}

	var blocks []*token.Block
	if a.tok != nil {
		blocks = a.tok.Blocks()
	}

	if len(blocks) > 0 {
		authority := blocks[0]
		authorityTrusted, err := blockTrustedOrigins(authority, a.pkIndex)
		if err != nil {
			return -1, err
		}
		blockFailed, err := a.evaluateBlockChecks(authority, authorityTrusted)
		if err != nil {
			return -1, err
		}
		failed = append(failed, blockFailed...)
	}

	matched := -1
	var matchedKind MatchedPolicyKind
	for i, p := range a.policies {
		ok, err := p.Evaluate(a.world.Facts, authTrusted, datalog.AuthorizerOrigin, a.symbols, a.externs)
		if err != nil {
			return -1, err
		}
		if ok {
			matched = i
			if p.Kind == datalog.PolicyDeny {
				matchedKind = MatchedDeny
			} else {
				matchedKind = MatchedAllow
			}
			break
		}
	}

	for _, blk := range attenuationBlocks(blocks) {
		trusted, err := blockTrustedOrigins(blk, a.pkIndex)
		if err != nil {
			return -1, err
		}
		blockFailed, err := a.evaluateBlockChecks(blk, trusted)
		if err != nil {
			return -1, err
		}
		failed = append(failed, blockFailed...)
	}

	switch {
	case matched == -1:
		return -1, &LogicError{Kind: LogicNoMatchingPolicy, FailedChecks: failed}
	case matchedKind == MatchedDeny:
		kind := MatchedDeny
		return -1, &LogicError{Kind: LogicUnauthorized, MatchedPolicy: &kind, PolicyIndex: matched, FailedChecks: failed}
	case len(failed) > 0:
		kind := MatchedAllow
		return -1, &LogicError{Kind: LogicUnauthorized, MatchedPolicy: &kind, PolicyIndex: matched, FailedChecks: failed}
	default:
		return matched, nil
	}
}

// attenuationBlocks returns every block after the authority block.
func attenuationBlocks(blocks []*token.Block) []*token.Block {
	if len(blocks) <= 1 {
		return nil
	}
	return blocks[1:]
}

// evaluateBlockChecks runs every check declared directly in blk and
// returns the ones that failed.
func (a *Authorizer) evaluateBlockChecks(blk *token.Block, trusted datalog.TrustedOrigins) ([]FailedCheck, error) {
	var failed []FailedCheck
	origin := datalog.Origin(blk.Index)
	for i, c := range blk.Checks {
		ok, err := c.Evaluate(a.world.Facts, trusted, origin, a.symbols, a.externs)
		if err != nil {
			return nil, err
		}
		if !ok {
			failed = append(failed, FailedCheck{
				Origin: FailedCheckOrigin{BlockID: blk.Index},
				Index:  i,
				Rule:   checkString(c, a.symbols),
			})
		}
	}
	return failed, nil
}

// checkString renders a check's first query head for diagnostics, the
// same abbreviated form the reference implementation prints in its
// failed-check errors.
func checkString(c datalog.Check, sym *symbol.Table) string {
	if len(c.Queries) == 0 {
		return ""
	}
	return c.Queries[0].Head.String(sym)
}
