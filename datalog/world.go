package datalog

import (
	"errors"
	"time"

	"github.com/biscuit-core/biscuit/symbol"
)

// RunLimits bounds evaluation: the fixed-point loop checks MaxTime and
// MaxIterations at the start of every iteration and MaxFacts (the
// total size of the fact store) before every insertion, and fails with
// a RunLimitError naming the one it hit (spec.md §4.4, §6). The start
// time and the remaining iterations are recorded on the first Run and
// carried over to later Run calls on the same RunLimits value, so
// MaxTime and MaxIterations are consumed cumulatively rather than
// reset per call.
type RunLimits struct {
	MaxFacts      int
	MaxIterations int
	MaxTime       time.Duration

	start          time.Time
	iterationsLeft int
	started        bool
}

// DefaultRunLimits mirrors the reference implementation's defaults.
func DefaultRunLimits() RunLimits {
	return RunLimits{
		MaxFacts:      1000,
		MaxIterations: 100,
		MaxTime:       1 * time.Millisecond,
	}
}

func (l *RunLimits) ensureStarted() {
	if !l.started {
		l.start = timeNow()
		l.iterationsLeft = l.MaxIterations
		l.started = true
	}
}

// timeNow is indirected so tests can stub evaluation duration; in
// production it is time.Now.
var timeNow = time.Now

// ruleEntry pairs a rule with the block it was declared in and that
// block's default (containing) trust scope, which FromScopes extends
// with the rule's own explicit Scopes.
type ruleEntry struct {
	BlockID    Origin
	Rule       Rule
	Containing TrustedOrigins
}

// World is the fixed-point Datalog evaluation context: the current
// fact store plus every rule known so far, tagged with the block that
// contributed it (spec.md §4.4).
type World struct {
	Facts   *FactStore
	rules   []ruleEntry
	pkIndex PublicKeyIndex
	sym     *symbol.Table
	externs map[string]ExternFunc
}

// NewWorld returns an empty World.
func NewWorld(sym *symbol.Table, externs map[string]ExternFunc) *World {
	return &World{
		Facts:   NewFactStore(),
		pkIndex: make(PublicKeyIndex),
		sym:     sym,
		externs: externs,
	}
}

// AddFact inserts a fact already tagged with its origin, without
// going through rule application (used to seed authority/authorizer
// facts).
func (w *World) AddFact(origins OriginSet, pred Fact) {
	w.Facts.Insert(origins, pred.Predicate)
}

// AddRule registers a rule as belonging to blockID, trusted by default
// from containing (the enclosing block's own trust scope).
func (w *World) AddRule(blockID Origin, r Rule, containing TrustedOrigins) {
	w.rules = append(w.rules, ruleEntry{BlockID: blockID, Rule: r, Containing: containing})
}

// IndexPublicKey records that blockID carries externalKey as its
// external signer, so ScopePublicKey rules elsewhere can resolve it.
func (w *World) IndexPublicKey(externalKey symbol.ID, blockID Origin) {
	w.pkIndex[externalKey] = append(w.pkIndex[externalKey], blockID)
}

// PublicKeyIndex exposes the resolved public-key-to-block index, so a
// caller building its own rules (an Authorizer resolving a query's
// trust scope) can reuse it instead of rebuilding it.
func (w *World) PublicKeyIndex() PublicKeyIndex { return w.pkIndex }

// Dump renders every fact currently known to w as Datalog source text
// (spec.md §9 "PrintWorld").
func (w *World) Dump() string {
	return PrintWorld(w.Facts, w.sym)
}

// DumpCode renders w's facts followed by the heads of its rules as
// Datalog source text (spec.md §9 "DumpCode").
func (w *World) DumpCode() string {
	return DumpCode(w.Facts, w.rules, w.sym)
}

// Run executes the fixed-point loop of spec.md §4.4: repeatedly apply
// every rule under its resolved trust scope, inserting newly derived
// facts, until a full pass adds nothing new or a RunLimits bound is
// exceeded.
func (w *World) Run(limits *RunLimits) error {
	limits.ensureStarted()

	for {
		if limits.MaxTime > 0 && timeNow().Sub(limits.start) > limits.MaxTime {
			return &RunLimitError{Kind: RunLimitTimeout}
		}
		if limits.iterationsLeft <= 0 {
			return &RunLimitError{Kind: RunLimitMaxIterations}
		}
		limits.iterationsLeft--

		changed := false
		for _, entry := range w.rules {
			trusted, err := FromScopes(entry.Rule.Scopes, entry.Containing, entry.BlockID, w.pkIndex)
			if err != nil {
				return err
			}
			derived, err := entry.Rule.Apply(w.Facts, trusted, entry.BlockID, w.sym, w.externs)
			if err != nil {
				// an authorizer rule whose head uses a variable its body
				// does not bind produces no facts; the same rule in a
				// token block makes Run fail.
				if entry.BlockID == AuthorizerOrigin && errors.Is(err, ErrUnknownVariable) {
					continue
				}
				return err
			}
			for _, f := range derived {
				if limits.MaxFacts > 0 && w.Facts.Len() >= limits.MaxFacts {
					return &RunLimitError{Kind: RunLimitMaxFacts}
				}
				if w.Facts.Insert(f.Origins, f.Predicate) {
					changed = true
				}
			}
		}
		if !changed {
			return nil
		}
	}
}
