package authorizer

import (
	"errors"
	"fmt"
)

// FailedCheckOrigin identifies where a failed check came from: the
// authorizer itself, or a specific block in the token.
type FailedCheckOrigin struct {
	Authorizer bool
	BlockID    uint32
}

// FailedCheck names one check that did not hold, for the diagnostic
// payload of a NoMatchingPolicy or Unauthorized error (spec.md §7).
type FailedCheck struct {
	Origin FailedCheckOrigin
	Index  int
	Rule   string
}

func (f FailedCheck) String() string {
	if f.Origin.Authorizer {
		return fmt.Sprintf("authorizer check %d: %s", f.Index, f.Rule)
	}
	return fmt.Sprintf("block %d check %d: %s", f.Origin.BlockID, f.Index, f.Rule)
}

// MatchedPolicyKind distinguishes which kind of policy matched first.
type MatchedPolicyKind byte

const (
	MatchedAllow MatchedPolicyKind = iota
	MatchedDeny
)

// LogicError is returned when Authorize completes its evaluation but
// the decision table (spec.md §4.5) does not land on Allow.
type LogicError struct {
	// Kind distinguishes NoMatchingPolicy (no policy query matched at
	// all) from Unauthorized (a policy matched but checks had already
	// failed, or the matching policy was Deny).
	Kind          LogicKind
	MatchedPolicy *MatchedPolicyKind
	PolicyIndex   int
	FailedChecks  []FailedCheck
}

// LogicKind enumerates the shapes a LogicError can take.
type LogicKind byte

const (
	LogicNoMatchingPolicy LogicKind = iota
	LogicUnauthorized
)

func (e *LogicError) Error() string {
	switch e.Kind {
	case LogicNoMatchingPolicy:
		return fmt.Sprintf("authorizer: no matching policy (%d failed checks)", len(e.FailedChecks))
	default:
		return fmt.Sprintf("authorizer: unauthorized (%d failed checks)", len(e.FailedChecks))
	}
}

var (
	// ErrNoToken is returned by operations that require a token to be
	// loaded (e.g. querying block-scoped facts) when none was added.
	ErrNoToken = errors.New("authorizer: no token loaded")
	// ErrAlreadyRun is never itself fatal — Run is idempotent — kept
	// for symmetry with spec.md §7's ambient error catalogue.
	ErrAlreadyRun = errors.New("authorizer: already run")
)
