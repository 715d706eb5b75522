package authorizer

import "github.com/biscuit-core/biscuit/datalog"

// AllowAll adds a policy that matches unconditionally with Allow,
// commonly appended last so any request that cleared every check is
// authorized (spec.md §9, ported from the reference implementation's
// AuthorizerExt).
func (a *Authorizer) AllowAll() {
	a.AddPolicy(datalog.Policy{Kind: datalog.PolicyAllow, Queries: []datalog.Rule{{}}})
}

// DenyAll adds a policy that matches unconditionally with Deny, the
// default-deny counterpart to AllowAll.
func (a *Authorizer) DenyAll() {
	a.AddPolicy(datalog.Policy{Kind: datalog.PolicyDeny, Queries: []datalog.Rule{{}}})
}
