package datalog

// Externs is the registry of host-provided functions an Authorizer
// makes available to expressions via ExternCallOp (spec.md §4.4). The
// zero value has no functions registered; hosts populate it through
// Register before building an Authorizer.
type Externs map[string]ExternFunc

// NewExterns returns an empty registry.
func NewExterns() Externs {
	return make(Externs)
}

// Register adds or replaces the function bound to name.
func (e Externs) Register(name string, fn ExternFunc) {
	e[name] = fn
}
