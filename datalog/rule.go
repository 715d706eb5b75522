package datalog

import (
	"github.com/biscuit-core/biscuit/symbol"
	"github.com/biscuit-core/biscuit/term"
)

// Rule is a Datalog rule: Head is derived for every binding that
// satisfies Body against the facts visible under Scopes, provided
// every expression in Expressions evaluates true under that binding
// (spec.md §4.4).
type Rule struct {
	Head        term.Predicate
	Body        []term.Predicate
	Expressions []Expression
	Scopes      []Scope
}

// Apply joins rule.Body against facts visible from trusted, evaluates
// Expressions under every satisfying binding, and returns the facts
// Head produces. A derived fact's origin is the union of the origins
// of the body facts that produced it together with blockID (spec.md
// §4.4 pseudocode: "origin(f) = union(origin(body_fact_i)) ∪
// {block_id}").
func (r Rule) Apply(facts *FactStore, trusted TrustedOrigins, blockID Origin, sym *symbol.Table, externs map[string]ExternFunc) ([]Fact, error) {
	if !r.Head.IsGround() {
		for _, v := range headVariables(r.Head) {
			if !boundByBody(v, r.Body) {
				return nil, ErrUnknownVariable
			}
		}
	}

	var out []Fact
	err := r.join(facts, trusted, 0, Bindings{}, NewOriginSet(), func(b Bindings, contributing OriginSet) error {
		for _, expr := range r.Expressions {
			v, err := expr.Evaluate(b, sym, externs)
			if err != nil {
				// an expression misbehaving on this binding (overflow,
				// unregistered extern, ...) drops the binding; it must
				// not abort the fixed point for every other rule.
				return nil
			}
			ok, isBool := v.(term.Bool)
			if !isBool || !bool(ok) {
				return nil
			}
		}
		head, err := substitute(r.Head, b)
		if err != nil {
			return err
		}
		out = append(out, Fact{
			Predicate: head,
			Origins:   NewOriginSet(append(append([]Origin(nil), contributing...), blockID)...),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// join performs a naive nested-loop join of r.Body[i:] under the
// bindings accumulated so far, invoking emit once per satisfying
// binding.
func (r Rule) join(facts *FactStore, trusted TrustedOrigins, i int, bindings Bindings, contributing OriginSet, emit func(Bindings, OriginSet) error) error {
	if i >= len(r.Body) {
		return emit(bindings, contributing)
	}
	pattern := r.Body[i]
	for _, f := range facts.Visible(trusted, nil) {
		if f.Predicate.Name != pattern.Name || len(f.Predicate.Args) != len(pattern.Args) {
			continue
		}
		next, ok := extendBindings(bindings, pattern, f.Predicate)
		if !ok {
			continue
		}
		if err := r.join(facts, trusted, i+1, next, contributing.Union(f.Origins), emit); err != nil {
			return err
		}
	}
	return nil
}

// extendBindings attempts to unify pattern against a ground fact
// predicate, extending bindings. Repeated variables within or across
// body predicates must resolve to the same value.
func extendBindings(bindings Bindings, pattern, fact term.Predicate) (Bindings, bool) {
	out := make(Bindings, len(bindings)+len(pattern.Args))
	for k, v := range bindings {
		out[k] = v
	}
	for i, arg := range pattern.Args {
		val := fact.Args[i]
		if v, ok := arg.(term.Variable); ok {
			if existing, bound := out[v]; bound {
				if !existing.Equal(val) {
					return nil, false
				}
				continue
			}
			out[v] = val
			continue
		}
		if arg.Type() != val.Type() || !arg.Equal(val) {
			return nil, false
		}
	}
	return out, true
}

// substitute replaces every Variable in pred.Args with its bound
// value, failing if any variable is unbound.
func substitute(pred term.Predicate, bindings Bindings) (term.Predicate, error) {
	args := make([]term.Term, len(pred.Args))
	for i, a := range pred.Args {
		if v, ok := a.(term.Variable); ok {
			val, bound := bindings[v]
			if !bound {
				return term.Predicate{}, ErrUnknownVariable
			}
			args[i] = val
			continue
		}
		args[i] = a
	}
	return term.Predicate{Name: pred.Name, Args: args}, nil
}

func headVariables(pred term.Predicate) []term.Variable {
	var out []term.Variable
	for _, a := range pred.Args {
		if v, ok := a.(term.Variable); ok {
			out = append(out, v)
		}
	}
	return out
}

func boundByBody(v term.Variable, body []term.Predicate) bool {
	for _, p := range body {
		for _, a := range p.Args {
			if bv, ok := a.(term.Variable); ok && bv == v {
				return true
			}
		}
	}
	return false
}
