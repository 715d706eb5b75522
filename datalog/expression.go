package datalog

import (
	"math/big"
	"regexp"
	"strings"

	"github.com/biscuit-core/biscuit/symbol"
	"github.com/biscuit-core/biscuit/term"
)

// maxStackSize bounds the expression stack machine (spec.md §4.2 is a
// stack machine over opcodes; mirrors the teacher's
// datalog/expressions.go maxStackSize).
const maxStackSize = 1000

// OpType identifies the kind of a stack-machine instruction
// (spec.md §4.2: "Value | Unary | Binary | Closure(params, body) |
// GetAt").
type OpType byte

const (
	OpValue OpType = iota
	OpUnary
	OpBinary
	OpClosure
	OpGetAt
	OpExternCall
)

// Op is one instruction of an Expression's stack program.
type Op interface {
	OpType() OpType
}

// ValueOp pushes a constant term, or (if it is a Variable) the value
// bound to that variable.
type ValueOp struct{ Term term.Term }

func (ValueOp) OpType() OpType { return OpValue }

// UnaryKind identifies a unary operator.
type UnaryKind byte

const (
	UnaryNegate UnaryKind = iota
	UnaryParens
	UnaryLength
)

// UnaryOp pops one value and pushes the result of applying Kind.
type UnaryOp struct{ Kind UnaryKind }

func (UnaryOp) OpType() OpType { return OpUnary }

// BinaryKind identifies a binary operator.
type BinaryKind byte

const (
	BinaryLessThan BinaryKind = iota
	BinaryLessOrEqual
	BinaryGreaterThan
	BinaryGreaterOrEqual
	BinaryEqual
	BinaryContains
	BinaryPrefix
	BinarySuffix
	BinaryRegex
	BinaryAdd
	BinarySub
	BinaryMul
	BinaryDiv
	BinaryAnd // short-circuit
	BinaryOr  // short-circuit
	BinaryUnion
	BinaryIntersection
)

// BinaryOp pops two values (right then left) and pushes the result of
// applying Kind, except BinaryAnd/BinaryOr which short-circuit: when
// the left operand already determines the result, the right operand's
// sub-expression is skipped entirely (spec.md §4.2).
type BinaryOp struct {
	Kind  BinaryKind
	Right Expression // only used by BinaryAnd/BinaryOr
}

func (BinaryOp) OpType() OpType { return OpBinary }

// ClosureOp evaluates Body with Params bound positionally from values
// popped off the stack (spec.md §4.2: "Closures bind parameters by
// position and cannot capture the outer scope except through the
// operand stack").
type ClosureOp struct {
	Params []term.Variable
	Body   Expression
}

func (ClosureOp) OpType() OpType { return OpClosure }

// GetAtOp indexes into the value below it on the stack: a Map by Key,
// or an Array by an Integer key.
type GetAtOp struct{ Key term.Term }

func (GetAtOp) OpType() OpType { return OpGetAt }

// ExternCallOp pops two operands (right then left) and invokes a
// host-registered ExternFunc by Name. An unregistered name is an
// ErrInvalidType, not a panic (spec.md §4.4).
type ExternCallOp struct{ Name string }

func (ExternCallOp) OpType() OpType { return OpExternCall }

// Expression is a sequence of stack-machine instructions evaluating
// to a single Term.
type Expression []Op

type stack []term.Term

func (s *stack) push(v term.Term) error {
	if len(*s) >= maxStackSize {
		return ErrStackOverflow
	}
	*s = append(*s, v)
	return nil
}

func (s *stack) pop() (term.Term, error) {
	if len(*s) == 0 {
		return nil, ErrStackUnderflow
	}
	v := (*s)[len(*s)-1]
	*s = (*s)[:len(*s)-1]
	return v, nil
}

// Bindings maps the variables bound by a rule body to their matched
// values.
type Bindings map[term.Variable]term.Term

// Evaluate runs e against bindings, resolving interned strings through
// sym and host functions through externs. A type mismatch between an
// operator and its operand(s) returns ErrInvalidType and fails only
// the containing rule/check (spec.md §4.2), never panics.
func (e Expression) Evaluate(bindings Bindings, sym *symbol.Table, externs map[string]ExternFunc) (term.Term, error) {
	var s stack
	for _, op := range e {
		if err := e.step(op, &s, bindings, sym, externs); err != nil {
			return nil, err
		}
	}
	if len(s) != 1 {
		return nil, ErrInvalidType
	}
	return s.pop()
}

func (e Expression) step(op Op, s *stack, bindings Bindings, sym *symbol.Table, externs map[string]ExternFunc) error {
	switch o := op.(type) {
	case ValueOp:
		v := o.Term
		if vr, ok := v.(term.Variable); ok {
			bound, ok := bindings[vr]
			if !ok {
				return ErrUnknownVariable
			}
			v = bound
		}
		return s.push(v)

	case UnaryOp:
		v, err := s.pop()
		if err != nil {
			return err
		}
		res, err := evalUnary(o.Kind, v)
		if err != nil {
			return err
		}
		return s.push(res)

	case BinaryOp:
		if o.Kind == BinaryAnd || o.Kind == BinaryOr {
			return e.stepShortCircuit(o, s, bindings, sym, externs)
		}
		right, err := s.pop()
		if err != nil {
			return err
		}
		left, err := s.pop()
		if err != nil {
			return err
		}
		res, err := evalBinary(o.Kind, left, right, sym)
		if err != nil {
			return err
		}
		return s.push(res)

	case ClosureOp:
		args := make([]term.Term, len(o.Params))
		for i := len(o.Params) - 1; i >= 0; i-- {
			v, err := s.pop()
			if err != nil {
				return err
			}
			args[i] = v
		}
		inner := make(Bindings, len(o.Params))
		for i, p := range o.Params {
			inner[p] = args[i]
		}
		res, err := o.Body.Evaluate(inner, sym, externs)
		if err != nil {
			return err
		}
		return s.push(res)

	case GetAtOp:
		container, err := s.pop()
		if err != nil {
			return err
		}
		res, err := evalGetAt(container, o.Key)
		if err != nil {
			return err
		}
		return s.push(res)

	case ExternCallOp:
		right, err := s.pop()
		if err != nil {
			return err
		}
		left, err := s.pop()
		if err != nil {
			return err
		}
		fn, ok := externs[o.Name]
		if !ok {
			return ErrInvalidType
		}
		res, err := fn(left, right)
		if err != nil {
			return err
		}
		return s.push(res)

	default:
		return ErrInvalidType
	}
}

// stepShortCircuit implements && and ||: the right operand is a
// sub-Expression, not a plain value, so it is only evaluated once the
// left operand is known and does not already determine the result
// (spec.md §4.2 "Short-circuit evaluation for && / ||").
func (e Expression) stepShortCircuit(o BinaryOp, s *stack, bindings Bindings, sym *symbol.Table, externs map[string]ExternFunc) error {
	left, err := s.pop()
	if err != nil {
		return err
	}
	lb, ok := left.(term.Bool)
	if !ok {
		return ErrInvalidType
	}

	if o.Kind == BinaryAnd && !bool(lb) {
		return s.push(term.Bool(false))
	}
	if o.Kind == BinaryOr && bool(lb) {
		return s.push(term.Bool(true))
	}

	right, err := o.Right.Evaluate(bindings, sym, externs)
	if err != nil {
		return err
	}
	rb, ok := right.(term.Bool)
	if !ok {
		return ErrInvalidType
	}
	return s.push(rb)
}

func evalUnary(kind UnaryKind, v term.Term) (term.Term, error) {
	switch kind {
	case UnaryNegate:
		b, ok := v.(term.Bool)
		if !ok {
			return nil, ErrInvalidType
		}
		return term.Bool(!b), nil
	case UnaryParens:
		return v, nil
	case UnaryLength:
		switch t := v.(type) {
		case term.Set:
			return term.Integer(len(t)), nil
		case term.Array:
			return term.Integer(len(t)), nil
		case term.Map:
			return term.Integer(len(t)), nil
		default:
			return nil, ErrInvalidType
		}
	default:
		return nil, ErrInvalidType
	}
}

func evalBinary(kind BinaryKind, left, right term.Term, sym *symbol.Table) (term.Term, error) {
	switch kind {
	case BinaryLessThan, BinaryLessOrEqual, BinaryGreaterThan, BinaryGreaterOrEqual:
		return evalOrdering(kind, left, right)
	case BinaryEqual:
		return evalEqual(left, right)
	case BinaryContains:
		return evalContains(left, right)
	case BinaryPrefix, BinarySuffix, BinaryRegex:
		return evalStringOp(kind, left, right, sym)
	case BinaryAdd, BinarySub, BinaryMul, BinaryDiv:
		return evalArithmetic(kind, left, right)
	case BinaryUnion, BinaryIntersection:
		return evalSetOp(kind, left, right)
	default:
		return nil, ErrInvalidType
	}
}

func evalOrdering(kind BinaryKind, left, right term.Term) (term.Term, error) {
	if left.Type() != right.Type() {
		return nil, ErrInvalidType
	}
	switch l := left.(type) {
	case term.Integer:
		r := right.(term.Integer)
		switch kind {
		case BinaryLessThan:
			return term.Bool(l < r), nil
		case BinaryLessOrEqual:
			return term.Bool(l <= r), nil
		case BinaryGreaterThan:
			return term.Bool(l > r), nil
		case BinaryGreaterOrEqual:
			return term.Bool(l >= r), nil
		}
	case term.Date:
		// date comparisons are unsigned (spec.md §4.2).
		r := right.(term.Date)
		switch kind {
		case BinaryLessThan:
			return term.Bool(l < r), nil
		case BinaryLessOrEqual:
			return term.Bool(l <= r), nil
		case BinaryGreaterThan:
			return term.Bool(l > r), nil
		case BinaryGreaterOrEqual:
			return term.Bool(l >= r), nil
		}
	}
	return nil, ErrInvalidType
}

func evalEqual(left, right term.Term) (term.Term, error) {
	if left.Type() != right.Type() {
		return nil, ErrInvalidType
	}
	switch left.Type() {
	case term.TypeInteger, term.TypeString, term.TypeBytes, term.TypeBool, term.TypeDate, term.TypeSet, term.TypeArray, term.TypeMap, term.TypeNull:
		return term.Bool(left.Equal(right)), nil
	default:
		return nil, ErrInvalidType
	}
}

func evalContains(left, right term.Term) (term.Term, error) {
	switch c := left.(type) {
	case term.Set:
		switch right.Type() {
		case term.TypeInteger, term.TypeBytes, term.TypeString:
			return term.Bool(containsElem(c, right)), nil
		default:
			return nil, ErrInvalidType
		}
	case term.Array:
		return term.Bool(containsElem(c, right)), nil
	default:
		return nil, ErrInvalidType
	}
}

func containsElem[S ~[]term.Term](s S, v term.Term) bool {
	for _, e := range s {
		if e.Type() == v.Type() && e.Equal(v) {
			return true
		}
	}
	return false
}

func evalStringOp(kind BinaryKind, left, right term.Term, sym *symbol.Table) (term.Term, error) {
	ls, ok := left.(term.String)
	if !ok {
		return nil, ErrInvalidType
	}
	rs, ok := right.(term.String)
	if !ok {
		return nil, ErrInvalidType
	}
	lstr := sym.Str(symbol.ID(ls))
	rstr := sym.Str(symbol.ID(rs))

	switch kind {
	case BinaryPrefix:
		return term.Bool(strings.HasPrefix(lstr, rstr)), nil
	case BinarySuffix:
		return term.Bool(strings.HasSuffix(lstr, rstr)), nil
	case BinaryRegex:
		re, err := regexp.Compile(rstr)
		if err != nil {
			return nil, ErrInvalidType
		}
		return term.Bool(re.MatchString(lstr)), nil
	default:
		return nil, ErrInvalidType
	}
}

func evalArithmetic(kind BinaryKind, left, right term.Term) (term.Term, error) {
	li, ok := left.(term.Integer)
	if !ok {
		return nil, ErrInvalidType
	}
	ri, ok := right.(term.Integer)
	if !ok {
		return nil, ErrInvalidType
	}

	if kind == BinaryDiv {
		if ri == 0 {
			return nil, ErrDivByZero
		}
		return term.Integer(int64(li) / int64(ri)), nil
	}

	l := big.NewInt(int64(li))
	r := big.NewInt(int64(ri))
	res := new(big.Int)
	switch kind {
	case BinaryAdd:
		res.Add(l, r)
	case BinarySub:
		res.Sub(l, r)
	case BinaryMul:
		res.Mul(l, r)
	}
	if !res.IsInt64() {
		return nil, ErrIntegerOverflow
	}
	return term.Integer(res.Int64()), nil
}

func evalSetOp(kind BinaryKind, left, right term.Term) (term.Term, error) {
	ls, ok := left.(term.Set)
	if !ok {
		return nil, ErrInvalidType
	}
	rs, ok := right.(term.Set)
	if !ok {
		return nil, ErrInvalidType
	}

	switch kind {
	case BinaryUnion:
		out := append(term.Set(nil), ls...)
		for _, v := range rs {
			if !containsElem(out, v) {
				out = append(out, v)
			}
		}
		return out, nil
	case BinaryIntersection:
		var out term.Set
		for _, v := range ls {
			if containsElem(rs, v) {
				out = append(out, v)
			}
		}
		return out, nil
	default:
		return nil, ErrInvalidType
	}
}

func evalGetAt(container term.Term, key term.Term) (term.Term, error) {
	switch c := container.(type) {
	case term.Map:
		for _, e := range c {
			if e.Key.Equal(key) {
				return e.Value, nil
			}
		}
		return term.Null{}, nil
	case term.Array:
		idx, ok := key.(term.Integer)
		if !ok || idx < 0 || int(idx) >= len(c) {
			return nil, ErrInvalidType
		}
		return c[idx], nil
	default:
		return nil, ErrInvalidType
	}
}

// ExternFunc is a host-provided pure function invoked from an
// expression by name (spec.md §4.4): it must be side-effect free, and
// any internal resource exhaustion must surface as an error rather
// than a panic.
type ExternFunc func(a, b term.Term) (term.Term, error)
