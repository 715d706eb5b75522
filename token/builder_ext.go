package token

import (
	"time"

	"github.com/biscuit-core/biscuit/datalog"
	"github.com/biscuit-core/biscuit/term"
)

// Resource adds a resource(name) fact to the block, the common
// shorthand for scoping a token to a single resource (spec.md §9,
// ported from the reference implementation's BuilderExt).
func (bb *BlockBuilder) Resource(name string) {
	_ = bb.AddFact(term.Predicate{
		Name: bb.PredicateName("resource"),
		Args: []term.Term{bb.Symbol(name)},
	})
}

// CheckResource adds a check that the request's resource equals name.
func (bb *BlockBuilder) CheckResource(name string) {
	v := term.Variable("res")
	bb.AddCheck(datalog.Check{
		Kind: datalog.CheckOne,
		Queries: []datalog.Rule{{
			Head:        term.Predicate{Name: bb.PredicateName("check_resource")},
			Body:        []term.Predicate{{Name: bb.PredicateName("resource"), Args: []term.Term{v}}},
			Expressions: []datalog.Expression{equalsExpr(v, bb.Symbol(name))},
		}},
	})
}

// CheckResourcePrefix adds a check that the request's resource starts
// with prefix.
func (bb *BlockBuilder) CheckResourcePrefix(prefix string) {
	v := term.Variable("res")
	bb.AddCheck(datalog.Check{
		Kind: datalog.CheckOne,
		Queries: []datalog.Rule{{
			Head:        term.Predicate{Name: bb.PredicateName("check_resource_prefix")},
			Body:        []term.Predicate{{Name: bb.PredicateName("resource"), Args: []term.Term{v}}},
			Expressions: []datalog.Expression{stringOpExpr(v, bb.Symbol(prefix), datalog.BinaryPrefix)},
		}},
	})
}

// CheckResourceSuffix adds a check that the request's resource ends
// with suffix.
func (bb *BlockBuilder) CheckResourceSuffix(suffix string) {
	v := term.Variable("res")
	bb.AddCheck(datalog.Check{
		Kind: datalog.CheckOne,
		Queries: []datalog.Rule{{
			Head:        term.Predicate{Name: bb.PredicateName("check_resource_suffix")},
			Body:        []term.Predicate{{Name: bb.PredicateName("resource"), Args: []term.Term{v}}},
			Expressions: []datalog.Expression{stringOpExpr(v, bb.Symbol(suffix), datalog.BinarySuffix)},
		}},
	})
}

// Operation adds an operation(name) fact to the block.
func (bb *BlockBuilder) Operation(name string) {
	_ = bb.AddFact(term.Predicate{
		Name: bb.PredicateName("operation"),
		Args: []term.Term{bb.Symbol(name)},
	})
}

// CheckOperation adds a check that the request's operation equals
// name.
func (bb *BlockBuilder) CheckOperation(name string) {
	v := term.Variable("op")
	bb.AddCheck(datalog.Check{
		Kind: datalog.CheckOne,
		Queries: []datalog.Rule{{
			Head:        term.Predicate{Name: bb.PredicateName("check_operation")},
			Body:        []term.Predicate{{Name: bb.PredicateName("operation"), Args: []term.Term{v}}},
			Expressions: []datalog.Expression{equalsExpr(v, bb.Symbol(name))},
		}},
	})
}

// CheckExpirationDate adds a check that the ambient time(...) fact
// does not come after date.
func (bb *BlockBuilder) CheckExpirationDate(date time.Time) {
	v := term.Variable("time")
	bb.AddCheck(datalog.Check{
		Kind: datalog.CheckOne,
		Queries: []datalog.Rule{{
			Head: term.Predicate{Name: bb.PredicateName("check_expiration_date")},
			Body: []term.Predicate{{Name: bb.PredicateName("time"), Args: []term.Term{v}}},
			Expressions: []datalog.Expression{{
				datalog.ValueOp{Term: v},
				datalog.ValueOp{Term: term.Date(date.Unix())},
				datalog.BinaryOp{Kind: datalog.BinaryLessOrEqual},
			}},
		}},
	})
}

func equalsExpr(v term.Variable, value term.Term) datalog.Expression {
	return datalog.Expression{
		datalog.ValueOp{Term: v},
		datalog.ValueOp{Term: value},
		datalog.BinaryOp{Kind: datalog.BinaryEqual},
	}
}

func stringOpExpr(v term.Variable, value term.Term, kind datalog.BinaryKind) datalog.Expression {
	return datalog.Expression{
		datalog.ValueOp{Term: v},
		datalog.ValueOp{Term: value},
		datalog.BinaryOp{Kind: kind},
	}
}
