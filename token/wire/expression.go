package wire

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/biscuit-core/biscuit/datalog"
	"github.com/biscuit-core/biscuit/term"
)

// Expression is wire-encoded as a repeated sequence of Op messages
// (one field-1 occurrence per instruction, in program order); Op
// itself is a oneof over the six instruction shapes datalog.Op can
// take.
const fieldExpressionOp = protowire.Number(1)

const (
	fieldOpValue        = protowire.Number(1)
	fieldOpUnaryKind    = protowire.Number(2)
	fieldOpBinaryKind   = protowire.Number(3)
	fieldOpBinaryRight  = protowire.Number(4)
	fieldOpClosureParam = protowire.Number(5)
	fieldOpClosureBody  = protowire.Number(6)
	fieldOpGetAtKey     = protowire.Number(7)
	fieldOpExternName   = protowire.Number(8)
)

// EncodeExpression serializes a datalog.Expression.
func EncodeExpression(e datalog.Expression) ([]byte, error) {
	var b []byte
	for _, op := range e {
		ob, err := encodeOp(op)
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, fieldExpressionOp, ob)
	}
	return b, nil
}

func encodeOp(op datalog.Op) ([]byte, error) {
	var b []byte
	switch o := op.(type) {
	case datalog.ValueOp:
		tb, err := EncodeTerm(o.Term)
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, fieldOpValue, tb)

	case datalog.UnaryOp:
		b = appendVarintField(b, fieldOpUnaryKind, uint64(o.Kind))

	case datalog.BinaryOp:
		b = appendVarintField(b, fieldOpBinaryKind, uint64(o.Kind))
		if o.Right != nil {
			rb, err := EncodeExpression(o.Right)
			if err != nil {
				return nil, err
			}
			b = appendBytesField(b, fieldOpBinaryRight, rb)
		}

	case datalog.ClosureOp:
		for _, p := range o.Params {
			b = appendStringField(b, fieldOpClosureParam, string(p))
		}
		bodyB, err := EncodeExpression(o.Body)
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, fieldOpClosureBody, bodyB)

	case datalog.GetAtOp:
		kb, err := EncodeTerm(o.Key)
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, fieldOpGetAtKey, kb)

	case datalog.ExternCallOp:
		b = appendStringField(b, fieldOpExternName, o.Name)

	default:
		return nil, ErrMalformed
	}
	return b, nil
}

// DecodeExpression parses a datalog.Expression.
func DecodeExpression(b []byte) (datalog.Expression, error) {
	fields, err := parseFields(b)
	if err != nil {
		return nil, err
	}
	var expr datalog.Expression
	for _, f := range fields {
		if f.Num != fieldExpressionOp {
			continue
		}
		op, err := decodeOp(f.Bytes)
		if err != nil {
			return nil, err
		}
		expr = append(expr, op)
	}
	return expr, nil
}

func decodeOp(b []byte) (datalog.Op, error) {
	fields, err := parseFields(b)
	if err != nil {
		return nil, err
	}

	var (
		value        term.Term
		hasValue     bool
		unaryKind    datalog.UnaryKind
		hasUnary     bool
		binaryKind   datalog.BinaryKind
		hasBinary    bool
		binaryRight  datalog.Expression
		params       []string
		closureBody  datalog.Expression
		hasClosure   bool
		getAtKey     term.Term
		hasGetAt     bool
		externName   string
		hasExtern    bool
	)

	for _, f := range fields {
		switch f.Num {
		case fieldOpValue:
			t, err := DecodeTerm(f.Bytes)
			if err != nil {
				return nil, err
			}
			value, hasValue = t, true
		case fieldOpUnaryKind:
			unaryKind, hasUnary = datalog.UnaryKind(f.Varint), true
		case fieldOpBinaryKind:
			binaryKind, hasBinary = datalog.BinaryKind(f.Varint), true
		case fieldOpBinaryRight:
			binaryRight, err = DecodeExpression(f.Bytes)
			if err != nil {
				return nil, err
			}
		case fieldOpClosureParam:
			params = append(params, string(f.Bytes))
			hasClosure = true
		case fieldOpClosureBody:
			closureBody, err = DecodeExpression(f.Bytes)
			if err != nil {
				return nil, err
			}
			hasClosure = true
		case fieldOpGetAtKey:
			t, err := DecodeTerm(f.Bytes)
			if err != nil {
				return nil, err
			}
			getAtKey, hasGetAt = t, true
		case fieldOpExternName:
			externName, hasExtern = string(f.Bytes), true
		}
	}

	switch {
	case hasValue:
		return datalog.ValueOp{Term: value}, nil
	case hasBinary:
		return datalog.BinaryOp{Kind: binaryKind, Right: binaryRight}, nil
	case hasUnary:
		return datalog.UnaryOp{Kind: unaryKind}, nil
	case hasClosure:
		vars := make([]term.Variable, len(params))
		for i, p := range params {
			vars[i] = term.Variable(p)
		}
		return datalog.ClosureOp{Params: vars, Body: closureBody}, nil
	case hasGetAt:
		return datalog.GetAtOp{Key: getAtKey}, nil
	case hasExtern:
		return datalog.ExternCallOp{Name: externName}, nil
	}
	return nil, ErrMalformed
}
