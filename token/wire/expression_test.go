package wire

import (
	"testing"

	"github.com/biscuit-core/biscuit/datalog"
	"github.com/biscuit-core/biscuit/term"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeExpressionValueAndUnary(t *testing.T) {
	e := datalog.Expression{
		datalog.ValueOp{Term: term.Integer(3)},
		datalog.UnaryOp{Kind: datalog.UnaryNegate},
	}
	b, err := EncodeExpression(e)
	require.NoError(t, err)
	got, err := DecodeExpression(b)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, datalog.ValueOp{Term: term.Integer(3)}, got[0])
	require.Equal(t, datalog.UnaryOp{Kind: datalog.UnaryNegate}, got[1])
}

func TestEncodeDecodeExpressionBinaryWithRight(t *testing.T) {
	e := datalog.Expression{
		datalog.ValueOp{Term: term.Integer(1)},
		datalog.BinaryOp{
			Kind:  datalog.BinaryAnd,
			Right: datalog.Expression{datalog.ValueOp{Term: term.Bool(true)}},
		},
	}
	b, err := EncodeExpression(e)
	require.NoError(t, err)
	got, err := DecodeExpression(b)
	require.NoError(t, err)
	require.Len(t, got, 2)
	bop, ok := got[1].(datalog.BinaryOp)
	require.True(t, ok)
	require.Equal(t, datalog.BinaryAnd, bop.Kind)
	require.Len(t, bop.Right, 1)
}

func TestEncodeDecodeExpressionClosure(t *testing.T) {
	e := datalog.Expression{
		datalog.ClosureOp{
			Params: []term.Variable{"x", "y"},
			Body:   datalog.Expression{datalog.ValueOp{Term: term.Bool(true)}},
		},
	}
	b, err := EncodeExpression(e)
	require.NoError(t, err)
	got, err := DecodeExpression(b)
	require.NoError(t, err)
	require.Len(t, got, 1)
	cop, ok := got[0].(datalog.ClosureOp)
	require.True(t, ok)
	require.Equal(t, []term.Variable{"x", "y"}, cop.Params)
	require.Len(t, cop.Body, 1)
}

func TestEncodeDecodeExpressionGetAt(t *testing.T) {
	e := datalog.Expression{datalog.GetAtOp{Key: term.Integer(1)}}
	b, err := EncodeExpression(e)
	require.NoError(t, err)
	got, err := DecodeExpression(b)
	require.NoError(t, err)
	require.Len(t, got, 1)
	gop, ok := got[0].(datalog.GetAtOp)
	require.True(t, ok)
	require.True(t, gop.Key.Equal(term.Integer(1)))
}

func TestEncodeDecodeExpressionExternCall(t *testing.T) {
	e := datalog.Expression{datalog.ExternCallOp{Name: "my_func"}}
	b, err := EncodeExpression(e)
	require.NoError(t, err)
	got, err := DecodeExpression(b)
	require.NoError(t, err)
	require.Equal(t, datalog.Expression{datalog.ExternCallOp{Name: "my_func"}}, got)
}

func TestDecodeOpRejectsEmptyMessage(t *testing.T) {
	_, err := decodeOp(nil)
	require.ErrorIs(t, err, ErrMalformed)
}
