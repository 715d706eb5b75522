package biscuit

import (
	"testing"

	"github.com/biscuit-core/biscuit/symbol"
	"github.com/stretchr/testify/require"
)

func TestEndToEndBuildSerializeAuthorize(t *testing.T) {
	root, err := GenerateKeypair(Ed25519, nil)
	require.NoError(t, err)

	builder := NewBuilder(root, nil)
	builder.Resource("file1")
	builder.CheckResource("file1")
	tok, err := builder.Build()
	require.NoError(t, err)
	require.NoError(t, tok.Verify(root.PublicKey))

	data, err := tok.Serialize()
	require.NoError(t, err)

	decoded, err := Unmarshal(data, symbol.New(), StaticKeyProvider{Key: root.PublicKey})
	require.NoError(t, err)

	a, err := NewAuthorizerForToken(decoded, DefaultRunLimits())
	require.NoError(t, err)
	a.AllowAll()

	idx, err := a.Authorize()
	require.NoError(t, err)
	require.Equal(t, 0, idx)
}

func TestEndToEndFailedCheckIsUnauthorized(t *testing.T) {
	root, err := GenerateKeypair(Ed25519, nil)
	require.NoError(t, err)

	builder := NewBuilder(root, nil)
	builder.Resource("file1")
	builder.CheckResource("file2")
	tok, err := builder.Build()
	require.NoError(t, err)

	a, err := NewAuthorizerForToken(tok, DefaultRunLimits())
	require.NoError(t, err)
	a.AllowAll()

	_, err = a.Authorize()
	require.Error(t, err)
	logicErr, ok := err.(*LogicError)
	require.True(t, ok)
	require.NotEmpty(t, logicErr.FailedChecks)
}
