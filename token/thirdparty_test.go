package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestThirdPartyBlockRoundTrip(t *testing.T) {
	root := mustKeypair(t)
	builder := NewBuilder(root, nil)
	builder.Resource("file1")
	tok, err := builder.Build()
	require.NoError(t, err)

	req := tok.ThirdPartyRequest()

	external := mustKeypair(t)
	extBuilder := newBlockBuilder(uint32(len(tok.Blocks())), tok.Symbols().Clone())
	extBuilder.CheckResource("file1")
	block := extBuilder.Build()

	resp, err := BuildThirdPartyBlock(req, external, block)
	require.NoError(t, err)

	attenuated, err := tok.AppendThirdParty(nil, resp)
	require.NoError(t, err)
	require.NoError(t, attenuated.Verify(root.PublicKey))
	require.Len(t, attenuated.Blocks(), 2)
}

func TestAppendThirdPartyRejectsOnSealedToken(t *testing.T) {
	root := mustKeypair(t)
	tok, err := NewBuilder(root, nil).Build()
	require.NoError(t, err)
	sealed, err := tok.Seal()
	require.NoError(t, err)

	external := mustKeypair(t)
	req := tok.ThirdPartyRequest()
	block := newBlockBuilder(1, tok.Symbols().Clone()).Build()
	resp, err := BuildThirdPartyBlock(req, external, block)
	require.NoError(t, err)

	_, err = sealed.AppendThirdParty(nil, resp)
	require.ErrorIs(t, err, ErrAppendOnSealed)
}
