package privateKeyEthSigner

import (
	"context"
	"testing"

	"github.com/Layr-Labs/zksync-signer-go/pkg/ethSigner"
	"github.com/Layr-Labs/zksync-signer-go/pkg/logger"
	"github.com/Layr-Labs/zksync-signer-go/pkg/types"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPrivateKey = "0x1234567890abcdef1234567890abcdef1234567890abcdef1234567890abcdef"
	testAddress    = "0x1Be31A94361a391bBaFB2a4CCd704F57dc04d4bb"
)

func Test_PrivateKeyEthSigner(t *testing.T) {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: true})
	require.NoError(t, err)

	signer, err := NewPrivateKeyEthSigner(testPrivateKey, l)
	require.NoError(t, err)

	t.Run("Should derive the address", func(t *testing.T) {
		assert.Equal(t, testAddress, signer.GetAddress().Hex())
	})

	t.Run("Should produce a recoverable personal signature", func(t *testing.T) {
		sig, err := signer.SignMessage(context.Background(), "hello world", true)
		require.NoError(t, err)
		assert.Equal(t, types.SignatureType_EthereumSignature, sig.Type)

		raw, err := hexutil.Decode(sig.Signature)
		require.NoError(t, err)
		require.Len(t, raw, 65)
		assert.Contains(t, []byte{27, 28}, raw[64])

		recovered, err := ethSigner.RecoverAddress("hello world", true, sig)
		require.NoError(t, err)
		assert.Equal(t, signer.GetAddress(), recovered)
	})

	t.Run("Should be deterministic", func(t *testing.T) {
		sig1, err := signer.SignMessage(context.Background(), "same message", true)
		require.NoError(t, err)
		sig2, err := signer.SignMessage(context.Background(), "same message", true)
		require.NoError(t, err)
		assert.Equal(t, sig1.Signature, sig2.Signature)
	})

	t.Run("Should distinguish personal and raw signing", func(t *testing.T) {
		personal, err := signer.SignMessage(context.Background(), "message", true)
		require.NoError(t, err)
		raw, err := signer.SignMessage(context.Background(), "message", false)
		require.NoError(t, err)
		assert.NotEqual(t, personal.Signature, raw.Signature)

		recovered, err := ethSigner.RecoverAddress("message", false, raw)
		require.NoError(t, err)
		assert.Equal(t, signer.GetAddress(), recovered)
	})

	t.Run("Should reject malformed keys", func(t *testing.T) {
		_, err := NewPrivateKeyEthSigner("0x1234", l)
		assert.Error(t, err)
	})
}
