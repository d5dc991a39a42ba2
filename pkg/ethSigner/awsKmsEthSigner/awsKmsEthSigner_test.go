package awsKmsEthSigner

import (
	"context"
	cryptoEcdsa "crypto/ecdsa"
	"encoding/asn1"
	"errors"
	"math/big"
	"testing"

	"github.com/Layr-Labs/zksync-signer-go/pkg/ethSigner"
	"github.com/Layr-Labs/zksync-signer-go/pkg/logger"
	"github.com/Layr-Labs/zksync-signer-go/pkg/types"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	oidEcPublicKey = asn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1}
	oidSecp256k1   = asn1.ObjectIdentifier{1, 3, 132, 0, 10}
)

type derSignature struct {
	R *big.Int
	S *big.Int
}

// fakeKMS answers like AWS KMS for a single secp256k1 key held in memory.
type fakeKMS struct {
	key      *cryptoEcdsa.PrivateKey
	keyId    string
	highS    bool
	signErr  error
	pubErr   error
	signCall int
}

func newFakeKMS(t *testing.T) *fakeKMS {
	key, err := crypto.HexToECDSA("1234567890abcdef1234567890abcdef1234567890abcdef1234567890abcdef")
	require.NoError(t, err)
	return &fakeKMS{key: key, keyId: "test-key"}
}

func (f *fakeKMS) GetPublicKey(ctx context.Context, params *kms.GetPublicKeyInput, optFns ...func(*kms.Options)) (*kms.GetPublicKeyOutput, error) {
	if f.pubErr != nil {
		return nil, f.pubErr
	}
	if aws.ToString(params.KeyId) != f.keyId {
		return nil, errors.New("key not found")
	}
	raw := crypto.FromECDSAPub(&f.key.PublicKey)
	der, err := asn1.Marshal(asn1EcPublicKey{
		EcPublicKeyInfo: asn1EcPublicKeyInfo{
			Algorithm:  oidEcPublicKey,
			Parameters: oidSecp256k1,
		},
		PublicKey: asn1.BitString{Bytes: raw, BitLength: len(raw) * 8},
	})
	if err != nil {
		return nil, err
	}
	return &kms.GetPublicKeyOutput{KeyId: params.KeyId, PublicKey: der}, nil
}

func (f *fakeKMS) Sign(ctx context.Context, params *kms.SignInput, optFns ...func(*kms.Options)) (*kms.SignOutput, error) {
	f.signCall++
	if f.signErr != nil {
		return nil, f.signErr
	}
	sig, err := crypto.Sign(params.Message, f.key)
	if err != nil {
		return nil, err
	}
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	if f.highS {
		s = new(big.Int).Sub(secp256k1N, s)
	}
	der, err := asn1.Marshal(derSignature{R: r, S: s})
	if err != nil {
		return nil, err
	}
	return &kms.SignOutput{KeyId: params.KeyId, Signature: der}, nil
}

func Test_AWSKMSEthSigner(t *testing.T) {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("Should derive the address from the KMS public key", func(t *testing.T) {
		fake := newFakeKMS(t)
		signer, err := NewAWSKMSEthSigner(ctx, fake, &AWSKMSEthSignerConfig{KeyId: fake.keyId}, l)
		require.NoError(t, err)
		assert.Equal(t, crypto.PubkeyToAddress(fake.key.PublicKey), signer.GetAddress())
	})

	t.Run("Should produce recoverable signatures", func(t *testing.T) {
		fake := newFakeKMS(t)
		signer, err := NewAWSKMSEthSigner(ctx, fake, &AWSKMSEthSignerConfig{KeyId: fake.keyId}, l)
		require.NoError(t, err)

		for _, personal := range []bool{true, false} {
			sig, err := signer.SignMessage(ctx, "Access zkSync account.", personal)
			require.NoError(t, err)
			assert.Equal(t, types.SignatureType_EthereumSignature, sig.Type)

			addr, err := ethSigner.RecoverAddress("Access zkSync account.", personal, sig)
			require.NoError(t, err)
			assert.Equal(t, signer.GetAddress(), addr)
		}
	})

	t.Run("Should normalize high-S signatures", func(t *testing.T) {
		fake := newFakeKMS(t)
		fake.highS = true
		signer, err := NewAWSKMSEthSigner(ctx, fake, &AWSKMSEthSignerConfig{KeyId: fake.keyId}, l)
		require.NoError(t, err)

		sig, err := signer.SignMessage(ctx, "message", true)
		require.NoError(t, err)

		addr, err := ethSigner.RecoverAddress("message", true, sig)
		require.NoError(t, err)
		assert.Equal(t, signer.GetAddress(), addr)
	})

	t.Run("Should reject an empty key id", func(t *testing.T) {
		_, err := NewAWSKMSEthSigner(ctx, newFakeKMS(t), &AWSKMSEthSignerConfig{}, l)
		assert.Error(t, err)
	})

	t.Run("Should surface public key errors", func(t *testing.T) {
		fake := newFakeKMS(t)
		fake.pubErr = errors.New("access denied")
		_, err := NewAWSKMSEthSigner(ctx, fake, &AWSKMSEthSignerConfig{KeyId: fake.keyId}, l)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access denied")
	})

	t.Run("Should surface signing errors", func(t *testing.T) {
		fake := newFakeKMS(t)
		signer, err := NewAWSKMSEthSigner(ctx, fake, &AWSKMSEthSignerConfig{KeyId: fake.keyId}, l)
		require.NoError(t, err)

		fake.signErr = errors.New("throttled")
		_, err = signer.SignMessage(ctx, "message", true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "throttled")
	})

	t.Run("Should stop waiting on a cancelled context", func(t *testing.T) {
		fake := newFakeKMS(t)
		signer, err := NewAWSKMSEthSigner(ctx, fake, &AWSKMSEthSignerConfig{KeyId: fake.keyId, RequestsPerSecond: 0.001, Burst: 1}, l)
		require.NoError(t, err)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err = signer.SignMessage(cancelled, "message", true)
		assert.Error(t, err)
		assert.Equal(t, 0, fake.signCall)
	})
}

func Test_ParseECDSAPublicKey(t *testing.T) {
	t.Run("Should reject garbage", func(t *testing.T) {
		_, err := parseECDSAPublicKey([]byte{0x01, 0x02})
		assert.Error(t, err)
	})
}
