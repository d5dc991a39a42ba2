package awsKmsEthSigner

import (
	"context"
	cryptoEcdsa "crypto/ecdsa"
	"encoding/asn1"
	"fmt"
	"math/big"

	"github.com/Layr-Labs/crypto-libs/pkg/ecdsa"
	"github.com/Layr-Labs/zksync-signer-go/pkg/ethSigner"
	"github.com/Layr-Labs/zksync-signer-go/pkg/types"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	kmsTypes "github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultRequestsPerSecond = 10
	DefaultBurst             = 5
)

// IKMSClient is the subset of the AWS KMS API the signer uses.
type IKMSClient interface {
	Sign(ctx context.Context, params *kms.SignInput, optFns ...func(*kms.Options)) (*kms.SignOutput, error)
	GetPublicKey(ctx context.Context, params *kms.GetPublicKeyInput, optFns ...func(*kms.Options)) (*kms.GetPublicKeyOutput, error)
}

var _ IKMSClient = (*kms.Client)(nil)
var _ ethSigner.IEthSigner = (*AWSKMSEthSigner)(nil)

type AWSKMSEthSignerConfig struct {
	KeyId             string
	RequestsPerSecond float64
	Burst             int
}

// AWSKMSEthSigner signs with a secp256k1 key that never leaves AWS KMS.
type AWSKMSEthSigner struct {
	logger    *zap.Logger
	kmsClient IKMSClient
	keyId     string
	limiter   *rate.Limiter

	publicKey *cryptoEcdsa.PublicKey
	address   common.Address
}

func NewAWSKMSEthSignerFromConfig(ctx context.Context, awsCfg aws.Config, cfg *AWSKMSEthSignerConfig, logger *zap.Logger) (*AWSKMSEthSigner, error) {
	return NewAWSKMSEthSigner(ctx, kms.NewFromConfig(awsCfg), cfg, logger)
}

// NewAWSKMSEthSigner fetches the key's public key once and derives the
// account address from it.
func NewAWSKMSEthSigner(ctx context.Context, kmsClient IKMSClient, cfg *AWSKMSEthSignerConfig, logger *zap.Logger) (*AWSKMSEthSigner, error) {
	if cfg == nil || cfg.KeyId == "" {
		return nil, fmt.Errorf("kms key id cannot be empty")
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = DefaultBurst
	}

	s := &AWSKMSEthSigner{
		logger:    logger,
		kmsClient: kmsClient,
		keyId:     cfg.KeyId,
		limiter:   rate.NewLimiter(rate.Limit(rps), burst),
	}

	kmsPubKey, err := s.getPublicKey(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get public key for key %s", cfg.KeyId)
	}

	publicKey, err := parseECDSAPublicKey(kmsPubKey.PublicKey)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse public key for key %s", cfg.KeyId)
	}

	pk := &ecdsa.PublicKey{
		X: publicKey.X,
		Y: publicKey.Y,
	}
	addr, err := pk.DeriveAddress()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to derive Ethereum address from public key for key %s", cfg.KeyId)
	}

	s.publicKey = publicKey
	s.address = common.HexToAddress(addr.String())

	logger.Sugar().Infow("Loaded AWS KMS signing key", "keyId", cfg.KeyId, "address", s.address.Hex())

	return s, nil
}

func (s *AWSKMSEthSigner) GetAddress() common.Address {
	return s.address
}

func (s *AWSKMSEthSigner) SignMessage(ctx context.Context, message string, personal bool) (*types.EthSignature, error) {
	digest := ethSigner.MessageDigest(message, personal)

	sig, err := s.getSignatureFromKms(ctx, digest)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to sign message with key %s", s.keyId)
	}

	return &types.EthSignature{
		Type:      types.SignatureType_EthereumSignature,
		Signature: hexutil.Encode(sig),
	}, nil
}

func (s *AWSKMSEthSigner) getPublicKey(ctx context.Context) (*kms.GetPublicKeyOutput, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	result, err := s.kmsClient.GetPublicKey(ctx, &kms.GetPublicKeyInput{
		KeyId: aws.String(s.keyId),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get public key: %w", err)
	}
	return result, nil
}

// parseECDSAPublicKey parses the DER-encoded public key from KMS
func parseECDSAPublicKey(derBytes []byte) (*cryptoEcdsa.PublicKey, error) {
	var asn1pubk asn1EcPublicKey
	_, err := asn1.Unmarshal(derBytes, &asn1pubk)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ASN.1 public key: %w", err)
	}

	return crypto.UnmarshalPubkey(asn1pubk.PublicKey.Bytes)
}

type asn1EcSig struct {
	R asn1.RawValue
	S asn1.RawValue
}

type asn1EcPublicKey struct {
	EcPublicKeyInfo asn1EcPublicKeyInfo
	PublicKey       asn1.BitString
}

type asn1EcPublicKeyInfo struct {
	Algorithm  asn1.ObjectIdentifier
	Parameters asn1.ObjectIdentifier
}

// secp256k1 curve order
var (
	secp256k1N, _  = new(big.Int).SetString("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141", 16)
	secp256k1HalfN = new(big.Int).Rsh(secp256k1N, 1)
)

// getSignatureFromKms signs a 32 byte digest and returns it in the 65 byte
// r || s || v form with v in 27/28.
func (s *AWSKMSEthSigner) getSignatureFromKms(ctx context.Context, digest []byte) ([]byte, error) {
	if len(digest) != 32 {
		return nil, fmt.Errorf("hash must be exactly 32 bytes, got %d", len(digest))
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	signOutput, err := s.kmsClient.Sign(ctx, &kms.SignInput{
		KeyId:            aws.String(s.keyId),
		Message:          digest,
		SigningAlgorithm: kmsTypes.SigningAlgorithmSpecEcdsaSha256,
		MessageType:      kmsTypes.MessageTypeDigest,
	})
	if err != nil {
		return nil, err
	}

	var sigAsn1 asn1EcSig
	if _, err := asn1.Unmarshal(signOutput.Signature, &sigAsn1); err != nil {
		return nil, fmt.Errorf("failed to parse ASN.1 signature: %w", err)
	}

	r := new(big.Int).SetBytes(sigAsn1.R.Bytes)
	sVal := new(big.Int).SetBytes(sigAsn1.S.Bytes)

	// low-S canonicalization
	if sVal.Cmp(secp256k1HalfN) > 0 {
		sVal = new(big.Int).Sub(secp256k1N, sVal)
	}

	rBytes := r.FillBytes(make([]byte, 32))
	sBytes := sVal.FillBytes(make([]byte, 32))

	// crypto.Ecrecover expects recovery ids 0-3
	for recoveryId := 0; recoveryId < 4; recoveryId++ {
		signature := make([]byte, 65)
		copy(signature[0:32], rBytes)
		copy(signature[32:64], sBytes)
		signature[64] = byte(recoveryId)

		recoveredPubKeyBytes, err := crypto.Ecrecover(digest, signature)
		if err != nil {
			s.logger.Debug("Ecrecover failed",
				zap.Int("recoveryId", recoveryId),
				zap.Error(err))
			continue
		}

		recoveredPubKey, err := crypto.UnmarshalPubkey(recoveredPubKeyBytes)
		if err != nil {
			s.logger.Warn("Failed to unmarshal recovered public key",
				zap.Int("recoveryId", recoveryId),
				zap.Error(err))
			continue
		}

		if recoveredPubKey.X.Cmp(s.publicKey.X) == 0 && recoveredPubKey.Y.Cmp(s.publicKey.Y) == 0 {
			signature[64] = byte(27 + recoveryId)
			return signature, nil
		}
	}

	return nil, fmt.Errorf("could not determine valid recovery ID - signature recovery failed")
}
