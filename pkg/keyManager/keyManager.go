package keyManager

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/Layr-Labs/zksync-signer-go/pkg/config"
	"github.com/Layr-Labs/zksync-signer-go/pkg/crypto"
	"github.com/Layr-Labs/zksync-signer-go/pkg/ethSigner"
	"github.com/Layr-Labs/zksync-signer-go/pkg/types"
	"github.com/Layr-Labs/zksync-signer-go/pkg/util"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"
)

const (
	DisclosureMessage = "Access zkSync account.\n\nOnly sign this message for a trusted client!"
	chainIdSuffix     = "\nChain ID: %d."
)

var (
	ErrInvalidSeed          = errors.New("invalid seed")
	ErrIncorrectCredentials = errors.New("incorrect credentials")
	ErrSigning              = errors.New("signing failed")
)

// KeyManager owns the key pair of one zkSync signing identity. Public
// identity fields are derived once at construction; Sign is safe for
// concurrent use when the injected ICrypto is.
type KeyManager struct {
	crypto crypto.ICrypto
	logger *zap.Logger

	privateKey    *crypto.PrivateKey
	publicKey     *crypto.PublicKey
	publicKeyHash crypto.PublicKeyHash
}

// NewKeyManagerFromSeed derives a key pair from seed.
func NewKeyManagerFromSeed(c crypto.ICrypto, seed []byte, logger *zap.Logger) (*KeyManager, error) {
	privateKey, err := c.DerivePrivateKey(seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}
	return newKeyManager(c, privateKey, logger)
}

// NewKeyManagerFromRawKey restores a key pair from raw private key bytes
// previously exported with GetRawPrivateKey. The bytes are validated by the
// seed derivation path and then used as the private key unchanged.
func NewKeyManagerFromRawKey(c crypto.ICrypto, raw []byte, logger *zap.Logger) (*KeyManager, error) {
	if _, err := c.DerivePrivateKey(raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}
	return newKeyManager(c, crypto.NewPrivateKey(raw), logger)
}

// NewKeyManagerFromEthSigner derives the signing identity from the Ethereum
// account's personal signature over the disclosure message for chainId.
func NewKeyManagerFromEthSigner(
	ctx context.Context,
	c crypto.ICrypto,
	signer ethSigner.IEthSigner,
	chainId config.ChainId,
	logger *zap.Logger,
) (*KeyManager, error) {
	message := DisclosureMessageForChain(chainId)

	ethSig, err := signer.SignMessage(ctx, message, true)
	if err != nil {
		return nil, fmt.Errorf("failed to sign disclosure message: %w", err)
	}
	if ethSig == nil || ethSig.Type != types.SignatureType_EthereumSignature {
		got := types.SignatureType("")
		if ethSig != nil {
			got = ethSig.Type
		}
		return nil, fmt.Errorf("%w: expected %s, got %q", ErrIncorrectCredentials, types.SignatureType_EthereumSignature, got)
	}

	seed, err := hexutil.Decode(ethSig.Signature)
	if err != nil {
		return nil, fmt.Errorf("%w: signature is not hex: %w", ErrIncorrectCredentials, err)
	}

	logger.Sugar().Debugw("Deriving signing key from Ethereum signature",
		"address", signer.GetAddress().Hex(),
		"chainId", uint64(chainId),
	)
	return NewKeyManagerFromSeed(c, seed, logger)
}

// DisclosureMessageForChain returns the message an Ethereum account signs to
// derive its zkSync key. Every chain other than mainnet gets a chain id suffix.
func DisclosureMessageForChain(chainId config.ChainId) string {
	if chainId.IsMainnet() {
		return DisclosureMessage
	}
	return DisclosureMessage + fmt.Sprintf(chainIdSuffix, uint64(chainId))
}

func newKeyManager(c crypto.ICrypto, privateKey *crypto.PrivateKey, logger *zap.Logger) (*KeyManager, error) {
	publicKey, err := c.DerivePublicKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to derive public key: %w", ErrInvalidSeed, err)
	}
	publicKeyHash, err := c.HashPublicKey(publicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to hash public key: %w", ErrInvalidSeed, err)
	}

	km := &KeyManager{
		crypto:        c,
		logger:        logger,
		privateKey:    privateKey,
		publicKey:     publicKey,
		publicKeyHash: publicKeyHash,
	}
	logger.Sugar().Debugw("Initialized key manager", "publicKeyHash", km.GetPublicKeyHash())
	return km, nil
}

// Sign signs message and pairs the signature with the signer's public key.
func (km *KeyManager) Sign(message []byte) (*types.Signature, error) {
	sig, err := km.crypto.Sign(km.privateKey, message)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSigning, err)
	}
	return &types.Signature{
		PubKey:    hex.EncodeToString(km.publicKey.Bytes()),
		Signature: hex.EncodeToString(sig),
	}, nil
}

// Verify checks sig against message. The signature's public key must be this
// key manager's.
func (km *KeyManager) Verify(message []byte, sig *types.Signature) (bool, error) {
	if sig == nil {
		return false, fmt.Errorf("signature is nil")
	}
	if sig.PubKey != hex.EncodeToString(km.publicKey.Bytes()) {
		return false, nil
	}
	sigBytes, err := hex.DecodeString(sig.Signature)
	if err != nil {
		return false, fmt.Errorf("invalid signature hex: %w", err)
	}
	return km.crypto.Verify(km.publicKey, message, sigBytes)
}

// GetPublicKeyHash returns the public key hash as sync:<hex>.
func (km *KeyManager) GetPublicKeyHash() string {
	return util.PublicKeyHashPrefix + hex.EncodeToString(km.publicKeyHash)
}

// GetPublicKey returns the packed public key as 0x-prefixed hex.
func (km *KeyManager) GetPublicKey() string {
	return hexutil.Encode(km.publicKey.Bytes())
}

// GetRawPrivateKey returns a copy of the private key bytes.
func (km *KeyManager) GetRawPrivateKey() []byte {
	return km.privateKey.Bytes()
}
