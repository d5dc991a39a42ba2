package privateKeyEthSigner

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/Layr-Labs/zksync-signer-go/pkg/ethSigner"
	"github.com/Layr-Labs/zksync-signer-go/pkg/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

var _ ethSigner.IEthSigner = (*PrivateKeyEthSigner)(nil)

// PrivateKeyEthSigner signs with a secp256k1 key held in memory.
type PrivateKeyEthSigner struct {
	logger     *zap.Logger
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// NewPrivateKeyEthSigner loads a hex private key, with or without 0x.
func NewPrivateKeyEthSigner(privateKeyHex string, logger *zap.Logger) (*PrivateKeyEthSigner, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("error loading private key: %w", err)
	}
	return NewPrivateKeyEthSignerFromKey(privateKey, logger), nil
}

func NewPrivateKeyEthSignerFromKey(privateKey *ecdsa.PrivateKey, logger *zap.Logger) *PrivateKeyEthSigner {
	return &PrivateKeyEthSigner{
		logger:     logger,
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
	}
}

func (s *PrivateKeyEthSigner) GetAddress() common.Address {
	return s.address
}

func (s *PrivateKeyEthSigner) SignMessage(ctx context.Context, message string, personal bool) (*types.EthSignature, error) {
	digest := ethSigner.MessageDigest(message, personal)

	sig, err := crypto.Sign(digest, s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}
	// Adjust V from 0/1 to 27/28 for Ethereum compatibility.
	if sig[64] < 27 {
		sig[64] += 27
	}

	s.logger.Debug("Signed message with local key",
		zap.String("address", s.address.Hex()),
		zap.Bool("personal", personal),
	)

	return &types.EthSignature{
		Type:      types.SignatureType_EthereumSignature,
		Signature: hexutil.Encode(sig),
	}, nil
}
