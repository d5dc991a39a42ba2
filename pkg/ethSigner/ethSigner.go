package ethSigner

import (
	"context"
	"fmt"

	"github.com/Layr-Labs/zksync-signer-go/pkg/types"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// IEthSigner signs text messages with an Ethereum account. It is the
// external custody signer a zkSync signing key can be derived from.
type IEthSigner interface {
	// GetAddress returns the Ethereum address of the signing account
	GetAddress() common.Address

	// SignMessage signs message. When personal is true the EIP-191 personal
	// message prefix is applied before hashing, otherwise keccak256(message)
	// is signed directly.
	SignMessage(ctx context.Context, message string, personal bool) (*types.EthSignature, error)
}

// MessageDigest returns the 32 byte digest an IEthSigner signs for message.
func MessageDigest(message string, personal bool) []byte {
	if personal {
		return accounts.TextHash([]byte(message))
	}
	return crypto.Keccak256([]byte(message))
}

// RecoverAddress recovers the address that produced sig over message.
func RecoverAddress(message string, personal bool, sig *types.EthSignature) (common.Address, error) {
	if sig == nil {
		return common.Address{}, fmt.Errorf("signature is nil")
	}
	sigBytes, err := hexutil.Decode(sig.Signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid signature hex: %w", err)
	}
	if len(sigBytes) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("signature must be %d bytes, got %d", crypto.SignatureLength, len(sigBytes))
	}

	// SigToPub expects V in 0/1
	normalized := make([]byte, len(sigBytes))
	copy(normalized, sigBytes)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}

	pub, err := crypto.SigToPub(MessageDigest(message, personal), normalized)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover public key: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}
