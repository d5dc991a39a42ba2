package crypto

import (
	"bytes"
	"fmt"
	"hash"

	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

const (
	MinSeedLength       = 32
	MaxMessageLength    = 92
	PublicKeyLength     = 32
	PublicKeyHashLength = 20
	SignatureLength     = 64
)

// Bn254Eddsa implements ICrypto with EdDSA over the twisted Edwards curve
// embedded in BN254. It holds no state and is safe for concurrent use.
type Bn254Eddsa struct{}

var _ ICrypto = (*Bn254Eddsa)(nil)

func NewBn254Eddsa() *Bn254Eddsa {
	return &Bn254Eddsa{}
}

func challengeHash() hash.Hash {
	return sha3.NewLegacyKeccak256()
}

// DerivePrivateKey returns blake2b-256(seed).
func (b *Bn254Eddsa) DerivePrivateKey(seed []byte) (*PrivateKey, error) {
	if len(seed) < MinSeedLength {
		return nil, fmt.Errorf("%w: got %d bytes, need at least %d", ErrSeedTooShort, len(seed), MinSeedLength)
	}
	digest := blake2b.Sum256(seed)
	return NewPrivateKey(digest[:]), nil
}

// expand turns raw key material into a curve key pair. eddsa.GenerateKey
// reads exactly 32 bytes, so the raw key is hashed down first.
func (b *Bn254Eddsa) expand(privateKey *PrivateKey) (*eddsa.PrivateKey, error) {
	if privateKey == nil || len(privateKey.raw) == 0 {
		return nil, ErrInvalidPrivateKey
	}
	digest := blake2b.Sum256(privateKey.raw)
	key, err := eddsa.GenerateKey(bytes.NewReader(digest[:]))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	return key, nil
}

func (b *Bn254Eddsa) DerivePublicKey(privateKey *PrivateKey) (*PublicKey, error) {
	key, err := b.expand(privateKey)
	if err != nil {
		return nil, err
	}
	return NewPublicKey(key.PublicKey.Bytes()), nil
}

// HashPublicKey returns the last 20 bytes of keccak256(packed public key).
func (b *Bn254Eddsa) HashPublicKey(publicKey *PublicKey) (PublicKeyHash, error) {
	if publicKey == nil || len(publicKey.packed) != PublicKeyLength {
		return nil, ErrInvalidPublicKey
	}
	digest := ethcrypto.Keccak256(publicKey.packed)
	return PublicKeyHash(digest[len(digest)-PublicKeyHashLength:]), nil
}

func (b *Bn254Eddsa) Sign(privateKey *PrivateKey, message []byte) (SignatureBytes, error) {
	if len(message) > MaxMessageLength {
		return nil, fmt.Errorf("%w: got %d bytes, limit is %d", ErrMessageTooLong, len(message), MaxMessageLength)
	}
	key, err := b.expand(privateKey)
	if err != nil {
		return nil, err
	}
	sig, err := key.Sign(message, challengeHash())
	if err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}
	return SignatureBytes(sig), nil
}

func (b *Bn254Eddsa) Verify(publicKey *PublicKey, message []byte, signature SignatureBytes) (bool, error) {
	if publicKey == nil || len(publicKey.packed) != PublicKeyLength {
		return false, ErrInvalidPublicKey
	}
	var pub eddsa.PublicKey
	if _, err := pub.SetBytes(publicKey.packed); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	return pub.Verify(signature, message, challengeHash())
}
