package crypto

import (
	"errors"
	"slices"
)

var (
	ErrSeedTooShort      = errors.New("seed is too short")
	ErrMessageTooLong    = errors.New("message is too long")
	ErrInvalidPrivateKey = errors.New("invalid private key")
	ErrInvalidPublicKey  = errors.New("invalid public key")
)

// PrivateKey is the secret key material of a signing identity.
type PrivateKey struct {
	raw []byte
}

// NewPrivateKey wraps raw key bytes. The bytes are copied.
func NewPrivateKey(raw []byte) *PrivateKey {
	return &PrivateKey{raw: slices.Clone(raw)}
}

// Bytes returns a copy of the raw key.
func (pk *PrivateKey) Bytes() []byte {
	if pk == nil {
		return nil
	}
	return slices.Clone(pk.raw)
}

// PublicKey is a packed curve point.
type PublicKey struct {
	packed []byte
}

func NewPublicKey(packed []byte) *PublicKey {
	return &PublicKey{packed: slices.Clone(packed)}
}

func (pk *PublicKey) Bytes() []byte {
	if pk == nil {
		return nil
	}
	return slices.Clone(pk.packed)
}

// PublicKeyHash is the fixed width digest of a public key used as the
// signer's on-chain identity.
type PublicKeyHash []byte

// SignatureBytes is a signature produced by ICrypto.Sign.
type SignatureBytes []byte

// ICrypto is the signing primitive behind a KeyManager. Implementations used
// by concurrent signers must be safe for concurrent use, or be serialized by
// the caller.
type ICrypto interface {
	// DerivePrivateKey deterministically derives a key from seed. Returns
	// ErrSeedTooShort when the seed is below the primitive's minimum.
	DerivePrivateKey(seed []byte) (*PrivateKey, error)

	DerivePublicKey(privateKey *PrivateKey) (*PublicKey, error)

	HashPublicKey(publicKey *PublicKey) (PublicKeyHash, error)

	// Sign signs message. Returns ErrMessageTooLong when the message exceeds
	// the primitive's limit.
	Sign(privateKey *PrivateKey, message []byte) (SignatureBytes, error)

	Verify(publicKey *PublicKey, message []byte, signature SignatureBytes) (bool, error)
}
