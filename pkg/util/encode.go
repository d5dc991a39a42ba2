package util

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
)

// Fixed field widths of the signed message, in bytes.
const (
	AccountIdWidth  = 4
	AddressWidth    = 20
	TokenIdWidth    = 2
	NonceWidth      = 4
	AmountFullWidth = 16
)

const PublicKeyHashPrefix = "sync:"

var (
	ErrInvalidAddress = errors.New("invalid address")
	ErrNilValue       = errors.New("value is nil")
	ErrNegativeValue  = errors.New("value is negative")
	ErrValueTooLarge  = errors.New("value does not fit the field width")
)

func AccountIdToBytes(accountId uint32) []byte {
	return binary.BigEndian.AppendUint32(make([]byte, 0, AccountIdWidth), accountId)
}

func TokenIdToBytes(tokenId uint16) []byte {
	return binary.BigEndian.AppendUint16(make([]byte, 0, TokenIdWidth), tokenId)
}

func NonceToBytes(nonce uint32) []byte {
	return binary.BigEndian.AppendUint32(make([]byte, 0, NonceWidth), nonce)
}

// AddressToBytes decodes a 20 byte Ethereum address, with or without 0x. No
// checksum is applied. Public key hashes (sync:...) are rejected.
func AddressToBytes(address string) ([]byte, error) {
	if strings.HasPrefix(address, PublicKeyHashPrefix) {
		return nil, fmt.Errorf("%w %q: public key hash given where an address is expected", ErrInvalidAddress, address)
	}
	return decodeAddress(address, StripAddressPrefix(address))
}

// PubKeyHashToBytes decodes a sync:<40 hex chars> public key hash.
func PubKeyHashToBytes(publicKeyHash string) ([]byte, error) {
	if !strings.HasPrefix(publicKeyHash, PublicKeyHashPrefix) {
		return nil, fmt.Errorf("%w %q: public key hash must start with %s", ErrInvalidAddress, publicKeyHash, PublicKeyHashPrefix)
	}
	return decodeAddress(publicKeyHash, publicKeyHash[len(PublicKeyHashPrefix):])
}

func decodeAddress(original string, trimmed string) ([]byte, error) {
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty address", ErrInvalidAddress)
	}

	decoded, err := hexutil.Decode("0x" + trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidAddress, original, err)
	}
	if len(decoded) != AddressWidth {
		return nil, fmt.Errorf("%w %q: expected %d bytes, got %d", ErrInvalidAddress, original, AddressWidth, len(decoded))
	}
	return decoded, nil
}

// StripAddressPrefix removes a leading "0x" from an address.
func StripAddressPrefix(address string) string {
	if strings.HasPrefix(address, "0x") || strings.HasPrefix(address, "0X") {
		return address[2:]
	}
	return address
}

// AmountFullToBytes encodes an amount at full precision as a big-endian
// uint128.
func AmountFullToBytes(amount *big.Int) ([]byte, error) {
	if amount == nil {
		return nil, ErrNilValue
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNegativeValue, amount)
	}
	if amount.BitLen() > AmountFullWidth*8 {
		return nil, fmt.Errorf("%w: %s exceeds %d bits", ErrValueTooLarge, amount, AmountFullWidth*8)
	}
	return math.PaddedBigBytes(amount, AmountFullWidth), nil
}
