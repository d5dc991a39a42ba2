package util

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
)

const (
	FeeExponentBitWidth    = 5
	FeeMantissaBitWidth    = 11
	AmountExponentBitWidth = 5
	AmountMantissaBitWidth = 35

	PackedFeeWidth    = (FeeExponentBitWidth + FeeMantissaBitWidth) / 8
	PackedAmountWidth = (AmountExponentBitWidth + AmountMantissaBitWidth) / 8
)

var ErrNotPackable = errors.New("value is not packable")

var bigTen = big.NewInt(10)

// floatFormat is a base 10 mantissa/exponent layout. Packed bytes hold
// mantissa<<expBits | exponent, big-endian.
type floatFormat struct {
	expBits      uint
	mantissaBits uint
}

var (
	feeFormat    = floatFormat{expBits: FeeExponentBitWidth, mantissaBits: FeeMantissaBitWidth}
	amountFormat = floatFormat{expBits: AmountExponentBitWidth, mantissaBits: AmountMantissaBitWidth}
)

func (f floatFormat) width() int {
	return int(f.expBits+f.mantissaBits) / 8
}

func (f floatFormat) maxMantissa() *big.Int {
	m := new(big.Int).Lsh(big.NewInt(1), f.mantissaBits)
	return m.Sub(m, big.NewInt(1))
}

func (f floatFormat) maxExponent() int64 {
	return int64(1)<<f.expBits - 1
}

// maxValue is maxMantissa * 10^maxExponent.
func (f floatFormat) maxValue() *big.Int {
	exp := new(big.Int).Exp(bigTen, big.NewInt(f.maxExponent()), nil)
	return exp.Mul(exp, f.maxMantissa())
}

// round returns the largest representable value not above value.
func (f floatFormat) round(value *big.Int) *big.Int {
	maxMantissa := f.maxMantissa()
	if value.Cmp(maxMantissa) <= 0 {
		return new(big.Int).Set(value)
	}

	// smallest exponent whose truncated mantissa fits
	scale := big.NewInt(1)
	mantissa := new(big.Int).Set(value)
	for mantissa.Cmp(maxMantissa) > 0 {
		mantissa.Quo(mantissa, bigTen)
		scale.Mul(scale, bigTen)
	}
	truncated := mantissa.Mul(mantissa, scale)

	// the largest value one exponent lower can still be closer
	lower := new(big.Int).Quo(scale, bigTen)
	lower.Mul(lower, maxMantissa)
	if lower.Cmp(truncated) > 0 {
		return lower
	}
	return truncated
}

// pack rounds toward zero to the closest representable value and encodes it
// with the smallest possible exponent, so packing is canonical.
func (f floatFormat) pack(value *big.Int) ([]byte, error) {
	if value == nil {
		return nil, ErrNilValue
	}
	if value.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNegativeValue, value)
	}
	if value.Cmp(f.maxValue()) > 0 {
		return nil, fmt.Errorf("%w: %s exceeds %s", ErrNotPackable, value, f.maxValue())
	}

	maxMantissa := f.maxMantissa()
	mantissa := f.round(value)
	var exponent int64
	for mantissa.Cmp(maxMantissa) > 0 {
		mantissa.Quo(mantissa, bigTen)
		exponent++
	}

	packed := new(big.Int).Lsh(mantissa, f.expBits)
	packed.Or(packed, big.NewInt(exponent))
	return math.PaddedBigBytes(packed, f.width()), nil
}

func (f floatFormat) unpack(data []byte) (*big.Int, error) {
	if len(data) != f.width() {
		return nil, fmt.Errorf("packed value must be %d bytes, got %d", f.width(), len(data))
	}

	packed := new(big.Int).SetBytes(data)
	exponent := new(big.Int).And(packed, big.NewInt(f.maxExponent()))
	mantissa := new(big.Int).Rsh(packed, f.expBits)

	scale := new(big.Int).Exp(bigTen, exponent, nil)
	return mantissa.Mul(mantissa, scale), nil
}

func (f floatFormat) closest(value *big.Int) (*big.Int, error) {
	packed, err := f.pack(value)
	if err != nil {
		return nil, err
	}
	return f.unpack(packed)
}

// PackFee encodes a fee into 2 bytes, rounding toward zero.
func PackFee(fee *big.Int) ([]byte, error) {
	return feeFormat.pack(fee)
}

// PackAmount encodes a transfer amount into 5 bytes, rounding toward zero.
func PackAmount(amount *big.Int) ([]byte, error) {
	return amountFormat.pack(amount)
}

func UnpackFee(data []byte) (*big.Int, error) {
	return feeFormat.unpack(data)
}

func UnpackAmount(data []byte) (*big.Int, error) {
	return amountFormat.unpack(data)
}

// ClosestPackableFee returns the largest packable fee not above fee. Callers
// should charge this value, since it is what the signed message commits to.
func ClosestPackableFee(fee *big.Int) (*big.Int, error) {
	return feeFormat.closest(fee)
}

// ClosestPackableAmount returns the largest packable amount not above amount.
func ClosestPackableAmount(amount *big.Int) (*big.Int, error) {
	return amountFormat.closest(amount)
}

func IsFeePackable(fee *big.Int) bool {
	closest, err := ClosestPackableFee(fee)
	return err == nil && closest.Cmp(fee) == 0
}

func IsAmountPackable(amount *big.Int) bool {
	closest, err := ClosestPackableAmount(amount)
	return err == nil && closest.Cmp(amount) == 0
}

func MaxPackableFee() *big.Int {
	return feeFormat.maxValue()
}

func MaxPackableAmount() *big.Int {
	return amountFormat.maxValue()
}
