package otp

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

const (
	// MinCodeLength is the shortest code the generator will produce.
	MinCodeLength = 2
	// MaxCodeLength is the longest code the generator will produce.
	MaxCodeLength = 10
)

// CodeGenerator defines the contract for producing challenge codes.
type CodeGenerator interface {
	// Generate returns a numeric code of the given length.
	Generate(length int) (string, error)
}

// NumericCode implements CodeGenerator using crypto/rand.
type NumericCode struct{}

// NewNumericCode returns a cryptographically random numeric code generator.
func NewNumericCode() *NumericCode {
	return &NumericCode{}
}

// Generate returns a numeric code of the given length.
//
// Lengths outside [MinCodeLength, MaxCodeLength] are clamped. The first digit
// is never zero: values are drawn uniformly from [10^(n-1), 10^n - 1].
func (g *NumericCode) Generate(length int) (string, error) {
	if length < MinCodeLength {
		length = MinCodeLength
	}
	if length > MaxCodeLength {
		length = MaxCodeLength
	}

	low := pow10(length - 1)
	high := pow10(length)

	n, err := rand.Int(rand.Reader, new(big.Int).Sub(high, low))
	if err != nil {
		return "", err
	}

	return strconv.FormatInt(new(big.Int).Add(n, low).Int64(), 10), nil
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
