package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"
	"math/big"
)

// DefaultOTPLength is the number of digits in a one-time code.
const DefaultOTPLength = 6

// OTPGenerator produces numeric one-time codes.
type OTPGenerator struct {
	length int
	rand   io.Reader
}

// NewOTPGenerator returns a generator for codes of the given length.
// A non-positive length falls back to DefaultOTPLength.
func NewOTPGenerator(length int) *OTPGenerator {
	if length <= 0 {
		length = DefaultOTPLength
	}
	return &OTPGenerator{length: length, rand: rand.Reader}
}

// Generate returns a zero-padded numeric code, e.g. "048213".
func (g *OTPGenerator) Generate() (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(g.length)), nil)
	n, err := rand.Int(g.rand, limit)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", g.length, n), nil
}

// OTPMatches compares a submitted code against the stored one in constant time.
func OTPMatches(stored, submitted string) bool {
	if stored == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}
