package random

import (
	"crypto/rand"
	"math/big"
)

// CodeAlphabet excludes characters that are easy to misread in a URL or on screen
const CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Random generates session codes. It can be mocked for testing.
type Random interface {
	// Code returns a random code of the given length drawn from CodeAlphabet.
	// An empty result means no code could be generated.
	Code(length int) string
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

func (r *CryptoRandom) Code(length int) string {
	if length <= 0 {
		return ""
	}
	limit := big.NewInt(int64(len(CodeAlphabet)))
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return ""
		}
		result[i] = CodeAlphabet[n.Int64()]
	}
	return string(result)
}
