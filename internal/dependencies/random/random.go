package random

import (
	"crypto/rand"
	"encoding/binary"
	"math/big"
)

// Random provides random number generation that can be mocked for testing
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int

	// Int63 returns a non-negative random int64, used for match seeds
	Int63() int64

	// Float64 returns a random float64 in [0.0, 1.0)
	Float64() float64

	// String generates a random string of the given length from the given alphabet
	String(length int, alphabet string) string
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Intn returns a cryptographically random int in [0, n)
func (r *CryptoRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	max := big.NewInt(int64(n))
	result, err := rand.Int(rand.Reader, max)
	if err != nil {
		// Fall back to 0 on error (should never happen with crypto/rand)
		return 0
	}
	return int(result.Int64())
}

// Int63 returns a cryptographically random non-negative int64
func (r *CryptoRandom) Int63() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	return int64(binary.BigEndian.Uint64(buf[:]) >> 1)
}

// Float64 returns a cryptographically random float64 in [0.0, 1.0)
func (r *CryptoRandom) Float64() float64 {
	// 53 bits of precision, same construction as math/rand
	return float64(r.Int63()>>10) / (1 << 53)
}

// String generates a random string of the given length from the given alphabet
func (r *CryptoRandom) String(length int, alphabet string) string {
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	result := make([]byte, length)
	for i := 0; i < length; i++ {
		result[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(result)
}
