package mail

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
)

const (
	codeMin = 1000
	codeMax = 9999
)

// GenerateCode returns a 4-digit verification code drawn uniformly from
// [1000, 9999].
func GenerateCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		// crypto/rand only fails when the platform entropy source is
		// broken; there is no useful recovery at this level.
		panic(fmt.Sprintf("mail: reading random source: %v", err))
	}
	return fmt.Sprintf("%04d", n.Int64()+codeMin)
}

// CodesMatch compares a stored and a supplied code as opaque tokens in
// constant time. No arithmetic validity beyond equality is enforced.
func CodesMatch(stored, supplied string) bool {
	if len(stored) != len(supplied) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}
