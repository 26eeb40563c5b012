package crypto

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// safetyCodeBytes digest bytes are kept; each byte becomes two decimal
// digits, so the code is 2*safetyCodeBytes digits long.
const safetyCodeBytes = 6

// SafetyCode derives a short, human-comparable code from two serialized
// public keys. The keys are sorted before hashing, so the code is identical
// no matter which side computes it. Two users compare the code out-of-band
// to detect key substitution in the directory.
func SafetyCode(jwkA, jwkB string) string {
	if jwkA > jwkB {
		jwkA, jwkB = jwkB, jwkA
	}
	sum := sha256.Sum256([]byte(jwkA + "|" + jwkB))

	var digits strings.Builder
	for _, b := range sum[:safetyCodeBytes] {
		fmt.Fprintf(&digits, "%02d", int(b)%100)
	}

	// Group into 4-digit blocks for readability: "1234 5678 9012".
	s := digits.String()
	blocks := make([]string, 0, len(s)/4)
	for i := 0; i < len(s); i += 4 {
		blocks = append(blocks, s[i:i+4])
	}
	return strings.Join(blocks, " ")
}
