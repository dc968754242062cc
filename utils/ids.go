package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
)

var codeRange = big.NewInt(1_000_000)

// GenerateMemberCode returns MEM followed by six random digits. Collisions
// are caught by the unique index on the member code.
func GenerateMemberCode() string {
	n, err := rand.Int(rand.Reader, codeRange)
	if err != nil {
		panic("failed to generate member code")
	}
	return fmt.Sprintf("MEM%06d", n.Int64())
}

// HashTemplate fingerprints a biometric template so the raw template is
// never stored.
func HashTemplate(template string) string {
	sum := sha256.Sum256([]byte(template))
	return hex.EncodeToString(sum[:])
}
