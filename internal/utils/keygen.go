package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateToken generates a random token with the given prefix.
// Format: prefix_randomhex
// Example: share_a1b2c3d4e5f6...
func GenerateToken(prefix string, size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(b)), nil
}

// GenerateShareToken generates the public token of a shared list: share_xxx
func GenerateShareToken() (string, error) {
	return GenerateToken("share", 12)
}
