package util

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// GenerateLicenseKey returns a key like GTO-1A2B-3C4D-5E6F. Uniqueness is
// enforced by the store; callers retry on a duplicate.
func GenerateLicenseKey() string {
	parts := make([]string, 0, 4)
	parts = append(parts, "GTO")
	for i := 0; i < 3; i++ {
		b := make([]byte, 2)
		if _, err := rand.Read(b); err != nil {
			// crypto/rand only fails when the OS entropy source is broken
			panic(fmt.Sprintf("rand.Read: %v", err))
		}
		parts = append(parts, strings.ToUpper(hex.EncodeToString(b)))
	}
	return strings.Join(parts, "-")
}
