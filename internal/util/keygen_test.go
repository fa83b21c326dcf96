package util

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateLicenseKeyFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^GTO-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}$`)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key := GenerateLicenseKey()
		assert.Regexp(t, pattern, key)
		assert.False(t, seen[key], "duplicate key %s", key)
		seen[key] = true
	}
}
