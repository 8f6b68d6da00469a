// Package fingerprint computes deterministic cache keys for generation
// requests. The digest algorithm and join format are part of the external
// contract: cache rows written by a previous deployment must keep matching.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Hash returns the cache fingerprint for a (prompt, format, layout) triple.
// The prompt is trimmed and lower-cased, format and layout are lower-cased,
// the three are joined with "|" in order, and the SHA-256 digest is rendered
// as 64 lowercase hex characters. Identical normalized inputs always yield
// the identical fingerprint.
func Hash(prompt, format, layout string) string {
	normalized := fmt.Sprintf("%s|%s|%s",
		strings.ToLower(strings.TrimSpace(prompt)),
		strings.ToLower(format),
		strings.ToLower(layout),
	)

	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether the given inputs hash to the expected fingerprint.
func Verify(prompt, format, layout, expected string) bool {
	return Hash(prompt, format, layout) == expected
}

// Truncate shortens a fingerprint for display in logs.
func Truncate(hash string, length int) string {
	if length < 0 || length >= len(hash) {
		return hash
	}
	return hash[:length]
}
