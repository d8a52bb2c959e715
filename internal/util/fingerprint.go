package util

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Fingerprint computes a stable hash for a finding key.
func Fingerprint(category, location string, line int, context string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%d|%s", category, location, line, context)
	return hex.EncodeToString(h.Sum(nil))
}
