package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// DigestKey returns prefix + ":" + the first 16 hex chars of sha256(raw).
// Order in raw matters.
func DigestKey(prefix, raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return prefix + ":" + hex.EncodeToString(sum[:8])
}
