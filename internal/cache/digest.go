package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// Digest derives a cache key from ordered parts. Each part is length-prefixed
// so that ("ab", "c") and ("a", "bc") produce different keys.
func Digest(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(strconv.Itoa(len(p))))
		h.Write([]byte{':'})
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
