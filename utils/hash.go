package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashText returns the hex SHA-256 of the parts joined with a NUL separator.
func HashText(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
