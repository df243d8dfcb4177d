package common

import (
	"crypto/sha256"
	"crypto/subtle"
)

// ConstantTimeEquals compares two strings in constant time. Both inputs are
// hashed first so the comparison time does not leak length information.
// Used for the gateway token and the authorized sender identity.
func ConstantTimeEquals(a, b string) bool {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ha[:], hb[:]) == 1
}
