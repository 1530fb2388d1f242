package platform

import "crypto/subtle"

// ConstantTimeEqual reports whether a and b hold the same bytes, in time
// independent of their contents. Different lengths are never equal and
// short-circuit (length itself is not considered secret).
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
