package auth

import (
	"crypto/rand"
	"encoding/hex"
)

// guestSuffixBytes yields 8 hex characters of entropy in generated guest names.
const guestSuffixBytes = 4

// GuestName generates a display name of the form "Guest_<suffix>".
// The suffix is random; collisions are negligibly likely but possible, and
// guest display names are not required to be unique.
func GuestName() (string, error) {
	b := make([]byte, guestSuffixBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return "Guest_" + hex.EncodeToString(b), nil
}
