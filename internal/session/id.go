package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// idBytes gives 256 bits of entropy.
const idBytes = 32

var idLen = base64.RawURLEncoding.EncodedLen(idBytes)

// NewID generates an opaque browser session id.
func NewID() (string, error) {
	b := make([]byte, idBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session: generate id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ValidID reports whether id has the shape NewID produces. Anything else is
// never used as a store key.
func ValidID(id string) bool {
	if len(id) != idLen {
		return false
	}
	_, err := base64.RawURLEncoding.DecodeString(id)
	return err == nil
}
