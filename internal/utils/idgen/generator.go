package idgen

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// idAlphabet is the character set for the random portion of generated IDs.
const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateSecureID returns an identifier of the form "<prefix>_<random>", where
// the random portion is length characters drawn from [a-z0-9] using crypto/rand.
// Used for conversation ("conv") and message ("msg") public IDs.
func GenerateSecureID(prefix string, length int) (string, error) {
	if strings.TrimSpace(prefix) == "" {
		return "", fmt.Errorf("id prefix cannot be empty")
	}
	if length <= 0 {
		return "", fmt.Errorf("id length must be positive, got %d", length)
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	suffix := make([]byte, length)
	for i, b := range buf {
		suffix[i] = idAlphabet[int(b)%len(idAlphabet)]
	}

	return prefix + "_" + string(suffix), nil
}

// ValidateIDFormat reports whether id has the form "<expectedPrefix>_<suffix>"
// with a non-empty suffix containing only [a-z0-9].
func ValidateIDFormat(id, expectedPrefix string) bool {
	suffix, found := strings.CutPrefix(id, expectedPrefix+"_")
	if !found || suffix == "" {
		return false
	}
	for _, char := range suffix {
		if !((char >= 'a' && char <= 'z') || (char >= '0' && char <= '9')) {
			return false
		}
	}
	return true
}
