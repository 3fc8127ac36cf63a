package lifecycle

import (
	"eigenkey/internal/models"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

const maskFill = "****"

// NormalizeKey trims surrounding whitespace and upper-cases the key.
func NormalizeKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

// MaskKey keeps the first 8 and last 4 characters of keys of 12 or more
// characters, otherwise only the first 6.
func MaskKey(key string) string {
	r := []rune(key)
	if len(r) >= 12 {
		return string(r[:8]) + maskFill + string(r[len(r)-4:])
	}
	return string(r[:min(len(r), 6)]) + maskFill
}

// HashClientValue returns a 16 hex digit xxhash of value. It is a coarse
// fingerprint, not a security measure. Missing values stay "unknown".
func HashClientValue(value string) string {
	if value == "" || value == models.UnknownValue {
		return models.UnknownValue
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(value))
}
