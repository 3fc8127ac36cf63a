package lifecycle

import (
	"eigenkey/internal/models"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"standard key", "EF-26Q1-A9F4KZ2M", "EF-26Q1-****KZ2M"},
		{"exactly twelve", "ABCDEFGHIJKL", "ABCDEFGH****IJKL"},
		{"eleven", "ABCDEFGHIJK", "ABCDEF****"},
		{"short", "ABC", "ABC****"},
		{"empty", "", "****"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskKey(tt.key))
		})
	}
}

func TestMaskKey_NeverRevealsMiddle(t *testing.T) {
	masked := MaskKey("EF-26Q1-SECRETXYZ")
	assert.NotContains(t, masked, "SECRET")
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "EF-26Q1-A9F4KZ2M", NormalizeKey("  ef-26q1-a9f4kz2m\t"))
	assert.Equal(t, "", NormalizeKey("   "))
}

func TestHashClientValue(t *testing.T) {
	hex16 := regexp.MustCompile(`^[0-9a-f]{16}$`)

	h := HashClientValue("203.0.113.9")
	assert.Regexp(t, hex16, h)
	assert.Equal(t, h, HashClientValue("203.0.113.9"))
	assert.NotEqual(t, h, HashClientValue("203.0.113.10"))

	assert.Equal(t, models.UnknownValue, HashClientValue(""))
	assert.Equal(t, models.UnknownValue, HashClientValue("unknown"))
}
