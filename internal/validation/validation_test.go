package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidatePassword("Sup3r-Secret-Pass!"))

	tests := []struct {
		name     string
		password string
		wantMsg  string
	}{
		{"too short", "Sh0rt-pw!", "at least 12"},
		{"too long", strings.Repeat("Aa1!", 40), "not exceed 128"},
		{"no uppercase", "lowercase-only-123!", "uppercase"},
		{"no lowercase", "UPPERCASE-ONLY-123!", "lowercase"},
		{"no digit", "No-Digits-Here!", "digit"},
		{"no special", "NoSpecialChars123", "special character"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorContains(t, ValidatePassword(tt.password), tt.wantMsg)
		})
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateUsername("alice_99"))
	assert.NoError(t, ValidateUsername("bob-the-builder"))

	tests := []struct {
		name     string
		username string
	}{
		{"too short", "ab"},
		{"too long", strings.Repeat("a", 31)},
		{"invalid characters", "alice!"},
		{"leading underscore", "_alice"},
		{"trailing hyphen", "alice-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Error(t, ValidateUsername(tt.username))
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateEmail("alice@example.com"))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("missing@tld"))
	assert.Error(t, ValidateEmail(strings.Repeat("a", 250)+"@x.com"))
}
