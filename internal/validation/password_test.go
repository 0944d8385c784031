package validation

import (
	"strings"
	"testing"

	"puppytalk/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "Abcdef1!", false},
		{"Exactly Max Length", "Ab1!" + strings.Repeat("x", 16), false},
		{"Too Short", "Ab1!xyz", true},
		{"Too Long", "Ab1!" + strings.Repeat("x", 17), true},
		{"No Upper", "abcdef1!", true},
		{"No Lower", "ABCDEF1!", true},
		{"No Digit", "Abcdefg!", true},
		{"No Special", "Abcdefg1", true},
		{"Backslash Counts As Symbol", `Abcdef1\`, false},
		{"Empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.True(t, models.IsCode(err, models.CodeInvalidPasswordFormat))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	// 254 chars total: 64 local + @ + 185 domain label + ".com" (4)
	emailAt254 := strings.Repeat("a", 64) + "@" + strings.Repeat("b", 185) + ".com"
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"Valid", "a@b.com", false},
		{"Subdomain", "dog.lover+1@mail.example.co.kr", false},
		{"Exactly 254 Characters", emailAt254, false},
		{"Too Long", "a" + emailAt254, true},
		{"Invalid Format", "not-an-email", true},
		{"Missing Domain", "user@", true},
		{"Multiple At Symbols", "user@@example.com", true},
		{"Space In Local Part", "user @example.com", true},
		{"Trailing Dot In Domain", "user@example.com.", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.True(t, models.IsCode(err, models.CodeInvalidEmailFormat))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@b.com", NormalizeEmail("  A@B.Com "))
}
