package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acentrik/hr-portal/models"
)

func TestValidateComplexity(t *testing.T) {
	v := NewPasswordValidator()

	tests := []struct {
		name       string
		password   string
		violations int
		contains   string
	}{
		{name: "valid password", password: "Str0ng!Pwd", violations: 0},
		{name: "valid with different special", password: "Abcdef1?", violations: 0},
		{name: "too short with missing special", password: "Weak1", violations: 2, contains: "8 characters"},
		{name: "no uppercase", password: "str0ng!pwd", violations: 1, contains: "uppercase"},
		{name: "no lowercase", password: "STR0NG!PWD", violations: 1, contains: "lowercase"},
		{name: "no digit", password: "Strong!Pwd", violations: 1, contains: "digit"},
		{name: "no special", password: "Str0ngPwd", violations: 1, contains: "special"},
		{name: "only length ok", password: "aaaaaaaa", violations: 3},
		{name: "non-ascii letters satisfy no class", password: "ÑÑññ11!!", violations: 2},
		{name: "length counts characters not bytes", password: "êêêêAb1!", violations: 0},
		{name: "multibyte but short", password: "Ñb1!êê", violations: 2, contains: "8 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.ValidateComplexity(tt.password)
			assert.Len(t, errs, tt.violations)
			if tt.contains != "" {
				assert.True(t, containsSubstring(errs, tt.contains),
					"expected a violation mentioning %q in %v", tt.contains, errs)
			}
		})
	}
}

func TestValidateComplexityEmptyFailsEveryRule(t *testing.T) {
	v := NewPasswordValidator()

	errs := v.ValidateComplexity("")
	// Length plus all four character classes.
	assert.Len(t, errs, 5)
}

func TestGenerateRandomPasswordAlwaysValid(t *testing.T) {
	v := NewPasswordValidator()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		pwd := v.GenerateRandomPassword()
		require.Empty(t, v.ValidateComplexity(pwd), "generated password %q failed validation", pwd)
		seen[pwd] = true
	}
	// Not a randomness proof, just a guard against a fixed output.
	assert.Greater(t, len(seen), 90)
}

func TestIsInHistory(t *testing.T) {
	v := NewPasswordValidator()

	user := &models.User{}
	assert.False(t, v.IsInHistory(user, "hash-a"), "empty history matches nothing")

	user.AddPasswordToHistory("hash-a")
	user.AddPasswordToHistory("hash-b")

	assert.True(t, v.IsInHistory(user, "hash-a"))
	assert.True(t, v.IsInHistory(user, "hash-b"))
	assert.False(t, v.IsInHistory(user, "hash-c"))
}

func containsSubstring(errs []string, sub string) bool {
	for _, e := range errs {
		if strings.Contains(e, sub) {
			return true
		}
	}
	return false
}
