package services

import (
	"crypto/rand"
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/acentrik/hr-portal/models"
)

// PasswordValidator checks password complexity and history and synthesizes
// random compliant passwords.
type PasswordValidator struct{}

func NewPasswordValidator() *PasswordValidator {
	return &PasswordValidator{}
}

const minPasswordLength = 8

const (
	upperChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars = "abcdefghijklmnopqrstuvwxyz"
	digitChars = "0123456789"
	// The accepted special-character set. Validation and generation use the
	// same set so generated passwords always validate.
	specialChars = "!@#$%^&*()_+-=[]{};':\"\\|,.<>/?"
)

// ValidateComplexity returns every rule the candidate violates. All rules are
// checked independently; an empty result means the password is acceptable.
// The character classes are ASCII only: accented letters satisfy no class.
// An empty candidate fails the length rule and all four character-class
// rules.
func (v *PasswordValidator) ValidateComplexity(password string) []string {
	var errs []string

	if utf8.RuneCountInString(password) < minPasswordLength {
		errs = append(errs, "Password must be at least 8 characters long")
	}
	if !strings.ContainsAny(password, upperChars) {
		errs = append(errs, "Password must contain at least one uppercase letter")
	}
	if !strings.ContainsAny(password, lowerChars) {
		errs = append(errs, "Password must contain at least one lowercase letter")
	}
	if !strings.ContainsAny(password, digitChars) {
		errs = append(errs, "Password must contain at least one digit")
	}
	if !strings.ContainsAny(password, specialChars) {
		errs = append(errs, "Password must contain at least one special character")
	}

	return errs
}

// IsInHistory reports whether hashedPassword exactly matches any retained
// history entry. The comparison is against stored hashes, not plaintext.
func (v *PasswordValidator) IsInHistory(user *models.User, hashedPassword string) bool {
	for _, entry := range user.PasswordHistory {
		if entry.PasswordHash == hashedPassword {
			return true
		}
	}
	return false
}

// GenerateRandomPassword produces a password guaranteed to satisfy
// ValidateComplexity: one character from each class, padded to the minimum
// length from the union of all classes, then shuffled.
func (v *PasswordValidator) GenerateRandomPassword() string {
	all := upperChars + lowerChars + digitChars + specialChars

	chars := []byte{
		upperChars[randIndex(len(upperChars))],
		lowerChars[randIndex(len(lowerChars))],
		digitChars[randIndex(len(digitChars))],
		specialChars[randIndex(len(specialChars))],
	}
	for len(chars) < minPasswordLength {
		chars = append(chars, all[randIndex(len(all))])
	}

	// Fisher-Yates so the mandatory class characters are not predictable by
	// position.
	for i := len(chars) - 1; i > 0; i-- {
		j := randIndex(i + 1)
		chars[i], chars[j] = chars[j], chars[i]
	}

	return string(chars)
}

// randIndex returns a uniform random index in [0, n) from crypto/rand.
func randIndex(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand failing means the platform's entropy source is broken;
		// there is no reasonable degraded mode for credential generation.
		panic(err)
	}
	return int(v.Int64())
}
