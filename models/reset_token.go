package models

import (
	"time"

	"github.com/google/uuid"
)

// PasswordResetToken is a short-lived, single-use secret permitting a
// password change without the old credential. A user has at most one live
// token; issuing a new one replaces any prior token.
type PasswordResetToken struct {
	ID         uint   `gorm:"primarykey"`
	Token      string `gorm:"unique;not null"`
	UserID     uint   `gorm:"not null;index"`
	User       User   `gorm:"foreignkey:UserID;constraint:OnDelete:CASCADE"`
	ExpiryDate time.Time
	CreatedAt  time.Time
}

// NewPasswordResetToken mints a token for the user, valid for ttl.
func NewPasswordResetToken(user *User, ttl time.Duration) *PasswordResetToken {
	return &PasswordResetToken{
		Token:      uuid.New().String(),
		UserID:     user.ID,
		ExpiryDate: time.Now().Add(ttl),
	}
}

// IsExpired reports whether the token's expiry timestamp has passed.
func (t *PasswordResetToken) IsExpired() bool {
	return time.Now().After(t.ExpiryDate)
}
