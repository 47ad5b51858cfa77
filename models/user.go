package models

import (
	"time"
)

// Role is the closed set of account roles. Stored as its string value.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// PasswordHistoryLimit is how many prior password hashes are retained per
// user. Older entries are evicted when the limit is exceeded.
const PasswordHistoryLimit = 5

// LockoutThreshold is the number of consecutive failed logins that locks an
// account.
const LockoutThreshold = 5

type User struct {
	ID                  uint   `gorm:"primarykey"`
	Username            string `gorm:"unique;not null"`
	PasswordHash        string `gorm:"not null"`
	Role                Role   `gorm:"not null"`
	FailedLoginAttempts int    `gorm:"default:0"`
	AccountLocked       bool   `gorm:"default:false"`
	LastPasswordChange  time.Time
	PasswordExpiryDate  time.Time
	PasswordHistory     []PasswordHistoryEntry `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time
	UpdatedAt           time.Time

	// EvictedHistory holds entries dropped from the history window since the
	// user was loaded. Saving an association list only upserts what is still
	// in it, so the repository must delete these rows explicitly; Save
	// consumes the list.
	EvictedHistory []PasswordHistoryEntry `gorm:"-"`
}

// PasswordHistoryEntry is one retained prior password hash. Entries are
// ordered oldest first; the newest hash is last.
type PasswordHistoryEntry struct {
	ID           uint   `gorm:"primarykey"`
	UserID       uint   `gorm:"not null;index"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
}

// NewUser creates a user with the password lifecycle fields initialized:
// the password is considered changed now and expires after maxAge.
func NewUser(username, passwordHash string, role Role, maxAge time.Duration) *User {
	now := time.Now()
	return &User{
		Username:           username,
		PasswordHash:       passwordHash,
		Role:               role,
		LastPasswordChange: now,
		PasswordExpiryDate: now.Add(maxAge),
	}
}

// IsPasswordExpired reports whether the password is past its expiry date.
// Expiry is advisory: it never blocks login, callers surface it to the UI.
func (u *User) IsPasswordExpired() bool {
	return !u.PasswordExpiryDate.IsZero() && time.Now().After(u.PasswordExpiryDate)
}

// AddPasswordToHistory appends a hash to the history, evicting the oldest
// entries beyond PasswordHistoryLimit. Evicted entries move to
// EvictedHistory so the repository can remove their rows on the next save.
func (u *User) AddPasswordToHistory(passwordHash string) {
	u.PasswordHistory = append(u.PasswordHistory, PasswordHistoryEntry{
		UserID:       u.ID,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	})
	if n := len(u.PasswordHistory); n > PasswordHistoryLimit {
		u.EvictedHistory = append(u.EvictedHistory, u.PasswordHistory[:n-PasswordHistoryLimit]...)
		u.PasswordHistory = u.PasswordHistory[n-PasswordHistoryLimit:]
	}
}

// ResetFailedLoginAttempts clears the failure counter and the lock together.
// Only a successful authentication or an admin action calls this.
func (u *User) ResetFailedLoginAttempts() {
	u.FailedLoginAttempts = 0
	u.AccountLocked = false
}

// IncrementFailedLoginAttempts bumps the failure counter and locks the
// account once the threshold is reached.
func (u *User) IncrementFailedLoginAttempts() {
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= LockoutThreshold {
		u.AccountLocked = true
	}
}
