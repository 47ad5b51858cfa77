// Package repository defines the persistence contracts for the portal and
// provides a Postgres (gorm) implementation plus an in-memory one for tests.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/acentrik/hr-portal/models"
)

// ErrNotFound is returned by lookups that match no record.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a unique constraint would be violated.
var ErrDuplicate = errors.New("duplicate record")

// UserRepository is CRUD plus exact-match lookup over user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id uint) error

	// UpdateAttempts loads the user by username, applies fn to it, and saves
	// the result, all under a boundary that serializes concurrent updates to
	// the same account so failed-attempt bookkeeping cannot lose writes.
	UpdateAttempts(ctx context.Context, username string, fn func(*models.User) error) error
}

// ResetTokenRepository stores password reset tokens.
type ResetTokenRepository interface {
	Create(ctx context.Context, token *models.PasswordResetToken) error
	FindByToken(ctx context.Context, token string) (*models.PasswordResetToken, error)
	DeleteByUser(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// OfferLetterRepository stores generated offer letters.
type OfferLetterRepository interface {
	Create(ctx context.Context, letter *models.OfferLetter) error
	FindByID(ctx context.Context, id uint) (*models.OfferLetter, error)
	FindByUser(ctx context.Context, userID uint) ([]models.OfferLetter, error)
	FindLatestByUser(ctx context.Context, userID uint) (*models.OfferLetter, error)
	Delete(ctx context.Context, id uint) error
	DeleteByUser(ctx context.Context, userID uint) error
}

// SessionRepository stores the authoritative session rows backing the Redis
// fast path.
type SessionRepository interface {
	Create(ctx context.Context, session *models.UserSession) error
	FindActiveByToken(ctx context.Context, token string) (*models.UserSession, error)
	Touch(ctx context.Context, id uint, at time.Time) error
	Deactivate(ctx context.Context, token string) error
}
