package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/acentrik/hr-portal/models"
)

// GormUserRepository implements UserRepository on Postgres via gorm.
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *GormUserRepository) Save(ctx context.Context, user *models.User) error {
	// Full-save so history entries added on the model are written with it.
	// Upserting the association list does not remove rows evicted from the
	// history window; those are deleted here, in the same transaction.
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(user).Error; err != nil {
			return err
		}
		var evictedIDs []uint
		for _, entry := range user.EvictedHistory {
			if entry.ID != 0 {
				evictedIDs = append(evictedIDs, entry.ID)
			}
		}
		if len(evictedIDs) > 0 {
			if err := tx.Delete(&models.PasswordHistoryEntry{}, evictedIDs).Error; err != nil {
				return err
			}
		}
		user.EvictedHistory = nil
		return nil
	})
}

func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("PasswordHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("username = ?", username).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("PasswordHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) FindAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormUserRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateAttempts serializes the lockout read-modify-write for one account
// with a transaction and a row lock on the user record.
func (r *GormUserRepository) UpdateAttempts(ctx context.Context, username string, fn func(*models.User) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("username = ?", username).
			First(&user).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := fn(&user); err != nil {
			// Counter mutations still commit: a failed credential check is
			// an application error, not a reason to roll back bookkeeping.
			if saveErr := tx.Save(&user).Error; saveErr != nil {
				return saveErr
			}
			return err
		}
		return tx.Save(&user).Error
	})
}

// GormResetTokenRepository implements ResetTokenRepository via gorm.
type GormResetTokenRepository struct {
	db *gorm.DB
}

func NewGormResetTokenRepository(db *gorm.DB) *GormResetTokenRepository {
	return &GormResetTokenRepository{db: db}
}

func (r *GormResetTokenRepository) Create(ctx context.Context, token *models.PasswordResetToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *GormResetTokenRepository) FindByToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	var t models.PasswordResetToken
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *GormResetTokenRepository) DeleteByUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.PasswordResetToken{}).Error
}

func (r *GormResetTokenRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expiry_date < ?", cutoff).
		Delete(&models.PasswordResetToken{})
	return result.RowsAffected, result.Error
}

// GormOfferLetterRepository implements OfferLetterRepository via gorm.
type GormOfferLetterRepository struct {
	db *gorm.DB
}

func NewGormOfferLetterRepository(db *gorm.DB) *GormOfferLetterRepository {
	return &GormOfferLetterRepository{db: db}
}

func (r *GormOfferLetterRepository) Create(ctx context.Context, letter *models.OfferLetter) error {
	return r.db.WithContext(ctx).Create(letter).Error
}

func (r *GormOfferLetterRepository) FindByID(ctx context.Context, id uint) (*models.OfferLetter, error) {
	var letter models.OfferLetter
	if err := r.db.WithContext(ctx).First(&letter, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &letter, nil
}

func (r *GormOfferLetterRepository) FindByUser(ctx context.Context, userID uint) ([]models.OfferLetter, error) {
	var letters []models.OfferLetter
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&letters).Error
	if err != nil {
		return nil, err
	}
	return letters, nil
}

func (r *GormOfferLetterRepository) FindLatestByUser(ctx context.Context, userID uint) (*models.OfferLetter, error) {
	var letter models.OfferLetter
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&letter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &letter, nil
}

func (r *GormOfferLetterRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.OfferLetter{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormOfferLetterRepository) DeleteByUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.OfferLetter{}).Error
}

// GormSessionRepository implements SessionRepository via gorm.
type GormSessionRepository struct {
	db *gorm.DB
}

func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

func (r *GormSessionRepository) Create(ctx context.Context, session *models.UserSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *GormSessionRepository) FindActiveByToken(ctx context.Context, token string) (*models.UserSession, error) {
	var session models.UserSession
	err := r.db.WithContext(ctx).
		Where("session_token = ? AND is_active = ? AND expires_at > ?", token, true, time.Now()).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *GormSessionRepository) Touch(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.UserSession{}).
		Where("id = ?", id).
		Update("last_activity", at).Error
}

func (r *GormSessionRepository) Deactivate(ctx context.Context, token string) error {
	result := r.db.WithContext(ctx).
		Model(&models.UserSession{}).
		Where("session_token = ? AND is_active = ?", token, true).
		Updates(map[string]interface{}{
			"is_active":  false,
			"expires_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
