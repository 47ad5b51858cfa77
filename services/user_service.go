package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/acentrik/hr-portal/models"
	"github.com/acentrik/hr-portal/repository"
)

// UserServiceConfig carries the tunables for account bootstrap and the
// password lifecycle.
type UserServiceConfig struct {
	AdminUsername     string
	AdminPassword     string
	UserUsername      string
	UserPassword      string
	AdminAutoRecreate bool
	ResetTokenTTL     time.Duration
	PasswordMaxAge    time.Duration
}

// AuthResult is a successful authentication. PasswordExpired is advisory:
// an expired password never blocks login, the UI prompts for a change.
type AuthResult struct {
	User            *models.User
	PasswordExpired bool
}

// UserService owns account authentication, the lockout state machine, the
// password lifecycle, and reset tokens. It is the only writer of the
// failed-attempt counter and lock flag.
type UserService struct {
	users     repository.UserRepository
	tokens    repository.ResetTokenRepository
	letters   repository.OfferLetterRepository
	validator *PasswordValidator
	hasher    Hasher
	audit     *AuditService
	cfg       UserServiceConfig
}

func NewUserService(
	users repository.UserRepository,
	tokens repository.ResetTokenRepository,
	letters repository.OfferLetterRepository,
	validator *PasswordValidator,
	hasher Hasher,
	audit *AuditService,
	cfg UserServiceConfig,
) *UserService {
	if cfg.ResetTokenTTL == 0 {
		cfg.ResetTokenTTL = 30 * time.Minute
	}
	if cfg.PasswordMaxAge == 0 {
		cfg.PasswordMaxAge = 90 * 24 * time.Hour
	}
	return &UserService{
		users:     users,
		tokens:    tokens,
		letters:   letters,
		validator: validator,
		hasher:    hasher,
		audit:     audit,
		cfg:       cfg,
	}
}

// Authenticate checks the credentials for username.
//
// Unknown usernames return ErrNotFound; callers must present it identically
// to bad credentials so usernames cannot be enumerated. A locked account is
// refused with ErrAccountLocked before the credential is even compared. A
// mismatch applies the failed-attempt transition under the repository's
// per-account update boundary and returns a BadCredentialsError whose
// JustLocked flag marks the attempt that crossed the lockout threshold. A
// match resets the counter and lock together.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.audit.LogAuthEvent(username, "LOGIN_FAILURE", "unknown username")
			return nil, ErrNotFound
		}
		return nil, err
	}

	if user.AccountLocked {
		s.audit.LogAuthEvent(username, "LOGIN_REFUSED", "account locked")
		return nil, ErrAccountLocked
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		var justLocked, alreadyLocked bool
		err := s.users.UpdateAttempts(ctx, username, func(u *models.User) error {
			// A concurrent attempt may have locked the account after our
			// read; the counter stays frozen at the threshold.
			if u.AccountLocked {
				alreadyLocked = true
				return nil
			}
			u.IncrementFailedLoginAttempts()
			justLocked = u.AccountLocked
			return nil
		})
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		if alreadyLocked {
			s.audit.LogAuthEvent(username, "LOGIN_REFUSED", "account locked")
			return nil, ErrAccountLocked
		}
		if justLocked {
			s.audit.LogAuthEvent(username, "ACCOUNT_LOCKED", "failed attempt threshold reached")
		} else {
			s.audit.LogAuthEvent(username, "LOGIN_FAILURE", "bad credentials")
		}
		return nil, &BadCredentialsError{JustLocked: justLocked}
	}

	if err := s.users.UpdateAttempts(ctx, username, func(u *models.User) error {
		u.ResetFailedLoginAttempts()
		return nil
	}); err != nil {
		return nil, err
	}
	user.ResetFailedLoginAttempts()

	s.audit.LogAuthEvent(username, "LOGIN_SUCCESS", "credentials accepted")
	return &AuthResult{
		User:            user,
		PasswordExpired: user.IsPasswordExpired(),
	}, nil
}

// Register creates a new account after validating the password policy.
// Duplicate usernames fail with ErrConflict.
func (s *UserService) Register(ctx context.Context, username, password string, role models.Role) (*models.User, error) {
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, ErrConflict
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if reasons := s.validator.ValidateComplexity(password); len(reasons) > 0 {
		return nil, &PolicyViolationError{Reasons: reasons}
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := models.NewUser(username, hash, role, s.cfg.PasswordMaxAge)
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, err
	}

	s.audit.LogUserManagementEvent("system", "CREATE_USER", username, string(role)+" account registered")
	return user, nil
}

// UpdatePassword changes a user's password: policy check, history check
// against the new hash, then history push, hash update, and expiry bump.
func (s *UserService) UpdatePassword(ctx context.Context, user *models.User, newPassword string) (*models.User, error) {
	if reasons := s.validator.ValidateComplexity(newPassword); len(reasons) > 0 {
		return nil, &PolicyViolationError{Reasons: reasons}
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, err
	}

	if s.validator.IsInHistory(user, newHash) {
		return nil, &PolicyViolationError{
			Reasons: []string{"Password has been used recently. Please choose a different password."},
		}
	}

	s.applyPasswordChange(user, newHash)
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	s.audit.LogPasswordEvent(user.Username, "PASSWORD_CHANGE", "password updated")
	return user, nil
}

// applyPasswordChange pushes the current hash onto the history and installs
// the new one with fresh lifecycle timestamps.
func (s *UserService) applyPasswordChange(user *models.User, newHash string) {
	user.AddPasswordToHistory(user.PasswordHash)
	user.PasswordHash = newHash
	user.LastPasswordChange = time.Now()
	user.PasswordExpiryDate = time.Now().Add(s.cfg.PasswordMaxAge)
}

// CreatePasswordResetToken issues a reset token for username, replacing any
// prior token for that account. An unknown username returns ("", nil):
// callers answer with the same masked message either way.
func (s *UserService) CreatePasswordResetToken(ctx context.Context, username string) (string, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil
		}
		return "", err
	}

	if err := s.tokens.DeleteByUser(ctx, user.ID); err != nil {
		return "", err
	}

	token := models.NewPasswordResetToken(user, s.cfg.ResetTokenTTL)
	if err := s.tokens.Create(ctx, token); err != nil {
		return "", err
	}

	s.audit.LogPasswordEvent(username, "PASSWORD_RESET_REQUESTED", "reset token issued")
	return token.Token, nil
}

// ValidatePasswordResetToken resolves a token to its owning user. A missing
// or expired token yields nil; an expired token swept concurrently is
// indistinguishable from one that never existed, and that is intentional.
// The token is not consumed.
func (s *UserService) ValidatePasswordResetToken(ctx context.Context, token string) (*models.User, error) {
	t, err := s.tokens.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if t.IsExpired() {
		return nil, nil
	}

	user, err := s.users.FindByID(ctx, t.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// ResetPassword performs a token-based password reset. The policy check runs
// first; an invalid token returns (false, nil); success consumes the token.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) (bool, error) {
	if reasons := s.validator.ValidateComplexity(newPassword); len(reasons) > 0 {
		return false, &PolicyViolationError{Reasons: reasons}
	}

	user, err := s.ValidatePasswordResetToken(ctx, token)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, nil
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return false, err
	}

	s.applyPasswordChange(user, newHash)
	if err := s.users.Save(ctx, user); err != nil {
		return false, err
	}

	// Single use: the token (and any other token for this user) goes away.
	if err := s.tokens.DeleteByUser(ctx, user.ID); err != nil {
		return false, err
	}

	s.audit.LogPasswordEvent(user.Username, "PASSWORD_RESET", "password reset via token")
	return true, nil
}

// EnsureAdmin guarantees the reserved admin account exists. It is
// idempotent: an existing admin is returned untouched. When the configured
// admin password fails the policy, a random compliant one is generated and
// printed once to the server log.
func (s *UserService) EnsureAdmin(ctx context.Context) (*models.User, error) {
	if user, err := s.users.FindByUsername(ctx, s.cfg.AdminUsername); err == nil {
		return user, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	password := s.cfg.AdminPassword
	if reasons := s.validator.ValidateComplexity(password); len(reasons) > 0 {
		password = s.validator.GenerateRandomPassword()
		log.Printf("Generated secure admin password: %s", password)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	admin := models.NewUser(s.cfg.AdminUsername, hash, models.RoleAdmin, s.cfg.PasswordMaxAge)
	if err := s.users.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost a race with another bootstrap; the existing admin wins.
			return s.users.FindByUsername(ctx, s.cfg.AdminUsername)
		}
		return nil, err
	}

	s.audit.LogUserManagementEvent("system", "CREATE_USER", admin.Username, "admin account bootstrapped")
	return admin, nil
}

// InitializeUsers seeds the admin account (when auto-recreate is enabled)
// and the default regular account at startup.
func (s *UserService) InitializeUsers(ctx context.Context) error {
	if s.cfg.AdminAutoRecreate {
		if _, err := s.EnsureAdmin(ctx); err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
	}

	if _, err := s.users.FindByUsername(ctx, s.cfg.UserUsername); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	password := s.cfg.UserPassword
	if reasons := s.validator.ValidateComplexity(password); len(reasons) > 0 {
		password = s.validator.GenerateRandomPassword()
		log.Printf("Generated secure user password: %s", password)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	user := models.NewUser(s.cfg.UserUsername, hash, models.RoleUser, s.cfg.PasswordMaxAge)
	if err := s.users.Create(ctx, user); err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return err
	}
	return nil
}

// CleanupExpiredTokens removes expired reset tokens. Driven by a periodic
// sweep; safe to run concurrently with token validation.
func (s *UserService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	return s.tokens.DeleteExpired(ctx, time.Now())
}

// GetUserByUsername looks up an account; ErrNotFound when absent.
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetUserByID looks up an account by ID; ErrNotFound when absent.
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetAllUsers lists every account.
func (s *UserService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	return s.users.FindAll(ctx)
}

// DeleteUserByID removes an account and cascades its reset tokens and offer
// letters (a terminated employee's letters have no remaining owner).
func (s *UserService) DeleteUserByID(ctx context.Context, id uint) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := s.tokens.DeleteByUser(ctx, user.ID); err != nil {
		return err
	}
	if err := s.letters.DeleteByUser(ctx, user.ID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.audit.LogUserManagementEvent("system", "DELETE_USER", user.Username, "account removed with tokens and letters")
	return nil
}
