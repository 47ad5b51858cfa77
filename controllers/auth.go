package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/acentrik/hr-portal/models"
	"github.com/acentrik/hr-portal/repository"
	"github.com/acentrik/hr-portal/services"
	"github.com/acentrik/hr-portal/utils"
	"github.com/acentrik/hr-portal/validators"
)

const sessionCookie = "session_token"

// SessionStore is the fast-path session token store (Redis in production).
type SessionStore interface {
	SetSession(ctx context.Context, token string, userID uint, ttl time.Duration) error
	GetSession(ctx context.Context, token string) (uint, error)
	DeleteSession(ctx context.Context, token string) error
}

// AuthController handles login, logout, and the session middleware.
type AuthController struct {
	users      *services.UserService
	sessions   repository.SessionRepository
	store      SessionStore
	sessionTTL time.Duration
}

func NewAuthController(users *services.UserService, sessions repository.SessionRepository, store SessionStore, sessionTTL time.Duration) *AuthController {
	return &AuthController{
		users:      users,
		sessions:   sessions,
		store:      store,
		sessionTTL: sessionTTL,
	}
}

// Login authenticates the credentials and establishes a session.
//
// Unknown usernames and bad credentials produce byte-identical responses so
// accounts cannot be enumerated. The attempt that locks the account gets its
// own message, as does any attempt against an already-locked account.
func (ac *AuthController) Login(c *gin.Context) {
	req, ok := validators.ValidateLoginRequest(c)
	if !ok {
		return
	}

	result, err := ac.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		var badCreds *services.BadCredentialsError
		switch {
		case errors.As(err, &badCreds) && badCreds.JustLocked:
			sendResponse(c, http.StatusUnauthorized, "Login failed", nil,
				"Account locked due to too many failed login attempts")
		case errors.Is(err, services.ErrAccountLocked):
			sendResponse(c, http.StatusUnauthorized, "Login failed", nil,
				"Account is locked due to too many failed login attempts")
		case errors.Is(err, services.ErrBadCredentials), errors.Is(err, services.ErrNotFound):
			sendResponse(c, http.StatusUnauthorized, "Login failed", nil, "Invalid credentials")
		default:
			sendResponse(c, http.StatusInternalServerError, "Login failed", nil, "An unexpected error occurred")
		}
		return
	}

	sessionToken := uuid.New().String()
	expiresAt := time.Now().Add(ac.sessionTTL)

	session := &models.UserSession{
		UserID:       result.User.ID,
		SessionToken: sessionToken,
		DeviceInfo:   c.GetHeader("User-Agent"),
		IPAddress:    c.ClientIP(),
		Location:     utils.GetIPLocation(c.ClientIP()),
		LastActivity: time.Now(),
		ExpiresAt:    expiresAt,
		IsActive:     true,
	}
	if err := ac.sessions.Create(c.Request.Context(), session); err != nil {
		sendResponse(c, http.StatusInternalServerError, "Login failed", nil, "Failed to create session")
		return
	}
	if err := ac.store.SetSession(c.Request.Context(), sessionToken, result.User.ID, ac.sessionTTL); err != nil {
		sendResponse(c, http.StatusInternalServerError, "Login failed", nil, "Failed to create session")
		return
	}

	c.SetCookie(sessionCookie, sessionToken, int(ac.sessionTTL.Seconds()), "/", "", false, true)

	sendResponse(c, http.StatusOK, "Login successful", gin.H{
		"user": gin.H{
			"id":       result.User.ID,
			"username": result.User.Username,
			"role":     result.User.Role,
		},
		"password_expired": result.PasswordExpired,
	}, nil)
}

// Logout tears down the session in both stores and clears the cookie.
func (ac *AuthController) Logout(c *gin.Context) {
	sessionToken, err := c.Cookie(sessionCookie)
	if err != nil {
		sendResponse(c, http.StatusBadRequest, "Logout failed", nil, "No session found")
		return
	}

	if err := ac.sessions.Deactivate(c.Request.Context(), sessionToken); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			sendResponse(c, http.StatusBadRequest, "Logout failed", nil, "Invalid session")
			return
		}
		sendResponse(c, http.StatusInternalServerError, "Logout failed", nil, "Failed to end session")
		return
	}

	if err := ac.store.DeleteSession(c.Request.Context(), sessionToken); err != nil {
		sendResponse(c, http.StatusInternalServerError, "Logout failed", nil, "Failed to end session")
		return
	}

	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	sendResponse(c, http.StatusOK, "Logged out successfully", nil, nil)
}

// Me reports the authenticated identity, or authenticated=false for
// anonymous callers. Public route.
func (ac *AuthController) Me(c *gin.Context) {
	user, ok := ac.resolveSessionUser(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"username":      user.Username,
		"role":          user.Role,
	})
}

// AuthMiddleware authenticates the request's session: Redis fast path first,
// then the authoritative Postgres session row. The resolved user is placed
// in the request context for downstream handlers.
func (ac *AuthController) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionToken, err := c.Cookie(sessionCookie)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Status:  http.StatusUnauthorized,
				Message: "Authentication required",
				Error:   "No session found",
			})
			return
		}

		userID, err := ac.store.GetSession(c.Request.Context(), sessionToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Status:  http.StatusUnauthorized,
				Message: "Authentication failed",
				Error:   "Invalid session",
			})
			return
		}

		session, err := ac.sessions.FindActiveByToken(c.Request.Context(), sessionToken)
		if err != nil {
			// The fast path is stale; clean it up.
			_ = ac.store.DeleteSession(c.Request.Context(), sessionToken)
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Status:  http.StatusUnauthorized,
				Message: "Authentication failed",
				Error:   "Invalid or expired session",
			})
			return
		}

		user, err := ac.users.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Status:  http.StatusUnauthorized,
				Message: "Authentication failed",
				Error:   "Invalid session",
			})
			return
		}

		_ = ac.sessions.Touch(c.Request.Context(), session.ID, time.Now())

		c.Set(ctxUserKey, user)
		c.Set(ctxSessionKey, session.ID)
		c.Next()
	}
}

// RequireRole gates a route group on the static role table. Ownership of
// specific documents is checked per-handler, not here.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Status:  http.StatusUnauthorized,
				Message: "Authentication required",
			})
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, Response{
			Status:  http.StatusForbidden,
			Message: "Access denied",
			Error:   "Insufficient role",
		})
	}
}

// resolveSessionUser is the non-aborting variant used by the public /me
// probe.
func (ac *AuthController) resolveSessionUser(c *gin.Context) (*models.User, bool) {
	sessionToken, err := c.Cookie(sessionCookie)
	if err != nil {
		return nil, false
	}
	userID, err := ac.store.GetSession(c.Request.Context(), sessionToken)
	if err != nil {
		return nil, false
	}
	if _, err := ac.sessions.FindActiveByToken(c.Request.Context(), sessionToken); err != nil {
		return nil, false
	}
	user, err := ac.users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		return nil, false
	}
	return user, true
}
