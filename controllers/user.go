package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/acentrik/hr-portal/models"
	"github.com/acentrik/hr-portal/services"
	"github.com/acentrik/hr-portal/validators"
)

// UserController handles registration, profile self-service, and the admin
// user management surface.
type UserController struct {
	users   *services.UserService
	letters *services.OfferLetterService
	audit   *services.AuditService
}

func NewUserController(users *services.UserService, letters *services.OfferLetterService, audit *services.AuditService) *UserController {
	return &UserController{users: users, letters: letters, audit: audit}
}

// Register creates a USER-role account. Policy violations come back verbatim
// so the caller can show them; duplicate usernames are a 409.
func (uc *UserController) Register(c *gin.Context) {
	req, ok := validators.ValidateRegisterRequest(c)
	if !ok {
		return
	}

	user, err := uc.users.Register(c.Request.Context(), req.Username, req.Password, models.RoleUser)
	if err != nil {
		sendServiceError(c, err)
		return
	}

	sendResponse(c, http.StatusCreated, "User registered successfully", gin.H{
		"id":       user.ID,
		"username": user.Username,
		"role":     user.Role,
	}, nil)
}

// Profile returns the authenticated user's profile, including whether an
// offer letter is on file.
func (uc *UserController) Profile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		sendResponse(c, http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	hasLetter := false
	if _, err := uc.letters.LatestForUser(c.Request.Context(), user); err == nil {
		hasLetter = true
	}

	sendResponse(c, http.StatusOK, "Profile retrieved", gin.H{
		"id":               user.ID,
		"username":         user.Username,
		"role":             user.Role,
		"password_expired": user.IsPasswordExpired(),
		"has_offer_letter": hasLetter,
	}, nil)
}

// UpdatePassword changes the authenticated user's own password.
func (uc *UserController) UpdatePassword(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		sendResponse(c, http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	req, ok := validators.ValidateUpdatePasswordRequest(c)
	if !ok {
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		sendResponse(c, http.StatusBadRequest, "Validation failed", nil, "Passwords do not match")
		return
	}

	if _, err := uc.users.UpdatePassword(c.Request.Context(), user, req.NewPassword); err != nil {
		sendServiceError(c, err)
		return
	}

	sendResponse(c, http.StatusOK, "Password updated successfully", nil, nil)
}

// ListUsers returns every account. Admin only (gated by the route table).
func (uc *UserController) ListUsers(c *gin.Context) {
	users, err := uc.users.GetAllUsers(c.Request.Context())
	if err != nil {
		sendResponse(c, http.StatusInternalServerError, "Failed to fetch users", nil, "Database error")
		return
	}

	list := make([]gin.H, 0, len(users))
	for _, u := range users {
		list = append(list, gin.H{
			"id":             u.ID,
			"username":       u.Username,
			"role":           u.Role,
			"account_locked": u.AccountLocked,
			"created_at":     u.CreatedAt,
		})
	}
	sendResponse(c, http.StatusOK, "Users retrieved", gin.H{"users": list}, nil)
}

// CreateUser provisions an account on behalf of an admin.
func (uc *UserController) CreateUser(c *gin.Context) {
	admin, _ := currentUser(c)

	req, ok := validators.ValidateCreateUserRequest(c)
	if !ok {
		return
	}

	user, err := uc.users.Register(c.Request.Context(), req.Username, req.Password, models.RoleUser)
	if err != nil {
		sendServiceError(c, err)
		return
	}

	if admin != nil {
		uc.audit.LogUserManagementEvent(admin.Username, "CREATE_USER", user.Username, "provisioned by admin")
	}
	sendResponse(c, http.StatusCreated, "User created successfully", gin.H{
		"id":       user.ID,
		"username": user.Username,
	}, nil)
}

// DeleteUser removes an account. Admin accounts cannot be deleted through
// this endpoint.
func (uc *UserController) DeleteUser(c *gin.Context) {
	admin, ok := currentUser(c)
	if !ok {
		sendResponse(c, http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		sendResponse(c, http.StatusBadRequest, "Invalid user id", nil, "id must be numeric")
		return
	}

	target, err := uc.users.GetUserByID(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			sendResponse(c, http.StatusNotFound, "User not found", nil, "No such user")
			return
		}
		sendResponse(c, http.StatusInternalServerError, "Failed to delete user", nil, "Database error")
		return
	}
	if target.Role == models.RoleAdmin {
		sendResponse(c, http.StatusForbidden, "Access denied", nil, "Cannot delete administrator accounts")
		return
	}

	if err := uc.users.DeleteUserByID(c.Request.Context(), uint(id)); err != nil {
		sendServiceError(c, err)
		return
	}

	uc.audit.LogUserManagementEvent(admin.Username, "DELETE_USER", target.Username, "account terminated")
	sendResponse(c, http.StatusOK, "User deleted successfully", nil, nil)
}

// RecreateAdmin restores the reserved admin account if it was removed.
// Idempotent: an existing admin is simply returned.
func (uc *UserController) RecreateAdmin(c *gin.Context) {
	admin, err := uc.users.EnsureAdmin(c.Request.Context())
	if err != nil {
		sendResponse(c, http.StatusInternalServerError, "Failed to recreate admin", nil, "An unexpected error occurred")
		return
	}
	sendResponse(c, http.StatusOK, "Admin account ensured", gin.H{
		"id":       admin.ID,
		"username": admin.Username,
	}, nil)
}
