package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/acentrik/hr-portal/services"
	"github.com/acentrik/hr-portal/validators"
)

// maskedResetMessage is returned for every forgot-password request, known
// username or not, so accounts cannot be enumerated.
const maskedResetMessage = "If your account exists, a password reset link has been sent to your email."

// PasswordResetController handles the forgot/reset password flow.
type PasswordResetController struct {
	users *services.UserService
}

func NewPasswordResetController(users *services.UserService) *PasswordResetController {
	return &PasswordResetController{users: users}
}

// ForgotPassword issues a reset token. The response never reveals whether
// the account exists.
func (pc *PasswordResetController) ForgotPassword(c *gin.Context) {
	req, ok := validators.ValidateForgotPasswordRequest(c)
	if !ok {
		return
	}

	if _, err := pc.users.CreatePasswordResetToken(c.Request.Context(), req.Username); err != nil {
		sendResponse(c, http.StatusInternalServerError, "Request failed", nil, "An unexpected error occurred")
		return
	}

	// Token delivery happens out of band; unknown usernames get the same
	// answer.
	sendResponse(c, http.StatusOK, maskedResetMessage, nil, nil)
}

// ValidateResetToken is the pre-flight probe the reset form uses before
// asking for a new password. It does not consume the token.
func (pc *PasswordResetController) ValidateResetToken(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		sendResponse(c, http.StatusBadRequest, "Invalid request", nil, "token is required")
		return
	}

	user, err := pc.users.ValidatePasswordResetToken(c.Request.Context(), token)
	if err != nil {
		sendResponse(c, http.StatusInternalServerError, "Request failed", nil, "An unexpected error occurred")
		return
	}
	if user == nil {
		sendResponse(c, http.StatusBadRequest, "Invalid or expired password reset token", nil, "invalid token")
		return
	}

	sendResponse(c, http.StatusOK, "Token is valid", gin.H{"username": user.Username}, nil)
}

// ResetPassword consumes a reset token and installs the new password.
func (pc *PasswordResetController) ResetPassword(c *gin.Context) {
	req, ok := validators.ValidateResetPasswordRequest(c)
	if !ok {
		return
	}
	if req.Password != req.ConfirmPassword {
		sendResponse(c, http.StatusBadRequest, "Validation failed", nil, "Passwords do not match")
		return
	}

	reset, err := pc.users.ResetPassword(c.Request.Context(), req.Token, req.Password)
	if err != nil {
		sendServiceError(c, err)
		return
	}
	if !reset {
		sendResponse(c, http.StatusBadRequest, "Invalid or expired password reset token", nil, "invalid token")
		return
	}

	sendResponse(c, http.StatusOK, "Your password has been reset successfully. You can now log in with your new password.", nil, nil)
}
