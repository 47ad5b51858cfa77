package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/acentrik/hr-portal/models"
	"github.com/acentrik/hr-portal/services"
)

// Response is the uniform JSON envelope every handler writes.
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// sendResponse writes the envelope with a consistent shape.
func sendResponse(c *gin.Context, status int, message string, data interface{}, err interface{}) {
	c.JSON(status, Response{
		Status:  status,
		Message: message,
		Data:    data,
		Error:   err,
	})
}

// Context keys set by the session middleware.
const (
	ctxUserKey    = "currentUser"
	ctxSessionKey = "sessionID"
)

// currentUser returns the authenticated user placed in the context by the
// session middleware.
func currentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// canAccessLetter applies the per-document ownership rule: the requester
// must own the letter or hold the ADMIN role.
func canAccessLetter(user *models.User, letter *models.OfferLetter) bool {
	return letter.UserID == user.ID || user.Role == models.RoleAdmin
}

// sendServiceError maps the service error taxonomy onto HTTP responses.
// NotFound and bad credentials from auth flows are handled by the callers
// that need masking; this covers the rest.
func sendServiceError(c *gin.Context, err error) {
	var policyErr *services.PolicyViolationError
	switch {
	case errors.As(err, &policyErr):
		sendResponse(c, http.StatusBadRequest, "Validation failed", nil, policyErr.Reasons)
	case errors.Is(err, services.ErrConflict):
		sendResponse(c, http.StatusConflict, "Conflict", nil, "A user with this username already exists")
	case errors.Is(err, services.ErrNotFound):
		sendResponse(c, http.StatusNotFound, "Not found", nil, "Resource not found")
	default:
		var renderErr *services.RenderError
		var deliveryErr *services.DeliveryError
		if errors.As(err, &renderErr) {
			sendResponse(c, http.StatusInternalServerError, "Generation failed", nil, "Failed to generate document")
			return
		}
		if errors.As(err, &deliveryErr) {
			sendResponse(c, http.StatusInternalServerError, "Delivery failed", nil, "Failed to deliver email")
			return
		}
		sendResponse(c, http.StatusInternalServerError, "Internal server error", nil, "An unexpected error occurred")
	}
}
