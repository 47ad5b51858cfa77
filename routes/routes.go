// Package routes wires the HTTP surface and owns the static route-to-role
// access policy.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/acentrik/hr-portal/controllers"
	"github.com/acentrik/hr-portal/models"
)

// Access is the level required for a route.
type Access int

const (
	// Public routes need no session.
	Public Access = iota
	// Authenticated routes need a session with either role.
	Authenticated
	// AdminOnly routes need a session with the ADMIN role.
	AdminOnly
)

// Policy is the static route-pattern to access-level table. Ownership of a
// specific offer letter is a per-request check inside the handler, not a
// route rule.
var Policy = map[string]Access{
	"POST /auth/login":              Public,
	"POST /auth/logout":             Authenticated,
	"POST /register":                Public,
	"POST /forgot-password":         Public,
	"GET /reset-password":           Public,
	"POST /reset-password":          Public,
	"GET /api/auth/me":              Public,
	"GET /api/profile":              Authenticated,
	"PUT /api/profile/password":     Authenticated,
	"POST /generatePdf":             Authenticated,
	"GET /viewOfferLetter":          Authenticated,
	"GET /viewOfferLetter/:id":      Authenticated,
	"GET /downloadOfferLetter":      Authenticated,
	"GET /downloadOfferLetter/:id":  Authenticated,
	"DELETE /removeOfferLetter/:id": Authenticated,
	"GET /api/myOfferLetters":       Authenticated,
	"POST /emailPdf":                AdminOnly,
	"GET /api/users":                AdminOnly,
	"POST /api/users":               AdminOnly,
	"DELETE /api/users/:id":         AdminOnly,
	"POST /recreateAdmin":           AdminOnly,
}

// SetupRoutes registers every route under the access policy above.
func SetupRoutes(
	router *gin.Engine,
	auth *controllers.AuthController,
	users *controllers.UserController,
	reset *controllers.PasswordResetController,
	letters *controllers.OfferLetterController,
) {
	// Public surface.
	router.POST("/auth/login", auth.Login)
	router.POST("/register", users.Register)
	router.POST("/forgot-password", reset.ForgotPassword)
	router.GET("/reset-password", reset.ValidateResetToken)
	router.POST("/reset-password", reset.ResetPassword)
	router.GET("/api/auth/me", auth.Me)

	// Any authenticated role.
	authed := router.Group("/", auth.AuthMiddleware(), controllers.RequireRole(models.RoleAdmin, models.RoleUser))
	{
		authed.POST("/auth/logout", auth.Logout)
		authed.GET("/api/profile", users.Profile)
		authed.PUT("/api/profile/password", users.UpdatePassword)
		authed.POST("/generatePdf", letters.Generate)
		authed.GET("/viewOfferLetter", letters.ViewLatest)
		authed.GET("/viewOfferLetter/:id", letters.ViewByID)
		authed.GET("/downloadOfferLetter", letters.DownloadLatest)
		authed.GET("/downloadOfferLetter/:id", letters.DownloadByID)
		authed.DELETE("/removeOfferLetter/:id", letters.Remove)
		authed.GET("/api/myOfferLetters", letters.Mine)
	}

	// Admin surface.
	admin := router.Group("/", auth.AuthMiddleware(), controllers.RequireRole(models.RoleAdmin))
	{
		admin.POST("/emailPdf", letters.Email)
		admin.GET("/api/users", users.ListUsers)
		admin.POST("/api/users", users.CreateUser)
		admin.DELETE("/api/users/:id", users.DeleteUser)
		admin.POST("/recreateAdmin", users.RecreateAdmin)
	}
}
