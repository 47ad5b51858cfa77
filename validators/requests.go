package validators

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/acentrik/hr-portal/models"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
}

type ValidationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Value string `json:"value"`
}

type ValidationResponse struct {
	Errors []ValidationError `json:"errors"`
}

func Validate(data interface{}) []ValidationError {
	var validationErrors []ValidationError

	err := validate.Struct(data)
	if err != nil {
		if errors, ok := err.(validator.ValidationErrors); ok {
			for _, e := range errors {
				validationErrors = append(validationErrors, ValidationError{
					Field: e.Field(),
					Tag:   e.Tag(),
					Value: e.Param(),
				})
			}
		}
	}

	return validationErrors
}

// bind unmarshals and validates the request body, writing the 400 response
// itself on failure.
func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request payload",
		})
		return false
	}
	if errs := Validate(req); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, ValidationResponse{Errors: errs})
		return false
	}
	return true
}

type LoginRequest struct {
	Username string `json:"username" validate:"required" binding:"required"`
	Password string `json:"password" validate:"required" binding:"required"`
}

func ValidateLoginRequest(c *gin.Context) (*LoginRequest, bool) {
	var req LoginRequest
	if !bind(c, &req) {
		return nil, false
	}
	return &req, true
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100" binding:"required,min=3,max=100"`
	Password string `json:"password" validate:"required" binding:"required"`
}

func ValidateRegisterRequest(c *gin.Context) (*RegisterRequest, bool) {
	var req RegisterRequest
	if !bind(c, &req) {
		return nil, false
	}
	return &req, true
}

type ForgotPasswordRequest struct {
	Username string `json:"username" validate:"required" binding:"required"`
}

func ValidateForgotPasswordRequest(c *gin.Context) (*ForgotPasswordRequest, bool) {
	var req ForgotPasswordRequest
	if !bind(c, &req) {
		return nil, false
	}
	return &req, true
}

type ResetPasswordRequest struct {
	Token           string `json:"token" validate:"required" binding:"required"`
	Password        string `json:"password" validate:"required" binding:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required" binding:"required"`
}

func ValidateResetPasswordRequest(c *gin.Context) (*ResetPasswordRequest, bool) {
	var req ResetPasswordRequest
	if !bind(c, &req) {
		return nil, false
	}
	return &req, true
}

type UpdatePasswordRequest struct {
	NewPassword     string `json:"new_password" validate:"required" binding:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required" binding:"required"`
}

func ValidateUpdatePasswordRequest(c *gin.Context) (*UpdatePasswordRequest, bool) {
	var req UpdatePasswordRequest
	if !bind(c, &req) {
		return nil, false
	}
	return &req, true
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100" binding:"required,min=3,max=100"`
	Password string `json:"password" validate:"required" binding:"required"`
}

func ValidateCreateUserRequest(c *gin.Context) (*CreateUserRequest, bool) {
	var req CreateUserRequest
	if !bind(c, &req) {
		return nil, false
	}
	return &req, true
}

// OfferFormRequest is the offer letter form. JoiningDate arrives as
// YYYY-MM-DD.
type OfferFormRequest struct {
	FirstName   string `json:"first_name" validate:"required" binding:"required"`
	LastName    string `json:"last_name" validate:"required" binding:"required"`
	Email       string `json:"email" validate:"required,email" binding:"required,email"`
	Domain      string `json:"domain"`
	Manager     string `json:"manager" validate:"required" binding:"required"`
	JoiningDate string `json:"joining_date" validate:"required" binding:"required"`
	Role        string `json:"role" validate:"required" binding:"required"`
}

func ValidateOfferFormRequest(c *gin.Context) (*models.OfferForm, bool) {
	var req OfferFormRequest
	if !bind(c, &req) {
		return nil, false
	}

	joining, err := time.Parse("2006-01-02", req.JoiningDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "joining_date must be formatted as YYYY-MM-DD",
		})
		return nil, false
	}

	return &models.OfferForm{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Domain:      req.Domain,
		Manager:     req.Manager,
		JoiningDate: joining,
		Role:        req.Role,
	}, true
}
