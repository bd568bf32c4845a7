package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/ordermgmt/services/account/domain/models"
)

// RegisterRequest is the request body for POST /api/register.
type RegisterRequest struct {
	Username   string `json:"username"    validate:"required,max=150"     example:"alice"`
	Email      string `json:"email"       validate:"required,email"       example:"alice@example.com"`
	Password   string `json:"password"    validate:"required,min=8,max=72" example:"correct horse"`
	FirstName  string `json:"first_name"  validate:"max=150"              example:"Alice"`
	LastName   string `json:"last_name"   validate:"max=150"              example:"Liddell"`
	MiddleName string `json:"middle_name" validate:"max=150"              example:""`
	Age        *int   `json:"age"         validate:"omitempty,gte=0"      example:"31"`
} // @name RegisterRequest

// AccountResponse is the representation of an account. It never carries the
// password hash or the verification token.
type AccountResponse struct {
	ID            uuid.UUID `json:"id"             example:"123e4567-e89b-12d3-a456-426614174000"`
	Username      string    `json:"username"       example:"alice"`
	Email         string    `json:"email"          example:"alice@example.com"`
	FirstName     string    `json:"first_name"     example:"Alice"`
	LastName      string    `json:"last_name"      example:"Liddell"`
	MiddleName    string    `json:"middle_name"    example:""`
	Age           *int      `json:"age,omitempty"  example:"31"`
	EmailVerified bool      `json:"email_verified" example:"false"`
	IsActive      bool      `json:"is_active"      example:"true"`
	DateJoined    time.Time `json:"date_joined"    example:"2024-01-15T10:30:00Z"`
} // @name AccountResponse

// VerifyEmailResponse is returned after a successful verification.
type VerifyEmailResponse struct {
	Message string          `json:"message" example:"email verified"`
	User    AccountResponse `json:"user"`
} // @name VerifyEmailResponse

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error string `json:"error" example:"username already taken"`
} // @name AccountErrorResponse

func toAccountResponse(a *models.Account) AccountResponse {
	return AccountResponse{
		ID:            a.User.ID,
		Username:      a.User.Username,
		Email:         a.User.Email,
		FirstName:     a.Profile.FirstName,
		LastName:      a.Profile.LastName,
		MiddleName:    a.Profile.MiddleName,
		Age:           a.Profile.Age,
		EmailVerified: a.Profile.EmailVerified,
		IsActive:      a.User.IsActive,
		DateJoined:    a.User.DateJoined,
	}
}
