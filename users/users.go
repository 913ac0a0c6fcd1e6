package users

import (
	"strings"
	"time"

	errs "github.com/jrsteele09/evangelism-tracker/internal/errors"
	"github.com/jrsteele09/evangelism-tracker/internal/validation"
)

// RoleType is the user's role as assigned by the remote API
type RoleType string

const (
	RoleEvangelist RoleType = "evangelist" // Records outreach reports and the people met
	RoleAdmin      RoleType = "admin"      // Oversees all evangelists; never obtainable by self-registration
)

// User mirrors the server's view of the account. The cached copy may be stale.
type User struct {
	ID          string    `json:"id"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	PhoneNumber *string   `json:"phone_number"`
	Role        RoleType  `json:"role"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// FirstName is used for greetings on the dashboard
func (u *User) FirstName() string {
	if u == nil {
		return ""
	}
	name, _, _ := strings.Cut(strings.TrimSpace(u.FullName), " ")
	return name
}

// Credentials is the login form.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=6"`
}

// Registration holds the profile fields a visitor fills in to sign up.
type Registration struct {
	FullName    string  `json:"full_name" validate:"min=2"`
	Email       string  `json:"email" validate:"required,email"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

// RegisterRequest is the wire body for POST /api/auth/register
type RegisterRequest struct {
	Registration
	Role     RoleType `json:"role"`
	Password string   `json:"password" validate:"min=6"`
}

// PasswordReset is the reset form, carrying the token from the emailed link.
type PasswordReset struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"eqfield=Password"`
}

var messages = validation.Messages{
	"email":     "Invalid email address",
	"password":  "Password must be at least 6 characters",
	"full_name": "Full name must be at least 2 characters",
}

var resetMessages = validation.Messages{
	"token":            "Reset token is missing",
	"password":         "Password is required",
	"confirm_password": "Passwords don't match",
}

func (c Credentials) Validate() error {
	return validation.Struct(c, messages)
}

func (r RegisterRequest) Validate() error {
	return validation.Struct(r, messages)
}

// ValidateEmail checks a lone email address, as on the forgot-password form
func ValidateEmail(email string) error {
	return validation.Struct(struct {
		Email string `json:"email" validate:"required,email"`
	}{email}, messages)
}

// Validate only checks what the client can know for sure: a token is present
// and the confirmation matches. Password policy is left to the server.
func (p PasswordReset) Validate() error {
	if p.Password != p.ConfirmPassword {
		return &errs.ValidationError{Field: "confirm_password", Message: resetMessages["confirm_password"]}
	}
	return validation.Struct(p, resetMessages)
}
