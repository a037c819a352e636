package entities

import (
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
)

// Account represents a registered user of the blog
type Account struct {
	ID              uint64    `json:"id"`
	Email           string    `json:"email"`
	FirstName       string    `json:"firstName,omitempty"`
	LastName        string    `json:"lastName,omitempty"`
	PasswordHash    string    `json:"-"`
	IsActive        bool      `json:"isActive"`
	IsEmailVerified bool      `json:"isEmailVerified"`
	IsStaff         bool      `json:"isStaff"`
	DateJoined      time.Time `json:"dateJoined"`
	LastLogin       null.Time `json:"lastLogin"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// NormalizeEmail lower-cases and trims an email address for storage and lookup
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FullName joins first and last name
func (a *Account) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// Activated reports whether the account has completed activation
func (a *Account) Activated() bool {
	return a.IsActive && a.IsEmailVerified
}

// RegisterInput represents input for creating an account
type RegisterInput struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
}

// LoginInput represents input for obtaining a token pair
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// EmailInput carries a single email address
type EmailInput struct {
	Email string `json:"email" binding:"required,email"`
}

// VerifyOTPInput represents an OTP submission
type VerifyOTPInput struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6,numeric"`
}

// MinPasswordLength applies to every password an account can set
const MinPasswordLength = 8

// ResetPasswordInput represents the new password pair. Equality and
// MinPasswordLength are checked by the usecase so a mismatch maps to its own
// error before the length is judged.
type ResetPasswordInput struct {
	Password        string `json:"password" binding:"max=128"`
	PasswordConfirm string `json:"password_confirm" binding:"max=128"`
}

// RefreshInput carries a refresh token
type RefreshInput struct {
	Refresh string `json:"refresh" binding:"required"`
}

// AuthResponse represents a token pair response
type AuthResponse struct {
	Access  string   `json:"access"`
	Refresh string   `json:"refresh"`
	Account *Account `json:"account"`
}

// RefreshResponse represents a refreshed access token
type RefreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}
