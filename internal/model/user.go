package model

import (
	"regexp"
	"strings"
	"time"

	"github.com/devsaround/blog-api/internal/apperr"
)

// Roles a user can hold. Role is stored and serialized but no route is
// role-gated.
const (
	RoleAuthor = "author"
	RoleReader = "reader"
)

// User represents a user row. PasswordHash never appears in any outward
// representation; only UserResponse is serialized.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Response returns the outward-facing representation of the user.
func (u *User) Response() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// UserResponse is the user shape safe for API responses.
type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// SignupRequest is the payload for POST /auth/signup.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse pairs a session token with the authenticated user.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Normalize trims fields and lowercases the email.
func (r *SignupRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Role = strings.TrimSpace(r.Role)
}

// Validate checks the signup constraints and returns a validation error
// listing every failing field.
func (r *SignupRequest) Validate() error {
	var fields []apperr.FieldError

	if n := len([]rune(r.Name)); n < 2 || n > 50 {
		fields = append(fields, apperr.FieldError{Field: "name", Message: "name must be between 2 and 50 characters"})
	}
	if !emailPattern.MatchString(r.Email) {
		fields = append(fields, apperr.FieldError{Field: "email", Message: "please provide a valid email"})
	}
	if msg := checkPassword(r.Password); msg != "" {
		fields = append(fields, apperr.FieldError{Field: "password", Message: msg})
	}
	if r.Role != "" && r.Role != RoleAuthor && r.Role != RoleReader {
		fields = append(fields, apperr.FieldError{Field: "role", Message: "role must be author or reader"})
	}

	if len(fields) > 0 {
		return apperr.Validation("validation failed", fields...)
	}
	return nil
}

// Normalize lowercases and trims the login email.
func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// Validate checks the login payload shape.
func (r *LoginRequest) Validate() error {
	var fields []apperr.FieldError

	if !emailPattern.MatchString(r.Email) {
		fields = append(fields, apperr.FieldError{Field: "email", Message: "please provide a valid email"})
	}
	if r.Password == "" {
		fields = append(fields, apperr.FieldError{Field: "password", Message: "password is required"})
	}

	if len(fields) > 0 {
		return apperr.Validation("validation failed", fields...)
	}
	return nil
}

const passwordSymbols = "@$!%*?&"

// checkPassword enforces the complexity policy: at least 8 characters with
// one uppercase letter, one lowercase letter, one digit and one symbol from
// the allowed set.
func checkPassword(pw string) string {
	if len(pw) < 8 || len(pw) > 100 {
		return "password must be between 8 and 100 characters"
	}

	var upper, lower, digit, symbol bool
	for _, c := range pw {
		switch {
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= '0' && c <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, c):
			symbol = true
		}
	}
	if !upper || !lower || !digit || !symbol {
		return "password must contain at least one uppercase letter, one lowercase letter, one number, and one special character"
	}
	return ""
}
