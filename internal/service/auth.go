package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/devsaround/blog-api/internal/apperr"
	"github.com/devsaround/blog-api/internal/model"
	"github.com/devsaround/blog-api/internal/repository"
	"github.com/devsaround/blog-api/internal/token"
)

// UserStore is the persistence surface the auth flow needs.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// AuthService orchestrates signup, login and identity lookup.
type AuthService struct {
	users  UserStore
	tokens *token.Service
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, tokens *token.Service) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Signup creates a user account and returns it with a session token.
// A duplicate email fails with a conflict; the store's unique index is the
// authority.
func (s *AuthService) Signup(ctx context.Context, req model.SignupRequest) (model.AuthResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return model.AuthResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return model.AuthResponse{}, err
	}

	role := req.Role
	if role == "" {
		role = model.RoleAuthor
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.AuthResponse{}, apperr.Conflict("user with this email already exists")
		}
		return model.AuthResponse{}, err
	}

	tok, err := s.tokens.Issue(user.ID)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{Token: tok, User: user.Response()}, nil
}

// Login authenticates a user and returns a session token. An unknown email
// and a wrong password produce the same error, so responses carry no account
// enumeration signal.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return model.AuthResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResponse{}, apperr.Unauthorized("invalid email or password")
		}
		return model.AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return model.AuthResponse{}, apperr.Unauthorized("invalid email or password")
	}

	tok, err := s.tokens.Issue(user.ID)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{Token: tok, User: user.Response()}, nil
}

// GetMe returns the user behind an authenticated subject id. A valid token
// whose subject no longer exists yields not-found.
func (s *AuthService) GetMe(ctx context.Context, userID int64) (model.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, apperr.NotFound("user not found")
		}
		return model.UserResponse{}, err
	}
	return user.Response(), nil
}
