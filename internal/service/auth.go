package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/vigilance-driver/vigilance-go/internal/crypto"
	"github.com/vigilance-driver/vigilance-go/internal/model"
	"github.com/vigilance-driver/vigilance-go/internal/repository"
)

// MinPasswordLength is the shortest password accepted at signup, in characters.
const MinPasswordLength = 6

var (
	ErrInvalidInput       = errors.New("invalid request")
	ErrEmailRequired      = fmt.Errorf("%w: email is required", ErrInvalidInput)
	ErrPasswordRequired   = fmt.Errorf("%w: password is required", ErrInvalidInput)
	ErrPasswordTooShort   = fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, MinPasswordLength)
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
)

// UserStore is the credential store used by AuthService.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID, email string) (string, error)
}

// dummyHash is verified against when the email is unknown so that login
// takes the same time whether or not the account exists.
var dummyHash = sync.OnceValues(func() (string, error) {
	return crypto.HashPassword("vigilance-driver-dummy-password")
})

// AuthService handles signup and login.
type AuthService struct {
	users  UserStore
	tokens TokenIssuer
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, tokens TokenIssuer) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
	}
}

// Signup creates a new user account and returns an auth token.
func (s *AuthService) Signup(ctx context.Context, req model.SignupRequest) (model.AuthResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return model.AuthResponse{}, ErrEmailRequired
	}
	if strings.TrimSpace(req.Password) == "" {
		return model.AuthResponse{}, ErrPasswordRequired
	}
	if utf8.RuneCountInString(req.Password) < MinPasswordLength {
		return model.AuthResponse{}, ErrPasswordTooShort
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.AuthResponse{}, ErrEmailTaken
		}
		return model.AuthResponse{}, err
	}

	return s.issue(user)
}

// Login authenticates a user and returns an auth token.
// Unknown emails and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return model.AuthResponse{}, ErrEmailRequired
	}
	if strings.TrimSpace(req.Password) == "" {
		return model.AuthResponse{}, ErrPasswordRequired
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			if hash, herr := dummyHash(); herr == nil {
				_, _ = crypto.VerifyPassword(req.Password, hash)
			}
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}

	match, err := crypto.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("verify password for user %s: %w", user.ID, err)
	}
	if !match {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *AuthService) issue(user *model.User) (model.AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("issue token: %w", err)
	}

	return model.AuthResponse{
		Token: token,
		Email: user.Email,
	}, nil
}
