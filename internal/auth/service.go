package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/vovakirdan/chatsync/internal/store"
)

var (
	// ErrInvalidCredentials is returned when email/password don't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when trying to sign up with a taken email.
	ErrUserExists = errors.New("email already exists")
	// ErrInvalidName is returned when the full name is empty or too long.
	ErrInvalidName = errors.New("invalid full name")
	// ErrInvalidEmail is returned when the email does not parse.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrInvalidPassword is returned when password doesn't meet constraints.
	ErrInvalidPassword = errors.New("password must be at least 6 characters")
)

// Service provides authentication operations.
type Service struct {
	store      store.UserStore
	jwtConfig  *JWTConfig
	bcryptCost int
}

// NewService creates a new authentication service. bcryptCost 0 means the
// library default.
func NewService(userStore store.UserStore, jwtConfig *JWTConfig, bcryptCost int) *Service {
	return &Service{
		store:      userStore,
		jwtConfig:  jwtConfig,
		bcryptCost: bcryptCost,
	}
}

// Signup creates a user with a hashed password and returns it with a session token.
func (s *Service) Signup(ctx context.Context, fullName, email, password string) (*store.User, string, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))
	if fullName == "" || len(fullName) > 64 {
		return nil, "", ErrInvalidName
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", ErrInvalidEmail
	}
	if len(password) < 6 {
		return nil, "", ErrInvalidPassword
	}

	hashedPassword, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", err
	}

	user, err := s.store.CreateUser(ctx, fullName, email, hashedPassword)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, "", ErrUserExists
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := GenerateToken(s.jwtConfig, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}
	return user, token, nil
}

// Login validates credentials and returns the user with a session token.
func (s *Service) Login(ctx context.Context, email, password string) (*store.User, string, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if errPwd := ComparePassword(user.PasswordHash, password); errPwd != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := GenerateToken(s.jwtConfig, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}
	return user, token, nil
}

// ValidateToken validates a session token and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return ValidateToken(s.jwtConfig, tokenString)
}

// TTL is the session lifetime, used for the cookie max age.
func (s *Service) TTL() int {
	return int(s.jwtConfig.TTL.Seconds())
}
