// Package auth registers users and issues and verifies bearer tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"salesreport/internal/core"
)

const (
	MinCredentialLength = 5
	MaxCredentialLength = 15

	DefaultTokenTTL = 24 * time.Hour
)

// UserStore persists user accounts.
type UserStore interface {
	// CreateUser returns core.ErrDuplicateUser when the username is taken.
	CreateUser(ctx context.Context, u core.User) (core.User, error)
	// GetUserByUsername returns core.ErrUserNotFound for unknown users.
	GetUserByUsername(ctx context.Context, username string) (core.User, error)
}

// Claims is the token payload. Subject holds the username.
type Claims struct {
	jwt.RegisteredClaims
}

type Service struct {
	users  UserStore
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source used for issuing and checking tokens.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithBcryptCost sets the hashing cost; tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

func NewService(users UserStore, secret string, ttl time.Duration, opts ...Option) (*Service, error) {
	if users == nil {
		return nil, errors.New("user store is required")
	}
	if secret == "" {
		return nil, errors.New("signing secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	s := &Service{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Signup creates an account and returns the confirmation message.
func (s *Service) Signup(ctx context.Context, username, password string) (string, error) {
	if err := checkLength("username", username); err != nil {
		return "", err
	}
	if err := checkLength("password", password); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.CreateUser(ctx, core.User{Username: username, PasswordHash: string(hash)})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateUser) {
			return "", err
		}
		return "", fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User signed up", "username", u.Username)
	return fmt.Sprintf("User `%s` created successfully", u.Username), nil
}

// Login checks the credentials and returns a signed access token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return "", core.ErrInvalidCredentials
		}
		return "", fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		slog.WarnContext(ctx, "Login rejected", "username", username)
		return "", core.ErrInvalidCredentials
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses an access token. Any failure maps to core.ErrInvalidToken.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", core.ErrInvalidToken)
	}
	return claims, nil
}

func checkLength(field, value string) error {
	n := utf8.RuneCountInString(value)
	if n < MinCredentialLength || n > MaxCredentialLength {
		return &core.ValidationError{
			Field:  field,
			Reason: fmt.Sprintf("must be between %d and %d characters", MinCredentialLength, MaxCredentialLength),
		}
	}
	return nil
}
