package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"salesreport/internal/core"
)

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	opts = append([]Option{WithBcryptCost(bcrypt.MinCost)}, opts...)
	s, err := NewService(NewMemoryUserStore(), "test-secret", time.Hour, opts...)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return s
}

func TestNewService(t *testing.T) {
	if _, err := NewService(nil, "s", time.Hour); err == nil {
		t.Error("expected error for nil store")
	}
	if _, err := NewService(NewMemoryUserStore(), "", time.Hour); err == nil {
		t.Error("expected error for empty secret")
	}
	s, err := NewService(NewMemoryUserStore(), "s", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ttl != DefaultTokenTTL {
		t.Errorf("ttl = %v, want %v", s.ttl, DefaultTokenTTL)
	}
}

func TestSignup(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"valid", "alice", "secret1", nil},
		{"username too short", "al", "secret1", core.ErrValidation},
		{"username too long", strings.Repeat("a", 16), "secret1", core.ErrValidation},
		{"password too short", "bobby", "1234", core.ErrValidation},
		{"password too long", "bobby", strings.Repeat("p", 16), core.ErrValidation},
		{"boundary lengths", "abcde", strings.Repeat("p", 15), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService(t)
			msg, err := s.Signup(ctx, tt.username, tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Signup() error = %v, want %v", err, tt.wantErr)
				}
				if !core.IsUserInput(err) {
					t.Errorf("expected user input error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Signup() unexpected error: %v", err)
			}
			want := "User `" + tt.username + "` created successfully"
			if msg != want {
				t.Errorf("message = %q, want %q", msg, want)
			}
		})
	}
}

func TestSignupDuplicate(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	if _, err := s.Signup(ctx, "alice", "secret1"); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	_, err := s.Signup(ctx, "alice", "other12")
	if !errors.Is(err, core.ErrDuplicateUser) {
		t.Fatalf("second signup error = %v, want ErrDuplicateUser", err)
	}
}

func TestSignupStoresHash(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryUserStore()
	s, err := NewService(store, "k", time.Hour, WithBcryptCost(bcrypt.MinCost))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Signup(ctx, "alice", "secret1"); err != nil {
		t.Fatal(err)
	}
	u, err := store.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if u.PasswordHash == "secret1" {
		t.Error("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestLoginAndVerify(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	if _, err := s.Signup(ctx, "alice", "secret1"); err != nil {
		t.Fatal(err)
	}

	token, err := s.Login(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	claims, err := s.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.Subject != "alice" {
		t.Errorf("subject = %q, want alice", claims.Subject)
	}
	if claims.ID == "" {
		t.Error("expected token id")
	}

	other, err := s.Login(ctx, "alice", "secret1")
	if err != nil {
		t.Fatal(err)
	}
	if other == token {
		t.Error("expected distinct tokens per login")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	if _, err := s.Signup(ctx, "alice", "secret1"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "alice", "wrong12"},
		{"unknown user", "nobody", "secret1"},
		{"empty password", "alice", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Login(ctx, tt.username, tt.password)
			if !errors.Is(err, core.ErrInvalidCredentials) {
				t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestVerifyRejects(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s := newTestService(t, WithClock(clock))
	if _, err := s.Signup(ctx, "alice", "secret1"); err != nil {
		t.Fatal(err)
	}
	token, err := s.Login(ctx, "alice", "secret1")
	if err != nil {
		t.Fatal(err)
	}

	t.Run("expired", func(t *testing.T) {
		later := newTestService(t, WithClock(func() time.Time { return now.Add(2 * time.Hour) }))
		later.secret = s.secret
		if _, err := later.Verify(token); !errors.Is(err, core.ErrInvalidToken) {
			t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewService(NewMemoryUserStore(), "other-secret", time.Hour, WithClock(clock))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := other.Verify(token); !errors.Is(err, core.ErrInvalidToken) {
			t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := s.Verify("not-a-token"); !errors.Is(err, core.ErrInvalidToken) {
			t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		})
		str, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := s.Verify(str); !errors.Is(err, core.ErrInvalidToken) {
			t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("missing expiry", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "alice"})
		str, err := tok.SignedString(s.secret)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := s.Verify(str); !errors.Is(err, core.ErrInvalidToken) {
			t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
		}
	})
}
