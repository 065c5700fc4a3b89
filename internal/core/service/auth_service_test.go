package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/sandwichlab/sandwich-api/internal/core/domain"
)

const testSecret = "test-secret"

func TestAuthService_Register_Success(t *testing.T) {
	users := newStubUserRepo()
	svc := NewAuthService(users, testSecret, time.Hour)

	user, err := svc.Register(context.Background(), "Alice", "Alice@Example.com", "supersecret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID == "" {
		t.Error("expected a generated id")
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email must be lowercased, got %q", user.Email)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("supersecret")) != nil {
		t.Error("stored hash must verify against the password")
	}
}

func TestAuthService_Register_ShortPassword(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), testSecret, time.Hour)

	_, err := svc.Register(context.Background(), "Alice", "alice@example.com", "short")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	users := newStubUserRepo()
	users.add(&domain.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "x"})
	svc := NewAuthService(users, testSecret, time.Hour)

	_, err := svc.Register(context.Background(), "Other Alice", "alice@example.com", "supersecret")
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	users := newStubUserRepo()
	svc := NewAuthService(users, testSecret, time.Hour)
	registered, err := svc.Register(context.Background(), "Alice", "alice@example.com", "supersecret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	token, user, err := svc.Login(context.Background(), "alice@example.com", "supersecret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("user = %q, want %q", user.ID, registered.ID)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token must parse and validate: %v", err)
	}
	if claims["sub"] != registered.ID {
		t.Errorf("sub = %v, want %q", claims["sub"], registered.ID)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	users := newStubUserRepo()
	svc := NewAuthService(users, testSecret, time.Hour)
	if _, err := svc.Register(context.Background(), "Alice", "alice@example.com", "supersecret"); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, _, err := svc.Login(context.Background(), "alice@example.com", "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownEmailNotDistinguished(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), testSecret, time.Hour)

	_, _, err := svc.Login(context.Background(), "nobody@example.com", "supersecret")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_AnonymousAccountCannotAuthenticate(t *testing.T) {
	users := newStubUserRepo()
	anon := users.add(&domain.User{Name: domain.AnonymousName, Email: "anonymous-x@sandwich.local"})
	svc := NewAuthService(users, testSecret, time.Hour)

	_, _, err := svc.Login(context.Background(), anon.Email, "")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
