package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kayra/examseat/internal/app/models/dto"
	"github.com/kayra/examseat/internal/pkg/apperrors"
	"github.com/kayra/examseat/internal/pkg/auth"
)

func newAuthFixture() *AuthService {
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "examseat-test",
	})
	return NewAuthService(newFakeUserStore(), jwtService)
}

func TestAuthRegisterAndLogin(t *testing.T) {
	svc := newAuthFixture()
	ctx := context.Background()

	user, err := svc.Register(ctx, dto.RegisterRequest{
		Username:    "wanglaoshi",
		Password:    "s3cret-pass",
		DisplayName: "王老师",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Password == "s3cret-pass" {
		t.Error("password stored in clear")
	}

	token, err := svc.Login(ctx, dto.LoginRequest{Username: "wanglaoshi", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token.AccessToken == "" || token.TokenType != "Bearer" {
		t.Errorf("token response: %+v", token)
	}
}

func TestAuthRegisterDuplicateUsername(t *testing.T) {
	svc := newAuthFixture()
	ctx := context.Background()

	req := dto.RegisterRequest{Username: "wanglaoshi", Password: "s3cret-pass"}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, req); !errors.Is(err, apperrors.ErrUsernameExists) {
		t.Fatalf("expected ErrUsernameExists, got %v", err)
	}
}

func TestAuthLoginFailures(t *testing.T) {
	svc := newAuthFixture()
	ctx := context.Background()

	if _, err := svc.Register(ctx, dto.RegisterRequest{Username: "wanglaoshi", Password: "s3cret-pass"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	tests := []struct {
		name string
		req  dto.LoginRequest
	}{
		{"unknown user", dto.LoginRequest{Username: "nobody", Password: "s3cret-pass"}},
		{"wrong password", dto.LoginRequest{Username: "wanglaoshi", Password: "wrong"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Login(ctx, tt.req); !errors.Is(err, apperrors.ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}
