package services

import (
	"context"
	"errors"
	"strings"

	"github.com/kayra/examseat/internal/app/models"
	"github.com/kayra/examseat/internal/app/models/dto"
	"github.com/kayra/examseat/internal/app/repositories"
	"github.com/kayra/examseat/internal/pkg/apperrors"
	"github.com/kayra/examseat/internal/pkg/auth"
)

// userStore is the persistence surface AuthService needs. It is satisfied by
// *repositories.UserRepository.
type userStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// AuthService handles operator account registration and login
type AuthService struct {
	userRepo   userStore
	jwtService *auth.JWTService
}

// NewAuthService creates a new auth service instance
func NewAuthService(userRepo userStore, jwtService *auth.JWTService) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
	}
}

// Register creates a new operator account with a teacher role
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, apperrors.NewValidationError("username is required")
	}
	if len(req.Password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.NewStorageError("hashing password", err)
	}

	user := &models.User{
		Username:    username,
		Password:    hash,
		DisplayName: strings.TrimSpace(req.DisplayName),
		Role:        models.RoleTeacher,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUsernameExists) {
			return nil, apperrors.NewCustomError(apperrors.ErrUsernameExists,
				"username is already taken")
		}
		return nil, apperrors.NewStorageError("creating user", err)
	}

	return user, nil
}

// Login verifies credentials and issues an access token
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrInvalidCredentials,
				"invalid username or password")
		}
		return nil, apperrors.NewStorageError("retrieving user", err)
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidCredentials,
			"invalid username or password")
	}

	token, expiresIn, err := s.jwtService.GenerateToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, apperrors.NewStorageError("generating token", err)
	}

	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
	}, nil
}
