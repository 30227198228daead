// Package seed creates the default operator account on startup so a fresh
// deployment is usable without a manual registration step.
package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/kayra/examseat/internal/app/models"
	appRepos "github.com/kayra/examseat/internal/app/repositories"
	"github.com/kayra/examseat/internal/pkg/auth"
)

// Default admin credentials. Deployments override the password through the
// ADMIN_PASSWORD environment variable, read by the caller.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin12345"
)

// CreateDefaultData creates the default admin account if no such user exists.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, password string, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(dbPool)

	if _, err := userRepo.GetByUsername(ctx, DefaultAdminUsername); err == nil {
		return nil
	} else if !errors.Is(err, appRepos.ErrUserNotFound) {
		return err
	}

	if password == "" {
		password = DefaultAdminPassword
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &appModels.User{
		Username:    DefaultAdminUsername,
		Password:    hash,
		DisplayName: "Administrator",
		Role:        appModels.RoleAdmin,
	}

	if err := userRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, appRepos.ErrUsernameExists) {
			// Another instance created it between our lookup and insert.
			return nil
		}
		return err
	}

	lgr.Info().Str("username", DefaultAdminUsername).Msg("Default admin account created")
	return nil
}
