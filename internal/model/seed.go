package model

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"shopadmin/internal/auth"
	"shopadmin/internal/config"
	"shopadmin/internal/entity"
)

// SeedDefaultAdmin ensures a bootstrap admin account exists when ADMIN_EMAIL and
// ADMIN_PASSWORD are configured. An existing account with that email is promoted
// to admin and reactivated instead of being recreated.
func SeedDefaultAdmin(ctx context.Context, repo Repository, cfg config.Config) error {
	if repo == nil {
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	password := cfg.AdminPassword
	if email == "" || password == "" {
		return nil
	}

	existing, err := repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return promoteExistingAdmin(ctx, repo, existing)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return createSeedAdmin(ctx, repo, email, password)
	default:
		return err
	}
}

func createSeedAdmin(ctx context.Context, repo Repository, email, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	username := email
	if at := strings.Index(email, "@"); at > 0 {
		username = email[:at]
	}

	admin := &entity.DbUser{
		Username:      username,
		Email:         email,
		PasswordHash:  hash,
		Role:          entity.UserRoleAdmin,
		IsActive:      true,
		EmailVerified: true,
	}
	return repo.CreateUser(ctx, admin)
}

func promoteExistingAdmin(ctx context.Context, repo Repository, existing *entity.DbUser) error {
	if existing == nil {
		return nil
	}

	updates := entity.UserUpdates{}
	if existing.Role != entity.UserRoleAdmin {
		role := entity.UserRoleAdmin
		updates.Role = &role
	}
	if !existing.IsActive {
		active := true
		updates.IsActive = &active
	}
	if updates.IsEmpty() {
		return nil
	}
	return repo.UpdateUser(ctx, existing.ID, updates)
}
