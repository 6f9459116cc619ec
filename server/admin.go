package server

import (
	"context"
	"fmt"

	"vidly/auth"
	"vidly/config"
	"vidly/database"
	"vidly/models"
	"vidly/store"

	"github.com/go-playground/validator/v10"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// CreateAdmin registers an administrator directly against the configured
// database. No HTTP route can grant admin rights, so this is how the first
// one is made.
func CreateAdmin(ctx context.Context, cfg config.Config, req models.CreateUserRequest) (models.User, error) {
	if err := validator.New().Struct(req); err != nil {
		return models.User{}, fmt.Errorf("invalid admin details: %w", err)
	}

	dbConn := database.InitializeDatabase(cfg)
	defer dbConn.Close()

	svc := auth.NewService(store.NewUserStore(dbConn), auth.NewTokenIssuer(cfg.JWTPrivateKey, cfg.TokenTTL), cfg.BcryptCost)
	user, _, err := svc.Register(ctx, req, true)
	if err != nil {
		return models.User{}, err
	}

	logger.Info("Admin created", zap.String("user_id", user.ID), zap.String("email", user.Email))
	return user, nil
}
