package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/sharinglove/sharinglove-api/internal/repository"
	"github.com/sharinglove/sharinglove-api/internal/service"
	"github.com/sharinglove/sharinglove-api/pkg/config"
	"github.com/sharinglove/sharinglove-api/pkg/database"
	"github.com/sharinglove/sharinglove-api/pkg/logger"
)

// seed applies the schema and creates the admin account, resetting its
// password when it already exists.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if err := database.Migrate(ctx, db); err != nil {
		logr.Fatal("apply schema", zap.Error(err))
	}

	authSvc, err := service.NewAuthService(repository.NewAdminRepository(db), nil, logr, nil, service.AuthConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
		Issuer: cfg.JWT.Issuer,
	})
	if err != nil {
		logr.Fatal("init auth service", zap.Error(err))
	}

	admin, err := authSvc.SeedAdmin(ctx, cfg.Seed.AdminUsername, cfg.Seed.AdminPassword)
	if err != nil {
		logr.Fatal("seed admin", zap.Error(err))
	}
	logr.Info("admin seeded", zap.String("admin_id", admin.ID), zap.String("username", admin.Username))
}
