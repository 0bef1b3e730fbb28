package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// seed creates the default accounts in Postgres. Existing emails are skipped,
// so it is safe to run repeatedly.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	if !pg.Enabled() {
		logger.Fatal("POSTGRES_DSN is required for seeding")
	}

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	seeder := service.NewBootstrapper(repository.NewUserRepository(pg.Pool), cfg.Auth.BcryptCost, logger)
	created, err := seeder.SeedAccounts(ctx, service.DefaultSeedAccounts, cfg.Seed.DefaultPassword)
	if err != nil {
		logger.Fatal("failed to seed accounts", zap.Error(err))
	}
	logger.Info("seed complete", zap.Int("created", created), zap.Int("total", len(service.DefaultSeedAccounts)))
}
