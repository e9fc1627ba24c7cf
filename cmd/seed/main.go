package main

import (
	"context"
	"errors"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/suraksha-api/config"
	"github.com/oksasatya/suraksha-api/internal/domain/entity"
	repo "github.com/oksasatya/suraksha-api/internal/domain/repository"
	pginfra "github.com/oksasatya/suraksha-api/internal/infrastructure/postgres"
	"github.com/oksasatya/suraksha-api/pkg/helpers"
)

// seeds a verified demo account; rerunning is a no-op
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.AppName+"-seed", 2, 1, time.Minute)
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	users := pginfra.NewUserRepository(pool)

	email := "demo@suraksha.dev"
	password := "password123"

	existing, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		logger.WithField("id", existing.ID).Info("demo user already seeded")
		return
	case !errors.Is(err, repo.ErrNotFound):
		logger.Fatalf("failed to look up demo user: %v", err)
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		logger.Fatalf("failed to hash password: %v", err)
	}
	u := &entity.User{
		Username:  "demouser",
		Email:     email,
		Password:  hash,
		Firstname: "Demo",
		Lastname:  "User",
	}
	if err := users.Create(ctx, u); err != nil {
		logger.Fatalf("failed to seed user: %v", err)
	}
	if err := users.MarkEmailVerified(ctx, u.ID, time.Now()); err != nil {
		logger.Fatalf("failed to verify demo user: %v", err)
	}
	logger.Infof("seeded user: id=%s email=%s username=%s password=%s", u.ID, email, u.Username, password)
}
