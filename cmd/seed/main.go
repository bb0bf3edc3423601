package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-account-service/config"
	"github.com/oksasatya/go-account-service/internal/application"
	"github.com/oksasatya/go-account-service/internal/container"
	repo "github.com/oksasatya/go-account-service/internal/domain/repository"
	"github.com/oksasatya/go-account-service/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	if cfg.StoreDriver == config.StoreMemory {
		logger.Warn("STORE_DRIVER=memory: seeded data only lives for this process")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users, closeStore, err := container.OpenUserRepository(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open user store: %v", err)
	}
	defer closeStore()

	store := application.NewUserStore(users, helpers.NewBcryptHasher(cfg.BcryptCost))

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "password123"
	}
	in := application.NewUser{Name: "Juan", Email: "juan@example.com", Password: password}

	// SEED_RESET=true replaces an existing seed user, e.g. after rotating SEED_PASSWORD
	if os.Getenv("SEED_RESET") == "true" {
		if existing, err := store.FindByEmail(ctx, in.Email); err == nil {
			if err := store.Delete(ctx, existing.ID); err != nil && !errors.Is(err, repo.ErrNotFound) {
				logger.WithError(err).Fatal("failed to reset seed user")
			}
			logger.WithField("email", in.Email).Info("removed existing seed user")
		} else if !errors.Is(err, repo.ErrNotFound) {
			logger.WithError(err).Fatal("failed to look up seed user")
		}
	}

	u, err := store.Create(ctx, in)
	if errors.Is(err, repo.ErrDuplicateEmail) {
		logger.WithField("email", in.Email).Info("seed user already exists")
		return
	}
	if err != nil {
		logger.WithError(err).Fatal("failed to seed user")
	}
	logger.WithFields(logrus.Fields{"id": u.ID, "email": u.Email, "name": u.Name}).Info("seeded user")
}
