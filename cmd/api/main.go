package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"jobvision/api/internal/cache"
	"jobvision/api/internal/config"
	"jobvision/api/internal/database"
	"jobvision/api/internal/handlers"
	"jobvision/api/internal/log"
	"jobvision/api/internal/mailer"
	"jobvision/api/internal/repository"
	"jobvision/api/internal/security"
	"jobvision/api/internal/server"
	"jobvision/api/internal/service"
)

func main() {
	// A local .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level)

	ctx := context.Background()

	var (
		dbPool *pgxpool.Pool
		users  service.UserStore
	)
	if cfg.Postgres.DSN == "" {
		// config.Validate refuses this in production.
		logger.Warn().Msg("postgres dsn empty, using in-memory user store; data is lost on restart")
		users = repository.NewMemoryUserRepository()
	} else {
		if cfg.Postgres.AutoMigrate {
			if err := database.Migrate(ctx, cfg.Postgres.DSN); err != nil {
				logger.Fatal().Err(err).Msg("failed to migrate postgres")
			}
		}

		dbPool, err = database.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect postgres")
		}
		users = repository.NewUserRepository(dbPool)
	}

	var revocations service.RevocationStore
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	switch {
	case errors.Is(err, cache.ErrDisabled):
		logger.Info().Msg("redis disabled, logout clears cookies only")
	case err != nil:
		logger.Fatal().Err(err).Msg("failed to connect redis")
	default:
		revocations = repository.NewRevocationRepository(redisClient)
	}

	hasher, err := security.NewPasswordHasher(cfg.Security.PasswordAlgorithm, cfg.Security.BcryptCost)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init password hasher")
	}
	tokens, err := security.NewTokenIssuer(cfg.Security)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init token issuer")
	}

	notifier := mailer.NewNotifier(mailer.NewSMTPSender(cfg.Mail), cfg.FrontendURL, logger)
	authService := service.NewAuthService(users, notifier, revocations, hasher, tokens, cfg.Security, logger)

	handlerSet := handlers.NewHandlerSet(logger, cfg, authService, dbPool, redisClient)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	if db != nil {
		db.Close()
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("server exited cleanly")
}
