package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/caretrackhq/backend/internal/auth"
	"github.com/caretrackhq/backend/internal/config"
	"github.com/caretrackhq/backend/internal/db"
	internalhttp "github.com/caretrackhq/backend/internal/http"
	"github.com/caretrackhq/backend/internal/notify"
	"github.com/caretrackhq/backend/internal/repo"
	"github.com/caretrackhq/backend/internal/service"
	"github.com/caretrackhq/backend/internal/staff"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api exited with error")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis parse: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	staffRepo := staff.NewRepository(pool)
	sessions := repo.NewQueries(pool)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL)
	authService := service.NewAuthService(staffRepo, sessions, redisClient, jwtManager, cfg.JWTRefreshTTL)

	var messenger notify.Messenger = notify.NoopMessenger{}
	if cfg.FCMCredentialsFile != "" {
		messenger, err = notify.NewFCMMessenger(ctx, cfg.FCMCredentialsFile)
		if err != nil {
			return fmt.Errorf("fcm: %w", err)
		}
	} else {
		log.Warn().Msg("FCM credentials not configured, push delivery disabled")
	}

	handler, err := internalhttp.NewRouter(cfg, pool, redisClient, authService, messenger)
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("API listening on :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down...")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
