// @title                       User Accounts API
// @version                     1.0
// @description                 Registration, login, email verification and user administration.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/99minutos/user-accounts/internal/api"
	"github.com/99minutos/user-accounts/internal/api/handler"
	"github.com/99minutos/user-accounts/internal/core/service"
	"github.com/99minutos/user-accounts/internal/infrastructure/auth"
	"github.com/99minutos/user-accounts/internal/infrastructure/db"
	"github.com/99minutos/user-accounts/internal/infrastructure/db/redis"
	"github.com/99minutos/user-accounts/internal/infrastructure/mail"
	"github.com/99minutos/user-accounts/internal/infrastructure/queue"
	"github.com/99minutos/user-accounts/internal/infrastructure/templates"
	"github.com/99minutos/user-accounts/internal/pkg/config"
	"github.com/99minutos/user-accounts/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "user-accounts",
	})
	log.Info().Str("env", cfg.Env).Str("store", cfg.StoreDriver).Msg("starting application")

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startCancel()

	// --- Storage ---
	store, err := db.Open(startCtx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open user store")
	}

	redisClient, err := redis.Connect(startCtx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// --- Email ---
	renderer, err := templates.New(cfg.TemplatesDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load email templates")
	}
	log.Info().Str("dir", renderer.Dir()).Msg("email templates ready")
	sender := mail.NewSender(mail.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		UseTLS:   cfg.SMTP.UseTLS,
		Timeout:  cfg.SMTP.Timeout,
	}, log)
	emails := service.NewEmailService(renderer, sender, cfg.ServerBaseURL, log)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	outbox := queue.NewOutbox(cfg.MailWorkers, emails, log)
	outbox.Start(workerCtx)

	// --- Services ---
	issuer := auth.NewIssuer(cfg.Auth.JWTSecret)
	users := service.NewUserService(
		store.Users,
		emails,
		outbox,
		redis.NewLoginAttempts(redisClient, cfg.Auth.LockoutWindow),
		issuer,
		service.UserServiceConfig{
			TokenTTL:         cfg.AccessTokenTTL(),
			MaxLoginAttempts: cfg.Auth.MaxLoginAttempts,
			BaseURL:          cfg.ServerBaseURL,
		},
		log,
	)

	router := api.NewRouter(api.Dependencies{
		Users:     users,
		Verifier:  issuer,
		BaseURL:   cfg.ServerBaseURL,
		LoginRate: cfg.Auth.LoginRatePerSecond,
		Ready: map[string]handler.PingFunc{
			store.Driver: store.Ping,
			"redis": func(ctx context.Context) error {
				return redis.Ping(ctx, redisClient)
			},
		},
		Log: log,
	})

	addr := net.JoinHostPort("", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("address", addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	// Queued mail is dropped once the workers stop.
	stopWorkers()
	outbox.Wait()

	if err := store.Close(ctx); err != nil {
		log.Error().Err(err).Msg("failed to close user store")
	}
	if err := redisClient.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close redis client")
	}

	log.Info().Msg("server exited properly")
}
