package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	"expense_backend/internal/app/di"
	"expense_backend/internal/config"
	authusecase "expense_backend/internal/feature/auth/usecase"
	"expense_backend/internal/platform/db"
	jwtmw "expense_backend/internal/platform/jwt"
	"expense_backend/internal/platform/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	defaultAddr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		defaultAddr = ":" + port
	}
	addr := pflag.String("addr", defaultAddr, "listen address")
	envFile := pflag.String("env-file", ".env", "dotenv file loaded before reading the environment")
	pflag.Parse()

	if err := run(*addr, *envFile); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(addr, envFile string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		return err
	}
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	gdb, err := db.OpenDB(cfg.DB, di.Models()...)
	if err != nil {
		return err
	}

	// Redis
	var rdb *redisv9.Client
	if tmp, err := redis.NewRedisClient(ctx, cfg.Redis); err != nil {
		slog.Warn("Redis unavailable. Running without cache.", "error", err)
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	tokens, err := jwtmw.NewTokenService(cfg.JWTSecret)
	if err != nil {
		return err
	}

	ai := di.NewAssistantBackends(ctx, di.AssistantConfig{
		GeminiAPIKey: cfg.GeminiAPIKey,
		GeminiModel:  cfg.GeminiModel,
		GeminiRPM:    cfg.GeminiRPM,
		OCREnabled:   cfg.ReceiptOCREnabled,
		HTTPTimeout:  cfg.ExternalHTTPTimeout,
	})
	defer func() {
		if err := ai.Close(); err != nil {
			slog.Error("failed to close AI clients", "error", err)
		}
	}()

	engine := di.NewEngine(di.Deps{
		DB:       gdb,
		Redis:    rdb,
		CacheTTL: cfg.ExpenseCacheTTL,
		Tokens:   tokens,
		Policy: authusecase.TokenPolicy{
			Short: cfg.AccessTokenTTL,
			Long:  cfg.LongLivedTokenTTL,
		},
		Verifier:           di.NewIdentityVerifier(ctx, cfg.FirebaseCredentialsFile),
		Extractor:          ai.Extractor,
		Chat:               ai.Chat,
		OCR:                ai.OCR,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:             logger,
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
