package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/customer-intake-api/internal/config"
	"github.com/customer-intake-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/customer-intake-api/internal/infrastructure/jwt"
	"github.com/customer-intake-api/internal/infrastructure/messaging"
	s3infra "github.com/customer-intake-api/internal/infrastructure/s3"
	"github.com/customer-intake-api/internal/pkg/logging"
	transporthttp "github.com/customer-intake-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)
	if envErr != nil {
		logger.Info("no .env file found, reading from environment")
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	sender, err := messaging.New(cfg)
	if err != nil {
		logger.Error("messaging provider", "error", err)
		os.Exit(1)
	}

	deps := &transporthttp.Deps{
		VerificationRepo: dynamo.NewVerificationRepo(dynamoClient, cfg.DynamoTables.Verifications),
		CustomerRepo:     dynamo.NewCustomerRepo(dynamoClient, cfg.DynamoTables.Customers, cfg.DynamoTables.CustomerUniques),
		Sender:           sender,
	}

	if cfg.ArchiveEnabled {
		store := s3infra.NewStore(s3infra.NewClient(cfg), cfg.S3BucketName)
		deps.Archive = s3infra.NewVerificationArchive(store)
	}

	// JWT provider (optional: admin routes stay unmounted without keys).
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		deps.JWTProvider = p
	} else {
		logger.Warn("JWT provider not available, admin API disabled", "error", err)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "messaging", cfg.MessagingProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
