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

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"

	"github.com/malaebhub/malaeb-server/config"
	"github.com/malaebhub/malaeb-server/handlers"
	"github.com/malaebhub/malaeb-server/repositories"
	api "github.com/malaebhub/malaeb-server/routes"
	"github.com/malaebhub/malaeb-server/services"
	"github.com/malaebhub/malaeb-server/storage"
	"github.com/malaebhub/malaeb-server/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	client, err := store.NewClient(context.Background(), store.ClientConfig{
		Region:          cfg.AWSRegion,
		Endpoint:        cfg.DynamoEndpoint,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
		Tables:          cfg.Tables,
	})
	if err != nil {
		logger.Error("failed to initialize DynamoDB client", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("DynamoDB client initialized", slog.String("region", cfg.AWSRegion))

	cloudflareUploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	clock := clockwork.NewRealClock()

	userRepo := repositories.NewDynamoUserRepository(client)
	teamRepo := repositories.NewDynamoTeamRepository(client)
	memberRepo := repositories.NewDynamoMemberRepository(client)
	matchRepo := repositories.NewDynamoMatchRepository(client)
	tournamentRepo := repositories.NewDynamoTournamentRepository(client)
	notificationRepo := repositories.NewDynamoNotificationRepository(client)
	logger.Info("repositories initialized")

	notifier := services.NewNotifier(notificationRepo, memberRepo, clock)
	membershipService := services.NewMembershipService(userRepo, teamRepo, memberRepo, notifier, clock, logger)
	matchService := services.NewMatchService(userRepo, teamRepo, memberRepo, matchRepo, notifier, clock, logger)
	tournamentService := services.NewTournamentService(userRepo, teamRepo, memberRepo, tournamentRepo, notifier, logger)
	teamService := services.NewTeamService(userRepo, teamRepo, memberRepo, matchRepo, membershipService, notifier, cloudflareUploader, clock, logger)
	userService := services.NewUserService(userRepo, memberRepo, matchRepo, tournamentRepo, cloudflareUploader, clock)
	dispatcher := services.NewDispatcher(membershipService, matchService, tournamentService, logger)
	notificationService := services.NewNotificationService(notificationRepo, memberRepo, tournamentRepo, dispatcher)
	logger.Info("services initialized")

	userHandler := handlers.NewUserHandler(userService)
	teamHandler := handlers.NewTeamHandler(teamService)
	matchHandler := handlers.NewMatchHandler(matchService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		userHandler,
		teamHandler,
		matchHandler,
		tournamentHandler,
		notificationHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
