package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dosada05/athletics-meet/config"
	"github.com/Dosada05/athletics-meet/db"
	"github.com/Dosada05/athletics-meet/handlers"
	"github.com/Dosada05/athletics-meet/metrics"
	"github.com/Dosada05/athletics-meet/notify"
	"github.com/Dosada05/athletics-meet/repositories"
	"github.com/Dosada05/athletics-meet/routes"
	"github.com/Dosada05/athletics-meet/services"
	"github.com/Dosada05/athletics-meet/storage"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireJWT(); err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, logger, migrate)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func runServe(parent context.Context, cfg *config.Config, logger *slog.Logger, migrate bool) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, cfg.DBConnectTimeout, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if migrate {
		if err := db.Migrate(ctx, dbConn, logger); err != nil {
			return err
		}
	}

	// Загрузчик стартовых листов опционален
	var uploader storage.FileUploader
	r2 := storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	}
	if r2.Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, r2)
		if err != nil {
			return fmt.Errorf("initialize start-list storage: %w", err)
		}
		logger.Info("start-list storage initialized", slog.String("bucket", cfg.R2BucketName))
	} else {
		logger.Info("start-list storage disabled")
	}

	hub := notify.NewHub(logger)
	go hub.Run(ctx)

	metricsManager := metrics.NewManager()

	// Репозитории
	txManager := repositories.NewTxManager(dbConn, logger)
	eventRepo := repositories.NewPostgresEventRepository(dbConn)
	athleteRepo := repositories.NewPostgresAthleteRepository(dbConn)
	heatRepo := repositories.NewPostgresHeatRepository(dbConn)
	resultRepo := repositories.NewPostgresResultRepository(dbConn)
	operatorRepo := repositories.NewPostgresOperatorRepository(dbConn)

	// Сервисы
	eventService := services.NewEventService(txManager, eventRepo, heatRepo, logger)
	athleteService := services.NewAthleteService(athleteRepo, logger)
	heatService := services.NewHeatService(services.HeatServiceDeps{
		Tx:          txManager,
		EventRepo:   eventRepo,
		AthleteRepo: athleteRepo,
		HeatRepo:    heatRepo,
		Publisher:   hub,
		Uploader:    uploader,
		Metrics:     metricsManager,
		Logger:      logger,
	})
	scheduleService := services.NewScheduleService(eventRepo, scheduleDefaults(cfg), metricsManager, logger)
	resultService := services.NewResultService(services.ResultServiceDeps{
		Tx:         txManager,
		EventRepo:  eventRepo,
		HeatRepo:   heatRepo,
		ResultRepo: resultRepo,
		Publisher:  hub,
		Metrics:    metricsManager,
		Logger:     logger,
	})
	authService := services.NewAuthService(operatorRepo, logger)

	router := routes.SetupRoutes(routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService, cfg.JWTSecretKey, cfg.JWTTTL),
		Events:    handlers.NewEventHandler(eventService),
		Athletes:  handlers.NewAthleteHandler(athleteService),
		Heats:     handlers.NewHeatHandler(heatService),
		Schedule:  handlers.NewScheduleHandler(scheduleService),
		Results:   handlers.NewResultHandler(resultService),
		WebSocket: handlers.NewWebSocketHandler(hub, eventService, cfg.CORSOrigins, logger),
	}, metricsManager, routes.Options{
		JWTSecret:      []byte(cfg.JWTSecretKey),
		CORSOrigins:    cfg.CORSOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		RequestTimeout: 30 * time.Second,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped")
		return nil
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
	if err := server.Shutdown(shutdownCtx); err != nil {
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("failed to force close server", slog.Any("error", closeErr))
		}
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("server shutdown complete")
	return nil
}

func scheduleDefaults(cfg *config.Config) services.ScheduleDefaults {
	return services.ScheduleDefaults{
		Days:               cfg.ScheduleDays,
		TrackGapMinutes:    cfg.ScheduleTrackGapMinutes,
		AthleteRestMinutes: cfg.ScheduleAthleteRestMinutes,
	}
}
