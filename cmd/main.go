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
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/scoreboard/brackets"
	"github.com/Dosada05/scoreboard/cache"
	"github.com/Dosada05/scoreboard/config"
	"github.com/Dosada05/scoreboard/db"
	"github.com/Dosada05/scoreboard/events"
	"github.com/Dosada05/scoreboard/handlers"
	"github.com/Dosada05/scoreboard/repositories"
	api "github.com/Dosada05/scoreboard/routes"
	"github.com/Dosada05/scoreboard/services"
	"github.com/Dosada05/scoreboard/storage"
)

const shutdownTimeout = 15 * time.Second

// @title Scoreboard API
// @version 1.0
// @description Live badminton scoreboard: matches, rally scores, standings and slides.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		slog.Error("application stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("application exited")
}

func run() error {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Настройка логгеров: slog для сервисов, zerolog для hub и NATS
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	zerolog.SetGlobalLevel(zerologLevel(cfg.LogLevel))
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "realtime").Logger()

	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("tournament", cfg.Tournament.Name),
		slog.Int("win_threshold", cfg.Tournament.WinThreshold),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	if err := db.Migrate(ctx, dbConn); err != nil {
		return err
	}
	logger.Info("database connection established")

	clock := clockwork.NewRealClock()

	var uploader storage.FileUploader
	if cfg.StorageEnabled() {
		uploader, err = storage.NewS3Uploader(ctx, storage.S3UploaderConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			BucketName:      cfg.S3BucketName,
			PublicBaseURL:   cfg.S3PublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize object storage: %w", err)
		}
		logger.Info("object storage initialized", slog.String("bucket", cfg.S3BucketName))
	} else {
		logger.Warn("object storage not configured, photo uploads are disabled")
	}

	var store cache.KVStore
	if cfg.RedisAddr != "" {
		redisStore, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer redisStore.Close()
		store = redisStore
		logger.Info("redis connected", slog.String("addr", cfg.RedisAddr))
	} else {
		store = cache.NewMemory(clock)
		logger.Warn("REDIS_ADDR not set, preferences are kept in memory")
	}

	// WebSocket Hub и публикация событий
	wsHub := brackets.NewHub()
	hubPublisher := events.NewHubPublisher(wsHub)
	var publisher events.Publisher = hubPublisher
	var relay *events.Relay
	if cfg.NATSURL != "" {
		nc, err := events.Connect(events.DefaultNATSConfig(cfg.NATSURL))
		if err != nil {
			return err
		}
		defer nc.Drain()
		publisher = events.NewNATSPublisher(nc, events.DefaultSubjectPrefix)
		relay = events.NewRelay(nc, events.DefaultSubjectPrefix, hubPublisher)
		logger.Info("events relayed through NATS", slog.String("url", cfg.NATSURL))
	}

	// Инициализация репозиториев
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	slideRepo := repositories.NewPostgresSlideRepository(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	tx := repositories.NewTransactor(dbConn)

	// Инициализация сервисов
	tournament := cfg.Tournament
	standingsService := services.NewStandingsService(matchRepo, store, time.Duration(tournament.StandingsTTLSec)*time.Second, logger)
	matchService := services.NewMatchService(
		matchRepo,
		playerRepo,
		slideRepo,
		tx,
		standingsService,
		publisher,
		uploader,
		clock,
		services.MatchServiceOptions{
			WinThreshold: tournament.WinThreshold,
			AutoSlides:   tournament.AutoSlides,
			Location:     time.Local,
		},
		logger,
	)
	fixtureService := services.NewFixtureService(matchService, services.FixtureDefaults{
		Venue:         tournament.DefaultVenue,
		MatchesPerDay: tournament.MatchesPerDay,
	})
	playerService := services.NewPlayerService(playerRepo, matchRepo, uploader, logger)
	slideService := services.NewSlideService(slideRepo, tx, publisher, uploader, clock, logger)
	dashboardService := services.NewDashboardService(matchService, slideService, standingsService)
	transferService := services.NewTransferService(matchRepo, playerRepo, tx, standingsService, publisher, clock, logger)
	preferenceService := services.NewPreferenceService(store)
	authService := services.NewAuthService(userRepo, cfg.JWTSecretKey, clock, logger)

	if err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("failed to ensure admin account: %w", err)
	}

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		cfg.CORSAllowedOrigins,
		handlers.NewAuthHandler(authService),
		handlers.NewMatchHandler(matchService, fixtureService),
		handlers.NewPlayerHandler(playerService, standingsService),
		handlers.NewSlideHandler(slideService),
		handlers.NewDashboardHandler(dashboardService),
		handlers.NewPreferenceHandler(preferenceService),
		handlers.NewTransferHandler(transferService),
		handlers.NewWebSocketHandler(wsHub, cfg.CORSAllowedOrigins),
	)
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		wsHub.Run(gctx)
		return nil
	})
	if relay != nil {
		g.Go(func() error {
			return relay.Run(gctx)
		})
	}
	g.Go(func() error {
		logger.Info("starting server", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("server shutdown complete")
		return nil
	})

	return g.Wait()
}

func zerologLevel(level slog.Level) zerolog.Level {
	switch {
	case level <= slog.LevelDebug:
		return zerolog.DebugLevel
	case level <= slog.LevelInfo:
		return zerolog.InfoLevel
	case level <= slog.LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
