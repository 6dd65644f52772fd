package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/despensa_api/internal/cache"
	"github.com/GTDGit/despensa_api/internal/config"
	"github.com/GTDGit/despensa_api/internal/database"
	"github.com/GTDGit/despensa_api/internal/handler"
	"github.com/GTDGit/despensa_api/internal/middleware"
	"github.com/GTDGit/despensa_api/internal/repository"
	"github.com/GTDGit/despensa_api/internal/service"
	"github.com/GTDGit/despensa_api/internal/sse"
	"github.com/GTDGit/despensa_api/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Str("storage", cfg.StorageBackend).Msg("starting despensa api")

	// Storage backend
	productRepo, closeStorage, err := openStorage(cfg)
	if err != nil {
		log.Error().Err(err).Msg("storage initialization failed")
		fmt.Fprintf(os.Stderr, "storage initialization failed: %v\n", err)
		os.Exit(1)
	}
	defer closeStorage()

	// Redis is optional: without it share links are disabled.
	var (
		shareStore  service.ShareStore
		redisPinger handler.Pinger
	)
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("redis connection failed - share links will be disabled")
		} else {
			defer redisClient.Close()
			shareStore = cache.NewShareCache(redisClient)
			redisPinger = redisClient
			log.Info().Msg("redis connected successfully")
		}
	}

	// Services
	hub := sse.NewHub()
	productSvc := service.NewProductService(productRepo, sse.NewHubNotifier(hub))
	shareSvc := service.NewShareService(productSvc, shareStore, cfg.Share.TTL, cfg.PublicBaseURL)

	handlers := &handler.Handlers{
		Health:  handler.NewHealthHandler(cfg.StorageBackend, productRepo, redisPinger),
		Product: handler.NewProductHandler(productSvc),
		Share:   handler.NewShareHandler(shareSvc),
		SSE:     handler.NewSSEHandler(hub),
	}
	shareLimiter := middleware.NewRateLimiter(cfg.Share.RateLimit, cfg.Share.RateLimitWindow)

	// Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	router.Use(middleware.LoggingMiddleware())
	handler.SetupRoutes(router, handlers, shareLimiter)

	// Background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go worker.NewReconcileWorker(productSvc, cfg.Worker.ReconcileInterval).Start(ctx)
	go shareLimiter.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Request contexts derive from ctx so cancel() ends open SSE streams.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Stop workers and close SSE streams
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// openStorage builds the configured product repository and its cleanup func.
func openStorage(cfg *config.Config) (repository.ProductRepository, func(), error) {
	switch cfg.StorageBackend {
	case config.StorageFile:
		repo, err := repository.NewFileProductRepository(cfg.DataFile)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("path", cfg.DataFile).Msg("file storage ready")
		return repo, func() {}, nil
	default:
		db, err := database.Connect(&cfg.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("database connection failed: %w", err)
		}
		if err := runMigrations(db.DB, cfg.MigrationsPath); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migration failed: %w", err)
		}
		log.Info().Msg("migrations completed successfully")
		return repository.NewProductRepository(db), closeDB(db), nil
	}
}

func closeDB(db *sqlx.DB) func() {
	return func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("database close failed")
		}
	}
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB, source string) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	// Run migrations
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
		return
	}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
}
