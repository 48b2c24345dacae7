package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"phonebook_backend/internal/adapters/storage"
	"phonebook_backend/internal/categories"
	"phonebook_backend/internal/events"
	"phonebook_backend/internal/exports"
	apphttp "phonebook_backend/internal/http"
	"phonebook_backend/internal/http/router"
	"phonebook_backend/internal/phonenumbers"
	"phonebook_backend/internal/scheduler"
	"phonebook_backend/platform/config"
	"phonebook_backend/platform/db"
	"phonebook_backend/platform/logger"
	"phonebook_backend/platform/metrics"
	"phonebook_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

const storageBucketEnsureErrMsg = "failed to ensure storage bucket exists"

// ensureBucket wraps the retry logic for verifying a MinIO bucket exists.
func ensureBucket(ctx context.Context, log *logger.Logger, storageSvc storage.StorageService, bucket string) error {
	return withRetry(ctx, log, "ensure imports bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	})
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, pool)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)
	appMetrics := metrics.New()

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	phoneCfg, err := phonenumbers.ServiceConfig(cfg, cfg, cfg)
	if err != nil {
		log.Error("invalid phone number settings", "error", err)
		panic("invalid phone number settings: " + err.Error())
	}

	categoriesModule := categories.NewModule(pool, eventBus, val, log)
	phoneNumbersModule := phonenumbers.NewModule(pool, eventBus, phoneCfg, val, appMetrics, log)
	phoneNumbersModule.RegisterHandlers(eventBus)
	exportsModule := exports.NewModule(phoneNumbersModule.Repository(), log)

	// Queued imports need Redis
	importQueue, closeQueue := initImportQueue(cfg, log)
	if importQueue != nil {
		defer closeQueue()
		phoneNumbersModule.Service().SetQueue(importQueue)
	}

	// Archive of uploaded import files (MinIO)
	if cfg.IsMinIOEnabled() {
		storageSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		if err := ensureBucket(ctx, log, storageSvc, cfg.GetMinioBucketImports()); err != nil {
			log.Error(storageBucketEnsureErrMsg, "error", err, "bucket", cfg.GetMinioBucketImports())
			panic(storageBucketEnsureErrMsg + ": " + err.Error())
		}
		phoneNumbersModule.Service().SetArchive(storageSvc)
		log.Info("storage service initialized", "importsBucket", cfg.GetMinioBucketImports())
	} else {
		log.Warn("MINIO_ENDPOINT not configured; uploaded import files are not archived")
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		Metrics:  appMetrics,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			categoriesModule,
			phoneNumbersModule,
			exportsModule,
		},
	}

	engine := router.New(app)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initImportQueue(cfg config.SchedulerConfig, log *logger.Logger) (*scheduler.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; queued bulk imports disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize import queue client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
