package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"phonebook_backend/internal/events"
	"phonebook_backend/internal/phonenumbers"
	"phonebook_backend/internal/scheduler"
	"phonebook_backend/platform/config"
	"phonebook_backend/platform/db"
	"phonebook_backend/platform/logger"
	"phonebook_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting import worker", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	if cfg.GetRedisURL() == "" {
		log.Error("REDIS_URL is required for the import worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	eventBus := events.NewInMemoryBus(log)
	defer eventBus.Wait()

	phoneCfg, err := phonenumbers.ServiceConfig(cfg, cfg, nil)
	if err != nil {
		log.Error("invalid phone number settings", "error", err)
		panic("invalid phone number settings: " + err.Error())
	}

	// Worker-side import wiring (no HTTP handlers required).
	phoneNumbersModule := phonenumbers.NewModule(pool, eventBus, phoneCfg, validator.New(), nil, log)

	worker, err := scheduler.NewWorker(cfg, phoneNumbersModule.Service(), log)
	if err != nil {
		log.Error("failed to initialize import worker", "error", err)
		panic("failed to initialize import worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
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
