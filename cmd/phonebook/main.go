// Command phonebook runs phone book maintenance tasks from the shell:
// imports, offline normalization, duplicate checks, seeding and migrations.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"phonebook_backend/internal/events"
	"phonebook_backend/internal/phonenumbers"
	"phonebook_backend/platform/config"
	"phonebook_backend/platform/db"
	"phonebook_backend/platform/logger"
	"phonebook_backend/platform/validator"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "phonebook",
		Short:        "Phone book maintenance commands",
		SilenceUsage: true,
	}

	cmd.AddCommand(
		importCmd(),
		normalizeCmd(),
		checkCmd(),
		seedCmd(),
		migrateCmd(),
	)
	return cmd
}

// env bundles what database backed commands share.
type env struct {
	cfg  *config.Config
	log  *logger.Logger
	pool *pgxpool.Pool
	bus  *events.InMemoryBus
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.NewWithWriter(cfg.Env, os.Stderr)

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return &env{cfg: cfg, log: log, pool: pool, bus: events.NewInMemoryBus(log)}, nil
}

func (e *env) Close() {
	e.bus.Wait()
	e.pool.Close()
}

func (e *env) phoneNumbers() (*phonenumbers.Module, error) {
	svcCfg, err := phonenumbers.ServiceConfig(e.cfg, e.cfg, nil)
	if err != nil {
		return nil, err
	}
	return phonenumbers.NewModule(e.pool, e.bus, svcCfg, validator.New(), nil, e.log), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
