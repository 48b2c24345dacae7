package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

func openMigrator(pool *pgxpool.Pool) (*sql.DB, error) {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	return stdlib.OpenDBFromPool(pool), nil
}

// RunMigrations applies all pending embedded migrations.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	sqlDB, err := openMigrator(pool)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := goose.UpContext(ctx, sqlDB, migrationsDir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// RollbackMigration reverts the most recent migration.
func RollbackMigration(ctx context.Context, pool *pgxpool.Pool) error {
	sqlDB, err := openMigrator(pool)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := goose.DownContext(ctx, sqlDB, migrationsDir); err != nil {
		return fmt.Errorf("rollback migration: %w", err)
	}
	return nil
}

// MigrationVersion returns the current schema version.
func MigrationVersion(ctx context.Context, pool *pgxpool.Pool) (int64, error) {
	sqlDB, err := openMigrator(pool)
	if err != nil {
		return 0, err
	}
	defer sqlDB.Close()

	return goose.GetDBVersionContext(ctx, sqlDB)
}
