package db

import (
	"context"
	"database/sql"
	"fmt"

	"ecochain-be/internal/config"
	"ecochain-be/internal/logger"
	"ecochain-be/internal/retry"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// DSN is the lib/pq connection string for cfg.
func DSN(cfg *config.Config) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)
}

// NewDatabase opens the postgres pool and pings it under the retry policy.
func NewDatabase(ctx context.Context, cfg *config.Config, policy retry.Policy) (*sql.DB, error) {
	return newDatabaseWithDriver(ctx, cfg, "postgres", policy)
}

func newDatabaseWithDriver(ctx context.Context, cfg *config.Config, driver string, policy retry.Policy) (*sql.DB, error) {
	database, err := sql.Open(driver, DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	err = retry.Do(ctx, "db.ping", policy, func(ctx context.Context) error {
		return database.PingContext(ctx)
	})
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	logger.L().Info("database connection established",
		zap.String("host", cfg.DBHost),
		zap.String("db", cfg.DBName),
	)
	return database, nil
}

// InitDB is NewDatabase for process startup: failure is fatal.
func InitDB(cfg *config.Config) *sql.DB {
	policy := retry.Policy{Attempts: cfg.RetryAttempts, BaseDelay: cfg.RetryBaseDelay}
	database, err := NewDatabase(context.Background(), cfg, policy)
	if err != nil {
		logger.L().Fatal("database unavailable", zap.Error(err))
	}
	return database
}

// WithTx runs fn inside a transaction, committing on nil and rolling back otherwise.
func WithTx(ctx context.Context, database *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
