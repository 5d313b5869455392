// Package db opens the SQL backends the supplier store can run on.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Supported DB_DRIVER values. DriverPostgres selects the native pgx store;
// the others go through gorm.
const (
	DriverPostgres     = "postgres"
	DriverGormPostgres = "gorm-postgres"
	DriverMySQL        = "mysql"
	DriverSQLite       = "sqlite"
	DriverSQLServer    = "sqlserver"
)

// Drivers lists every accepted DB_DRIVER value.
var Drivers = []string{DriverPostgres, DriverGormPostgres, DriverMySQL, DriverSQLite, DriverSQLServer}

// IsPostgres reports whether driver talks to PostgreSQL.
func IsPostgres(driver string) bool {
	return driver == DriverPostgres || driver == DriverGormPostgres
}

// New creates a PostgreSQL connection pool. maxConns <= 0 keeps the pgx default.
func New(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("platform/db: parse config: %w", err)
	}
	if maxConns > 0 {
		config.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("platform/db: new pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("platform/db: ping: %w", err)
	}

	return pool, nil
}
