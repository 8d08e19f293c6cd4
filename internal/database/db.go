package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/siamt-api/internal/config"
)

const pingTimeout = 5 * time.Second

// DB is the metadata store's connection pool
type DB struct {
	*sql.DB
	log zerolog.Logger
}

// New opens the PostgreSQL pool described by cfg and fails unless the
// server answers a ping within pingTimeout.
func New(cfg *config.DatabaseConfig, log zerolog.Logger) (*DB, error) {
	pool, err := openPool(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db := &DB{DB: pool, log: log.With().Str("component", "database").Logger()}
	db.log.Info().
		Str("host", cfg.Host).
		Str("database", cfg.Name).
		Bool("url_dsn", cfg.URL != "").
		Int("max_open_conns", cfg.MaxOpenConns).
		Int("max_idle_conns", cfg.MaxIdleConns).
		Msg("Database connection established")
	return db, nil
}

func openPool(cfg *config.DatabaseConfig) (*sql.DB, error) {
	pool, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.MaxLifetime)
	return pool, nil
}

// migration runs one schema change against an open migrate instance
type migration func(m *migrate.Migrate) error

// runMigration runs step on a connection reserved from the pool. Closing the
// instance afterwards hands the connection back; the pool stays open.
func (db *DB) runMigration(migrationsPath, action string, step migration) error {
	dir, err := filepath.Abs(migrationsPath)
	if err != nil {
		return fmt.Errorf("resolve migrations path: %w", err)
	}
	log := db.log.With().Str("action", action).Str("path", dir).Logger()
	log.Info().Msg("Starting migration")

	ctx := context.Background()
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("reserve migration connection: %w", err)
	}
	driver, err := postgres.WithConnection(ctx, conn, &postgres.Config{})
	if err != nil {
		conn.Close()
		return fmt.Errorf("create migration driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+filepath.ToSlash(dir), "postgres", driver)
	if err != nil {
		driver.Close()
		return fmt.Errorf("load migrations: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Warn().AnErr("source", srcErr).AnErr("database", dbErr).Msg("Closing migrate instance failed")
		}
	}()

	if err := step(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: %w", action, err)
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		log.Info().Msg("Schema has no applied migrations")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Migration finished")
	return nil
}

// RunMigrations applies every pending migration
func (db *DB) RunMigrations(migrationsPath string) error {
	return db.runMigration(migrationsPath, "up", func(m *migrate.Migrate) error {
		return m.Up()
	})
}

// MigrateDown rolls back the most recent migration only
func (db *DB) MigrateDown(migrationsPath string) error {
	return db.runMigration(migrationsPath, "down", func(m *migrate.Migrate) error {
		return m.Steps(-1)
	})
}

// MigrateToVersion moves the schema up or down to version
func (db *DB) MigrateToVersion(migrationsPath string, version uint) error {
	return db.runMigration(migrationsPath, fmt.Sprintf("goto %d", version), func(m *migrate.Migrate) error {
		return m.Migrate(version)
	})
}

// HealthCheck pings the server
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.PingContext(ctx)
}
