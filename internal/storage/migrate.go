package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// One directory per SQL dialect; both hold the same schema versions.
//
//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// RunMigrations brings the SQLite database at dbPath up to date.
func RunMigrations(dbPath string) error {
	return runMigrations("sqlite", dbPath, "sqlite", func(db *sql.DB) (database.Driver, error) {
		return sqlite.WithInstance(db, &sqlite.Config{})
	})
}

// RunPostgresMigrations brings the Postgres database at dsn up to date.
func RunPostgresMigrations(dsn string) error {
	return runMigrations("pgx", dsn, "postgres", func(db *sql.DB) (database.Driver, error) {
		return pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	})
}

// MigrationVersions lists the schema versions embedded for dialect.
func MigrationVersions(dialect string) ([]string, error) {
	return fs.Glob(migrationsFS, "migrations/"+dialect+"/*.up.sql")
}

func runMigrations(sqlDriver, dsn, dialect string, newDriver func(*sql.DB) (database.Driver, error)) error {
	// Separate connection so closing the migrator does not close the store's pool.
	migrateDB, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := newDriver(migrateDB)
	if err != nil {
		return fmt.Errorf("create %s driver: %w", dialect, err)
	}

	d, err := iofs.New(migrationsFS, "migrations/"+dialect)
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, dialect, driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}
