package database

import (
	"database/sql"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"osrs-tracker/internal/config"
	"osrs-tracker/internal/constants"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var embedMigrations embed.FS

// New opens the storage backend selected by the connection string: a
// postgres URL uses the networked store, anything else the embedded
// SQLite file (bootstrapped from a seed copy when absent). Callers only
// ever see the *sql.DB.
func New(cfg *config.Config, logger zerolog.Logger) (*sql.DB, error) {
	if config.IsPostgresURL(cfg.DatabaseURL) {
		return newPostgres(cfg, logger)
	}
	return newSQLite(cfg, logger)
}

func newPostgres(cfg *config.Config, logger zerolog.Logger) (*sql.DB, error) {
	logger.Info().Msg("connecting to postgres database")

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	setPoolLimits(db)

	if err := runMigrations(db, "postgres", "migrations/postgres", logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info().Msg("postgres connection established")
	return db, nil
}

func newSQLite(cfg *config.Config, logger zerolog.Logger) (*sql.DB, error) {
	logger.Info().Str("path", cfg.DBPath).Msg("opening sqlite database")

	if err := ensureSeedDB(cfg, logger); err != nil {
		return nil, fmt.Errorf("failed to bootstrap sqlite database: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	setPoolLimits(db)

	if err := optimizeSQLite(db, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to optimize sqlite: %w", err)
	}
	if err := runMigrations(db, "sqlite3", "migrations/sqlite", logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info().Msg("sqlite database ready")
	return db, nil
}

// ensureSeedDB copies the seed database into place the first time the
// collector runs on a fresh host. No-op when the file already exists or
// no seed is shipped.
func ensureSeedDB(cfg *config.Config, logger zerolog.Logger) error {
	if _, err := os.Stat(cfg.DBPath); err == nil {
		return nil
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	seed, err := os.Open(cfg.SeedDBPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open seed database: %w", err)
	}
	defer seed.Close()

	dst, err := os.Create(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to create database file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, seed); err != nil {
		return fmt.Errorf("failed to copy seed database: %w", err)
	}

	logger.Info().Str("seed", cfg.SeedDBPath).Str("path", cfg.DBPath).Msg("seeded sqlite database")
	return nil
}

func setPoolLimits(db *sql.DB) {
	db.SetMaxOpenConns(constants.DBMaxOpenConns)
	db.SetMaxIdleConns(constants.DBMaxIdleConns)
	db.SetConnMaxLifetime(constants.DBConnMaxLifetime)
	db.SetConnMaxIdleTime(constants.DBMaxIdleTime)
}

func runMigrations(db *sql.DB, dialect, dir string, logger zerolog.Logger) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("failed to run goose migrations: %w", err)
	}

	logger.Info().Str("dialect", dialect).Msg("migrations completed")
	return nil
}

func optimizeSQLite(sqlDB *sql.DB, logger zerolog.Logger) error {
	pragmas := []struct {
		name  string
		value string
	}{
		{"journal_mode", "WAL"},
		{"synchronous", "NORMAL"},
		{"busy_timeout", "5000"},
		{"foreign_keys", "ON"},
	}

	for _, pragma := range pragmas {
		query := fmt.Sprintf("PRAGMA %s = %s", pragma.name, pragma.value)
		if _, err := sqlDB.Exec(query); err != nil {
			logger.Warn().
				Err(err).
				Str("pragma", pragma.name).
				Str("value", pragma.value).
				Msg("failed to set pragma")
			return fmt.Errorf("failed to set PRAGMA %s: %w", pragma.name, err)
		}
	}

	return nil
}
