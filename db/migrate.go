// Package db owns the feedback schema and applies it with golang-migrate.
package db

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/NomadCrew/feedback-desk/logger"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// RunMigrations applies all pending migrations embedded in the binary.
// Already-applied migrations are skipped, so it is safe to call on every
// startup. A dirty state left by a failed run is reset to the previous
// version and retried.
func RunMigrations(dbURL string) error {
	log := logger.GetLogger()

	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	// golang-migrate's pgx v5 driver only accepts the pgx5:// scheme
	m, err := migrate.NewWithSourceInstance("iofs", source, convertToPgx5URL(dbURL))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.Info("No schema version recorded, applying migrations from scratch")
	case err != nil:
		return fmt.Errorf("failed to read migration version: %w", err)
	case dirty:
		clean := int(version) - 1
		log.Infow("Dirty migration state detected, resetting to retry",
			"dirtyVersion", version,
			"resettingTo", clean)
		if clean < 1 {
			clean = database.NilVersion
		}
		if err := m.Force(clean); err != nil {
			return fmt.Errorf("failed to reset dirty migration: %w", err)
		}
	default:
		log.Infow("Current migration version", "version", version)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("Database is up to date, no migrations to apply")
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}

	if version, dirty, err = m.Version(); err == nil {
		log.Infow("Migrations applied successfully", "currentVersion", version, "dirty", dirty)
	}
	return nil
}

// convertToPgx5URL rewrites a postgres:// or postgresql:// URL to pgx5://.
func convertToPgx5URL(dbURL string) string {
	for _, scheme := range []string{"postgresql:", "postgres:"} {
		if strings.HasPrefix(dbURL, scheme) {
			return "pgx5:" + strings.TrimPrefix(dbURL, scheme)
		}
	}
	return dbURL
}
