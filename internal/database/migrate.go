package database

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations
var migrations embed.FS

// newMigrator builds a migrator reading the embedded migration files and
// targeting the PostgreSQL database at databaseURL.
func newMigrator(databaseURL string) (*migrate.Migrate, error) {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, err
	}

	migrator, err := migrate.NewWithSourceInstance("iofs", src, pgx5URL(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}

	return migrator, nil
}

// MigrateUp applies every pending embedded migration.
func MigrateUp(databaseURL string, logger *zap.Logger) error {
	migrator, err := newMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer closeMigrator(migrator, logger)

	err = migrator.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("Database schema already up to date")
	case err != nil:
		return fmt.Errorf("migrate up: %w", err)
	}

	return nil
}

// MigrateDown rolls back the given number of migrations, or all of them when
// steps is not positive.
func MigrateDown(databaseURL string, steps int, logger *zap.Logger) error {
	migrator, err := newMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer closeMigrator(migrator, logger)

	if steps > 0 {
		err = migrator.Steps(-steps)
	} else {
		err = migrator.Down()
	}
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("No migration to roll back")
	case err != nil:
		return fmt.Errorf("migrate down: %w", err)
	}

	return nil
}

// MigrationVersion reports the applied schema version.
func MigrationVersion(databaseURL string, logger *zap.Logger) (uint, bool, error) {
	migrator, err := newMigrator(databaseURL)
	if err != nil {
		return 0, false, err
	}
	defer closeMigrator(migrator, logger)

	version, dirty, err := migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func closeMigrator(migrator *migrate.Migrate, logger *zap.Logger) {
	srcErr, dbErr := migrator.Close()
	if srcErr != nil {
		logger.Warn("Failed to close migration source", zap.Error(srcErr))
	}
	if dbErr != nil {
		logger.Warn("Failed to close migration database", zap.Error(dbErr))
	}
}

func pgx5URL(databaseURL string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(databaseURL, prefix) {
			return "pgx5://" + strings.TrimPrefix(databaseURL, prefix)
		}
	}
	return databaseURL
}
