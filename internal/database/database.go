package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vancomm/minesweeper-agent/internal/config"
)

func Connect(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.NewPgxpoolConfig()
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	return pool, nil
}

// Migrate applies every pending migration found under migrations/ in the
// given filesystem.
func Migrate(url string, migrations fs.FS) (*migrate.Migrate, error) {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("unable to create migrations iofs: %w", err)
	}
	migrator, err := migrate.NewWithSourceInstance("iofs", source, url)
	if err != nil {
		return nil, fmt.Errorf("unable to create migrator: %w", err)
	}
	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return nil, errors.Join(
			fmt.Errorf("failed to migrate database: %w", err),
			CloseMigrator(migrator),
		)
	}
	return migrator, nil
}

type migrationCloser interface {
	Close() (source error, database error)
}

// CloseMigrator releases both the migration source and the database handle
// held by m.
func CloseMigrator(m migrationCloser) error {
	srcErr, dbErr := m.Close()
	var errs []error
	if srcErr != nil {
		errs = append(errs, fmt.Errorf("unable to close migration source: %w", srcErr))
	}
	if dbErr != nil {
		errs = append(errs, fmt.Errorf("unable to close migration database: %w", dbErr))
	}
	return errors.Join(errs...)
}

// ConnectAndMigrate brings the schema up to date and opens the pool. The
// migrator's own connection is closed before returning.
func ConnectAndMigrate(ctx context.Context, migrations fs.FS) (*pgxpool.Pool, error) {
	url, err := config.DbURL()
	if err != nil {
		return nil, err
	}
	migrator, err := Migrate(url, migrations)
	if err != nil {
		return nil, err
	}
	if err := CloseMigrator(migrator); err != nil {
		return nil, err
	}
	return Connect(ctx)
}
