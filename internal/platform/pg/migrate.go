package pg

import (
	"errors"
	"fmt"
	"io/fs"

	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// MigrationInfo reports what ApplyMigrations did.
type MigrationInfo struct {
	Applied        bool
	Dirty          bool
	CurrentVersion uint
	FinalVersion   uint
}

// ApplyMigrations applies all pending migrations. Safe to call repeatedly:
// an already-migrated database is not an error.
//
// migrationsPath uses golang-migrate source URL syntax, e.g. "file://migrations".
func ApplyMigrations(dsn, migrationsPath string) (MigrationInfo, error) {
	m, err := migrate.New(migrationsPath, dsn)
	if err != nil {
		return MigrationInfo{}, fmt.Errorf("create migrate instance: %w", err)
	}
	defer func() {
		sourceErr, dbErr := m.Close()
		_, _ = sourceErr, dbErr
	}()

	return run(m)
}

// ApplyMigrationsFromFS applies migrations from an fs.FS, typically an
// embed.FS so the binary carries its own schema.
func ApplyMigrationsFromFS(dsn string, fsys fs.FS, dir string) (MigrationInfo, error) {
	src, err := iofs.New(fsys, dir)
	if err != nil {
		return MigrationInfo{}, fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return MigrationInfo{}, fmt.Errorf("create migrate instance: %w", err)
	}
	defer func() {
		sourceErr, dbErr := m.Close()
		_, _ = sourceErr, dbErr
	}()

	return run(m)
}

func run(m *migrate.Migrate) (MigrationInfo, error) {
	info := MigrationInfo{}

	currentVersion, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return MigrationInfo{}, fmt.Errorf("get current version: %w", err)
	}
	info.CurrentVersion = currentVersion
	info.Dirty = dirty

	if dirty {
		return info, fmt.Errorf("database is in dirty state at version %d", currentVersion)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return info, nil
		}
		return info, fmt.Errorf("apply migrations: %w", err)
	}

	info.Applied = true
	if finalVersion, _, err := m.Version(); err == nil {
		info.FinalVersion = finalVersion
	}

	return info, nil
}
