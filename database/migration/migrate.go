// Package migration applies versioned SQL migrations with golang-migrate
// on the connection pool of an open GORM database.
//
// Files follow the golang-migrate naming scheme at the root of the source
// FS (NNNNNN_name.up.sql and NNNNNN_name.down.sql):
//
//	src, _ := records.Migrations(cfg.Driver)
//	driver, _ := migration.DriverFor(cfg.Driver)
//	err := migration.MigrateUp(db.GormDB, src, driver)
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	"github.com/kbukum/clinic/database"
)

// DriverFunc wraps an open sql.DB in a golang-migrate database driver.
type DriverFunc func(*sql.DB) (migratedb.Driver, error)

// DriverFor returns the migrate driver matching a database.driver value.
// MySQL DSNs must carry multiStatements=true when a file holds more than
// one statement.
func DriverFor(name string) (DriverFunc, error) {
	switch name {
	case database.DriverSQLite, "":
		return func(db *sql.DB) (migratedb.Driver, error) {
			return migratesqlite.WithInstance(db, &migratesqlite.Config{})
		}, nil
	case database.DriverMySQL:
		return func(db *sql.DB) (migratedb.Driver, error) {
			return migratemysql.WithInstance(db, &migratemysql.Config{})
		}, nil
	case database.DriverPostgres:
		return func(db *sql.DB) (migratedb.Driver, error) {
			return migratepg.WithInstance(db, &migratepg.Config{})
		}, nil
	default:
		return nil, fmt.Errorf("migration: unsupported driver %q", name)
	}
}

// MigrateUp applies every pending migration. Being up to date is not an
// error.
func MigrateUp(gormDB *gorm.DB, src fs.FS, driver DriverFunc) error {
	m, err := newMigrator(gormDB, src, driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// MigrateSteps applies n migrations forward, or rolls back -n when n is
// negative.
func MigrateSteps(gormDB *gorm.DB, src fs.FS, n int, driver DriverFunc) error {
	m, err := newMigrator(gormDB, src, driver)
	if err != nil {
		return err
	}
	if err := m.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate steps %d: %w", n, err)
	}
	return nil
}

// MigrateVersion returns the applied version and whether the last
// migration failed halfway. A database without migrations reports 0.
func MigrateVersion(gormDB *gorm.DB, src fs.FS, driver DriverFunc) (version uint, dirty bool, err error) {
	m, err := newMigrator(gormDB, src, driver)
	if err != nil {
		return 0, false, err
	}
	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// newMigrator must not be followed by m.Close(): that would close the
// shared sql.DB.
func newMigrator(gormDB *gorm.DB, src fs.FS, driver DriverFunc) (*migrate.Migrate, error) {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	dbDriver, err := driver(sqlDB)
	if err != nil {
		return nil, fmt.Errorf("create database driver: %w", err)
	}
	source, err := iofs.New(src, ".")
	if err != nil {
		return nil, fmt.Errorf("create iofs source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "clinic", dbDriver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}
