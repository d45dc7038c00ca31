// Package testutil opens throwaway databases for tests.
package testutil

import (
	"context"
	"testing"

	"github.com/kbukum/clinic/database"
	"github.com/kbukum/clinic/logger"
)

// NewDB opens a private in-memory sqlite database, migrates models and
// closes it when the test ends.
func NewDB(t testing.TB, models ...interface{}) *database.DB {
	t.Helper()
	cfg := database.Config{
		Enabled:  true,
		Driver:   database.DriverSQLite,
		DSN:      ":memory:",
		LogLevel: "silent",
	}
	db, err := database.Open(context.Background(), cfg, logger.Nop())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			t.Fatalf("migrate test database: %v", err)
		}
	}
	return db
}
