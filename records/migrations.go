package records

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/kbukum/clinic/database"
)

//go:embed migrations
var migrationFiles embed.FS

// Migrations returns the versioned schema for a database.driver value,
// rooted so golang-migrate sees the NNNNNN_name.up.sql files directly.
func Migrations(driver string) (fs.FS, error) {
	switch driver {
	case "":
		driver = database.DriverSQLite
	case database.DriverSQLite, database.DriverMySQL, database.DriverPostgres:
	default:
		return nil, fmt.Errorf("records: no migrations for driver %q", driver)
	}
	return fs.Sub(migrationFiles, "migrations/"+driver)
}
