package database

import (
	"context"
	"fmt"

	"github.com/kbukum/clinic/component"
	"github.com/kbukum/clinic/logger"
	"github.com/kbukum/clinic/util"
)

// SchemaFunc prepares the schema once the connection is open.
type SchemaFunc func(ctx context.Context, db *DB) error

// AutoMigrate is a SchemaFunc that lets GORM create or alter the tables
// of models.
func AutoMigrate(models ...interface{}) SchemaFunc {
	return func(_ context.Context, db *DB) error {
		return db.AutoMigrate(models...)
	}
}

// Component manages the database connection lifecycle.
type Component struct {
	db         *DB
	cfg        Config
	log        *logger.Logger
	schema     SchemaFunc
	schemaName string
}

var _ component.Component = (*Component)(nil)

// NewComponent creates a database component.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{
		cfg: cfg,
		log: log.WithComponent("database"),
	}
}

// WithSchema runs fn on Start, after connecting. name labels it in the
// startup summary.
func (c *Component) WithSchema(name string, fn SchemaFunc) *Component {
	c.schema, c.schemaName = fn, name
	return c
}

// DB returns the connection, or nil before Start.
func (c *Component) DB() *DB {
	return c.db
}

func (c *Component) Name() string { return "database" }

// Start connects and prepares the schema. A schema failure closes the
// connection again.
func (c *Component) Start(ctx context.Context) error {
	db, err := Open(ctx, c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("database start: %w", err)
	}
	if c.schema != nil {
		if err := c.schema(ctx, db); err != nil {
			_ = db.Close()
			return fmt.Errorf("database schema (%s): %w", c.schemaName, err)
		}
		c.log.Info("schema ready", logger.Fields("schema", c.schemaName))
	}
	c.db = db
	return nil
}

func (c *Component) Stop(_ context.Context) error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Health pings the database. A pool with every connection busy reports
// degraded.
func (c *Component) Health(ctx context.Context) component.Health {
	if c.db == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "database not initialized"}
	}
	status, msg := poolHealth(c.db.CheckHealth(ctx), c.cfg.MaxOpenConns)
	return component.Health{Name: c.Name(), Status: status, Message: msg}
}

func poolHealth(s Stats, maxOpen int) (component.HealthStatus, string) {
	if !s.Connected {
		return component.StatusUnhealthy, fmt.Sprintf("ping failed: %s", s.Error)
	}
	if maxOpen > 0 && s.InUseConns >= maxOpen {
		return component.StatusDegraded, fmt.Sprintf("pool exhausted: %d/%d in use", s.InUseConns, maxOpen)
	}
	return component.StatusHealthy, ""
}

func (c *Component) Describe() component.Description {
	details := fmt.Sprintf("%s %s pool=%d/%d", c.cfg.Driver, util.MaskSecret(c.cfg.DSN, 12), c.cfg.MaxOpenConns, c.cfg.MaxIdleConns)
	if c.schema != nil {
		details += " schema=" + c.schemaName
	}
	return component.Description{Name: "Database", Type: "database", Details: details}
}
