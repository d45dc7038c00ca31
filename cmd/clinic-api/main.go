package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/clinic/bootstrap"
	"github.com/kbukum/clinic/database"
	"github.com/kbukum/clinic/database/migration"
	"github.com/kbukum/clinic/logger"
	"github.com/kbukum/clinic/records"
	"github.com/kbukum/clinic/version"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configFile, envFile string

	root := &cobra.Command{
		Use:          serviceName,
		Short:        "Clinic API server",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config.yml (searched when empty)")
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "path to a .env file (searched when empty)")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP API",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := loadConfig(configFile, envFile)
				if err != nil {
					return err
				}
				app, err := newApp(cfg)
				if err != nil {
					return err
				}
				return app.Run(cmd.Context())
			},
		},
		migrateCmd(&configFile, &envFile),
		&cobra.Command{
			Use:   "version",
			Short: "Print build information",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
			},
		},
	)
	return root
}

func migrateCmd(configFile, envFile *string) *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply versioned schema migrations and exit",
		Long: "Apply the embedded SQL migrations for database.driver. With --steps N\n" +
			"only N migrations are applied; a negative N rolls back.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configFile, *envFile)
			if err != nil {
				return err
			}
			_, err = migrate(cmd.Context(), cfg, steps)
			return err
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 0, "migrations to apply (0 = all pending, negative = roll back)")
	return cmd
}

// migrate applies the versioned schema while the database component
// starts and returns the resulting version. GORM auto-migration stays off.
func migrate(ctx context.Context, cfg *AppConfig, steps int) (uint, error) {
	cfg.Database.AutoMigrate = false
	src, err := records.Migrations(cfg.Database.Driver)
	if err != nil {
		return 0, err
	}
	driver, err := migration.DriverFor(cfg.Database.Driver)
	if err != nil {
		return 0, err
	}
	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return 0, err
	}
	app.Summary.SetOutput(nil)

	var version uint
	schema := func(_ context.Context, db *database.DB) error {
		var err error
		if steps == 0 {
			err = migration.MigrateUp(db.GormDB, src, driver)
		} else {
			err = migration.MigrateSteps(db.GormDB, src, steps, driver)
		}
		if err != nil {
			return err
		}
		v, dirty, err := migration.MigrateVersion(db.GormDB, src, driver)
		if err != nil {
			return err
		}
		if dirty {
			return fmt.Errorf("schema version %d is dirty", v)
		}
		version = v
		return nil
	}
	if err := app.RegisterComponent(database.NewComponent(cfg.Database, app.Logger).WithSchema("versioned", schema)); err != nil {
		return 0, err
	}
	err = app.RunTask(ctx, func(context.Context) error {
		app.Logger.Info("schema migrated", logger.Fields("version", version, "steps", steps, "driver", cfg.Database.Driver))
		return nil
	})
	return version, err
}
