package main

import (
	"fmt"

	"github.com/kbukum/clinic/auth"
	"github.com/kbukum/clinic/auth/session"
	"github.com/kbukum/clinic/config"
	"github.com/kbukum/clinic/database"
	"github.com/kbukum/clinic/kafka"
	"github.com/kbukum/clinic/notify"
	"github.com/kbukum/clinic/observability"
	"github.com/kbukum/clinic/redis"
	"github.com/kbukum/clinic/server"
)

const serviceName = "clinic-api"

// AppConfig is the full configuration tree of the service.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server    server.Config        `yaml:"server" mapstructure:"server"`
	Database  database.Config      `yaml:"database" mapstructure:"database"`
	Redis     redis.Config         `yaml:"redis" mapstructure:"redis"`
	Kafka     kafka.Config         `yaml:"kafka" mapstructure:"kafka"`
	Session   session.Config       `yaml:"session" mapstructure:"session"`
	Auth      auth.Config          `yaml:"auth" mapstructure:"auth"`
	Notify    notify.Config        `yaml:"notify" mapstructure:"notify"`
	Telemetry observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Redis.ApplyDefaults()
	c.Kafka.ApplyDefaults()
	c.Session.ApplyDefaults()
	c.Auth.ApplyDefaults()
	c.Notify.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
}

func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if !c.Database.Enabled {
		return fmt.Errorf("database.enabled must be true")
	}
	if c.Session.Store == session.StoreRedis && !c.Redis.Enabled {
		return fmt.Errorf("session.store %q needs redis.enabled", session.StoreRedis)
	}

	checks := []struct {
		name string
		fn   func() error
	}{
		{"server", c.Server.Validate},
		{"database", c.Database.Validate},
		{"redis", c.Redis.Validate},
		{"kafka", c.Kafka.Validate},
		{"session", c.Session.Validate},
		{"auth", c.Auth.Validate},
		{"notify", c.Notify.Validate},
		{"telemetry", c.Telemetry.Validate},
	}
	for _, chk := range checks {
		if err := chk.fn(); err != nil {
			return fmt.Errorf("%s: %w", chk.name, err)
		}
	}
	return nil
}

// loadConfig reads the YAML file, the .env file and the environment into
// an AppConfig.
func loadConfig(configFile, envFile string) (*AppConfig, error) {
	var opts []config.LoaderOption
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}
	cfg := &AppConfig{}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	return cfg, nil
}
