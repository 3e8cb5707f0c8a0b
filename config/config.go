package config

import (
	"fmt"

	"github.com/kbukum/dagkit/executor"
	"github.com/kbukum/dagkit/logger"
	"github.com/kbukum/dagkit/observability"
	"github.com/kbukum/dagkit/persist"
	"github.com/kbukum/dagkit/server"
)

// ServiceConfig contains the identity fields shared by every section.
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// ApplyDefaults applies default values to the service configuration.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "dagkit"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	// Propagate the service name into logging so Init uses the right tag.
	if c.Logging.ServiceName == "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the service configuration.
func (c *ServiceConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("service.name is required")
	}
	validEnvs := []string{"development", "staging", "production"}
	found := false
	for _, v := range validEnvs {
		if c.Environment == v {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("service.environment must be one of [development, staging, production] (got: %s)", c.Environment)
	}
	return c.Logging.Validate()
}

// Config is the full application configuration.
type Config struct {
	Service     ServiceConfig        `yaml:"service" mapstructure:"service"`
	Server      server.Config        `yaml:"server" mapstructure:"server"`
	Executor    executor.Config      `yaml:"executor" mapstructure:"executor"`
	Telemetry   observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
	Persistence persist.Config       `yaml:"persistence" mapstructure:"persistence"`
}

// ApplyDefaults applies defaults to every section and propagates the service
// identity into the sections that report it.
func (c *Config) ApplyDefaults() {
	c.Service.ApplyDefaults()

	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = c.Service.Name
	}
	if c.Telemetry.ServiceVersion == "" && c.Service.Version != "" {
		c.Telemetry.ServiceVersion = c.Service.Version
	}
	if c.Telemetry.Environment == "" {
		c.Telemetry.Environment = c.Service.Environment
	}

	c.Server.ApplyDefaults()
	c.Executor.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
	c.Persistence.ApplyDefaults()
}

// Validate validates every section. Section errors already name the field
// that failed (e.g. "executor.workers"), so they are returned unwrapped.
func (c *Config) Validate() error {
	if err := c.Service.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Executor.Validate(); err != nil {
		return err
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	return c.Persistence.Validate()
}

// Load reads, defaults, and validates the full application configuration.
func Load(opts ...LoaderOption) (*Config, error) {
	var cfg Config
	if err := LoadConfig("dagkit", &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
