package persist

import "fmt"

// Config controls graph persistence.
type Config struct {
	// Enabled turns autosave and load-at-boot on.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Path is the JSON document location.
	Path string `yaml:"path" mapstructure:"path"`
}

// ApplyDefaults applies default values to persistence configuration.
func (c *Config) ApplyDefaults() {
	if c.Path == "" {
		c.Path = "data/graph.json"
	}
}

// Validate validates persistence configuration.
func (c *Config) Validate() error {
	if c.Enabled && c.Path == "" {
		return fmt.Errorf("persistence.path is required when persistence is enabled")
	}
	return nil
}
