package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kbayram/clientkit/cache"
	"github.com/kbayram/clientkit/httpclient"
	"github.com/kbayram/clientkit/logger"
)

// Config is the full clientkit configuration.
type Config struct {
	// Name identifies the client application in logs.
	Name string `yaml:"name" mapstructure:"name"`

	// Environment is one of development, staging, production.
	Environment string `yaml:"environment" mapstructure:"environment"`

	// Debug enables verbose logging. Forced on in development.
	Debug bool `yaml:"debug" mapstructure:"debug"`

	// API configures the HTTP transport to the backend.
	API httpclient.Config `yaml:"api" mapstructure:"api"`

	// Logging configures structured log output.
	Logging logger.Config `yaml:"logging" mapstructure:"logging"`

	// Cache configures the entity cache.
	Cache cache.Config `yaml:"cache" mapstructure:"cache"`

	// TokenFile is where persisted session tokens live. Empty keeps tokens
	// in memory only.
	TokenFile string `yaml:"token_file" mapstructure:"token_file"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "clientkit"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Debug && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
	if c.API.Name == "" {
		c.API.Name = c.Name
	}
	if c.TokenFile == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.TokenFile = filepath.Join(home, ".config", c.Name, "tokens.json")
		}
	}
	c.API.ApplyDefaults()
	c.Logging.ApplyDefaults()
	c.Cache.ApplyDefaults()
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	validEnvs := []string{"development", "staging", "production"}
	found := false
	for _, v := range validEnvs {
		if c.Environment == v {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("config: environment must be one of [development, staging, production] (got: %s)", c.Environment)
	}
	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("config: api: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config: logging: %w", err)
	}
	return nil
}
