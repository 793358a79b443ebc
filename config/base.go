package config

import (
	"github.com/kbukum/transcriptkit/validation"
	"github.com/kbukum/transcriptkit/version"
)

// BaseConfig contains essential fields that every deployment needs.
type BaseConfig struct {
	Name        string `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Version     string `yaml:"version" mapstructure:"version"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`
}

// ApplyDefaults applies default values to base configuration.
func (c *BaseConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = ServiceName
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Version == "" {
		c.Version = version.Get().Short()
	}
	if c.Environment == "development" {
		c.Debug = true
	}
}

// Validate validates base configuration.
func (c *BaseConfig) Validate() error {
	return validation.Validate(c)
}
