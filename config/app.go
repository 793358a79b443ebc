package config

import (
	"fmt"

	"github.com/kbukum/transcriptkit/engine"
	"github.com/kbukum/transcriptkit/events"
	"github.com/kbukum/transcriptkit/logger"
	"github.com/kbukum/transcriptkit/store"
	"github.com/kbukum/transcriptkit/telemetry"
	"github.com/kbukum/transcriptkit/transcript"
)

// ServiceName is used to locate config files and tag logs and telemetry.
const ServiceName = "transcriptkit"

// AppConfig is the complete configuration of the binary.
type AppConfig struct {
	Base      BaseConfig        `yaml:"base" mapstructure:"base"`
	Logging   logger.Config     `yaml:"logging" mapstructure:"logging"`
	Assembly  transcript.Config `yaml:"assembly" mapstructure:"assembly"`
	Engines   engine.Config     `yaml:"engines" mapstructure:"engines"`
	Store     store.Config      `yaml:"store" mapstructure:"store"`
	Events    events.Config     `yaml:"events" mapstructure:"events"`
	Telemetry telemetry.Config  `yaml:"telemetry" mapstructure:"telemetry"`
}

// ApplyDefaults fills every section.
func (c *AppConfig) ApplyDefaults() {
	c.Base.ApplyDefaults()
	if c.Base.Debug && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
	c.Logging.ApplyDefaults()
	c.Assembly.ApplyDefaults()
	c.Engines.ApplyDefaults()
	c.Store.ApplyDefaults()
	c.Events.ApplyDefaults()

	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = c.Base.Name
	}
	if c.Telemetry.ServiceVersion == "" {
		c.Telemetry.ServiceVersion = c.Base.Version
	}
	if c.Telemetry.Environment == "" {
		c.Telemetry.Environment = c.Base.Environment
	}
	c.Telemetry.ApplyDefaults()
}

// Validate checks every section and names the first invalid one.
func (c *AppConfig) Validate() error {
	sections := []struct {
		name     string
		validate func() error
	}{
		{"base", c.Base.Validate},
		{"logging", c.Logging.Validate},
		{"assembly", c.Assembly.Validate},
		{"engines", c.Engines.Validate},
		{"store", c.Store.Validate},
		{"events", c.Events.Validate},
		{"telemetry", c.Telemetry.Validate},
	}
	for _, s := range sections {
		if err := s.validate(); err != nil {
			return fmt.Errorf("config.%s: %w", s.name, err)
		}
	}
	return nil
}

// Load reads, defaults and validates the configuration.
func Load(opts ...LoaderOption) (*AppConfig, error) {
	var cfg AppConfig
	if err := LoadConfig(ServiceName, &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
