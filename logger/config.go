package logger

import "github.com/kbukum/transcriptkit/validation"

// Config contains logging configuration.
type Config struct {
	Level     string `yaml:"level" mapstructure:"level" validate:"oneof=trace debug info warn error fatal"`
	Format    string `yaml:"format" mapstructure:"format" validate:"oneof=json console text"`
	Output    string `yaml:"output" mapstructure:"output" validate:"required"` // stdout, stderr or a file path
	NoColor   bool   `yaml:"no_color" mapstructure:"no_color"`
	Timestamp bool   `yaml:"timestamp" mapstructure:"timestamp"`
	Caller    bool   `yaml:"caller" mapstructure:"caller"`

	// Rotation settings, used only when Output is a file path.
	MaxSize    int  `yaml:"max_size" mapstructure:"max_size" validate:"gte=0"`       // megabytes
	MaxBackups int  `yaml:"max_backups" mapstructure:"max_backups" validate:"gte=0"` // number of backups
	MaxAge     int  `yaml:"max_age" mapstructure:"max_age" validate:"gte=0"`         // days
	Compress   bool `yaml:"compress" mapstructure:"compress"`
	LocalTime  bool `yaml:"local_time" mapstructure:"local_time"`
}

// ApplyDefaults applies default values to logging configuration. Logs go
// to stderr unless told otherwise so command output on stdout stays clean.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "console"
	}
	if c.Output == "" {
		c.Output = "stderr"
	}
	if c.MaxSize == 0 {
		c.MaxSize = 100
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = 3
	}
	if c.MaxAge == 0 {
		c.MaxAge = 28
	}
	c.Timestamp = true
}

// Validate validates logging configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// isFileOutput reports whether Output names a file rather than a standard stream.
func (c *Config) isFileOutput() bool {
	switch c.Output {
	case "", "stdout", "stderr":
		return false
	}
	return true
}
