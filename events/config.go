package events

import (
	"time"

	"github.com/kbukum/transcriptkit/validation"
)

// Config holds Kafka producer configuration.
type Config struct {
	// Enabled controls whether events are published. When false they are dropped.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Brokers is the list of Kafka broker addresses.
	Brokers []string `yaml:"brokers" mapstructure:"brokers" validate:"required_if=Enabled true"`
	// Topic receives every lifecycle event.
	Topic string `yaml:"topic" mapstructure:"topic" validate:"required_if=Enabled true"`

	// TLS
	EnableTLS     bool   `yaml:"enable_tls" mapstructure:"enable_tls"`
	TLSSkipVerify bool   `yaml:"tls_skip_verify" mapstructure:"tls_skip_verify"`
	TLSCAFile     string `yaml:"tls_ca_file" mapstructure:"tls_ca_file"`
	TLSCertFile   string `yaml:"tls_cert_file" mapstructure:"tls_cert_file"`
	TLSKeyFile    string `yaml:"tls_key_file" mapstructure:"tls_key_file"`

	// SASL
	EnableSASL    bool   `yaml:"enable_sasl" mapstructure:"enable_sasl"`
	SASLMechanism string `yaml:"sasl_mechanism" mapstructure:"sasl_mechanism" validate:"omitempty,oneof=PLAIN SCRAM-SHA-256 SCRAM-SHA-512"`
	Username      string `yaml:"username" mapstructure:"username"`
	Password      string `yaml:"password" mapstructure:"password"`

	// Producer settings
	Compression  string        `yaml:"compression" mapstructure:"compression" validate:"oneof=none gzip snappy lz4 zstd"`
	Retries      int           `yaml:"retries" mapstructure:"retries" validate:"gte=1"`
	BatchSize    int           `yaml:"batch_size" mapstructure:"batch_size" validate:"gte=1"`
	BatchTimeout time.Duration `yaml:"batch_timeout" mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	RequiredAcks int           `yaml:"required_acks" mapstructure:"required_acks" validate:"oneof=-1 0 1"`

	// Connection settings
	IdleTimeout time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	MetadataTTL time.Duration `yaml:"metadata_ttl" mapstructure:"metadata_ttl"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if len(c.Brokers) == 0 {
		c.Brokers = []string{"localhost:9092"}
	}
	if c.Topic == "" {
		c.Topic = "meeting-events"
	}
	if c.Compression == "" {
		c.Compression = "snappy"
	}
	if c.Retries <= 0 {
		c.Retries = 3
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 1
	}
	if c.BatchTimeout == 0 {
		c.BatchTimeout = 10 * time.Millisecond
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.RequiredAcks == 0 {
		c.RequiredAcks = -1 // all replicas
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 30 * time.Second
	}
	if c.MetadataTTL == 0 {
		c.MetadataTTL = 6 * time.Second
	}
	if c.SASLMechanism == "" && c.EnableSASL {
		c.SASLMechanism = "PLAIN"
	}
}

// Validate checks the configuration. A disabled publisher is always valid.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if err := validation.Validate(c); err != nil {
		return err
	}
	return validation.New().
		Check(!c.EnableSASL || c.Username != "", "username", "is required when SASL is enabled").
		Check((c.TLSCertFile == "") == (c.TLSKeyFile == ""), "tls_key_file", "must be set together with tls_cert_file").
		Err()
}
