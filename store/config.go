package store

import (
	"time"

	"github.com/kbukum/transcriptkit/validation"
)

// Config groups the persistence settings.
type Config struct {
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	Cache    CacheConfig    `yaml:"cache" mapstructure:"cache"`
}

// ApplyDefaults fills zero values with defaults.
func (c *Config) ApplyDefaults() {
	c.Database.ApplyDefaults()
	c.Cache.ApplyDefaults()
}

// Validate checks both sections.
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return err
	}
	return c.Cache.Validate()
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	// DSN is the SQLite database file or URI (":memory:" for tests).
	DSN string `yaml:"dsn" mapstructure:"dsn" validate:"required"`
	// MaxOpenConns sets the maximum number of open connections to the database.
	MaxOpenConns int `yaml:"max_open_conns" mapstructure:"max_open_conns" validate:"gte=1"`
	// MaxIdleConns sets the maximum number of idle connections in the pool.
	MaxIdleConns int `yaml:"max_idle_conns" mapstructure:"max_idle_conns" validate:"gte=1,ltefield=MaxOpenConns"`
	// ConnMaxLifetime is the maximum time a connection may be reused.
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
	// ConnMaxIdleTime is the maximum time a connection may sit idle.
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" mapstructure:"conn_max_idle_time"`
	// MaxRetries is the number of connection attempts before giving up.
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries" validate:"gte=1"`
	// AutoMigrate creates or updates the schema on startup.
	AutoMigrate bool `yaml:"auto_migrate" mapstructure:"auto_migrate"`
	// SlowQueryThreshold is the duration above which queries are logged as slow.
	SlowQueryThreshold time.Duration `yaml:"slow_query_threshold" mapstructure:"slow_query_threshold"`
	// LogLevel is the GORM log level (silent, error, warn, info).
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"oneof=silent error warn info"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *DatabaseConfig) ApplyDefaults() {
	if c.DSN == "" {
		c.DSN = "transcriptkit.db"
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 1
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 1
	}
	if c.ConnMaxLifetime == 0 {
		c.ConnMaxLifetime = time.Hour
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.SlowQueryThreshold == 0 {
		c.SlowQueryThreshold = 200 * time.Millisecond
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
}

// Validate checks the configuration.
func (c *DatabaseConfig) Validate() error {
	return validation.Validate(c)
}

// CacheConfig holds Redis connection configuration for the transcript cache.
type CacheConfig struct {
	// Enabled turns on the Redis cache. When false, reads go to the database.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Addr is the Redis server address (host:port).
	Addr string `yaml:"addr" mapstructure:"addr" validate:"required_if=Enabled true"`
	// Password is the Redis server password.
	Password string `yaml:"password" mapstructure:"password"`
	// DB is the Redis database number.
	DB int `yaml:"db" mapstructure:"db" validate:"gte=0"`
	// PoolSize is the maximum number of socket connections.
	PoolSize int `yaml:"pool_size" mapstructure:"pool_size" validate:"gte=1"`
	// MaxRetries is the maximum number of retries before giving up.
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries" validate:"gte=0"`
	// DialTimeout is the timeout for establishing new connections.
	DialTimeout time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`
	// ReadTimeout is the timeout for socket reads.
	ReadTimeout time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	// WriteTimeout is the timeout for socket writes.
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	// TTL is how long a cached transcript lives. 0 means no expiration.
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl" validate:"gte=0"`
	// KeyPrefix namespaces cache keys.
	KeyPrefix string `yaml:"key_prefix" mapstructure:"key_prefix"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *CacheConfig) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 10
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 3 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 3 * time.Second
	}
	if c.TTL == 0 {
		c.TTL = 24 * time.Hour
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "transcript"
	}
}

// Validate checks the configuration. A disabled cache is always valid.
func (c *CacheConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.Validate(c)
}
