package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kbukum/transcriptkit/errors"
	"github.com/kbukum/transcriptkit/logger"
)

// DB wraps a GORM connection.
type DB struct {
	gorm   *gorm.DB
	log    *logger.Logger
	closed bool
	mu     sync.Mutex
}

// Open connects to the database, retrying with a linear backoff, and runs
// the schema migration when AutoMigrate is set.
func Open(ctx context.Context, cfg DatabaseConfig) (*DB, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.Get("store")

	gormCfg := &gorm.Config{
		Logger:         newGormLogger(log, cfg.SlowQueryThreshold, parseLogLevel(cfg.LogLevel)),
		TranslateError: true,
	}

	var err error
	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var gdb *gorm.DB
		gdb, err = connect(ctx, cfg, gormCfg)
		if err == nil {
			log.Info("database connection established", logger.Fields(logger.FieldAttempt, attempt))
			db := &DB{gorm: gdb, log: log}
			if cfg.AutoMigrate {
				if err := db.Migrate(ctx); err != nil {
					_ = db.Close()
					return nil, err
				}
			}
			return db, nil
		}

		if attempt < cfg.MaxRetries {
			backoff := time.Duration(attempt) * time.Second
			log.Warn("database connection attempt failed, retrying", logger.MergeWithError(logger.Fields(
				logger.FieldAttempt, attempt,
				"backoff", backoff.String(),
			), err))
			if waitErr := sleep(ctx, backoff); waitErr != nil {
				return nil, waitErr
			}
		}
	}
	return nil, errors.DatabaseError(fmt.Errorf("connect after %d attempts: %w", cfg.MaxRetries, err))
}

func connect(ctx context.Context, cfg DatabaseConfig, gormCfg *gorm.Config) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(cfg.DSN), gormCfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
	return gdb, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Migrate creates or updates the tables used by Repository.
func (d *DB) Migrate(ctx context.Context) error {
	models := []interface{}{&MeetingRecord{}, &SegmentRecord{}, &TranscriptRecord{}}
	d.log.Info("running auto-migration", logger.Fields("models", len(models)))
	if err := d.gorm.WithContext(ctx).AutoMigrate(models...); err != nil {
		return errors.DatabaseError(err).WithDetail(logger.FieldOperation, "migrate")
	}
	return nil
}

// PingContext verifies the connection is alive.
func (d *DB) PingContext(ctx context.Context) error {
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// WithContext returns a GORM session scoped to ctx.
func (d *DB) WithContext(ctx context.Context) *gorm.DB {
	return d.gorm.WithContext(ctx)
}

// Close closes the connection pool. Safe to call multiple times.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	d.log.Info("closing database connection")
	d.closed = true
	return sqlDB.Close()
}
