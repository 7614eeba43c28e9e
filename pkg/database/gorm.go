package database

import (
	"context"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PoolConfig sizes the sql.DB pool behind gorm.
type PoolConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: time.Hour,
	}
}

// Option tweaks connection setup.
type Option func(*options)

type options struct {
	pool     PoolConfig
	logLevel logger.LogLevel
}

func WithPool(pool PoolConfig) Option {
	return func(o *options) { o.pool = pool }
}

// WithLogLevel sets gorm's SQL log level. Production runs at Warn so slow
// queries still show up.
func WithLogLevel(level logger.LogLevel) Option {
	return func(o *options) { o.logLevel = level }
}

func newLogger(level logger.LogLevel) logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true, // keep chat text out of the SQL log
			Colorful:                  true,
		},
	)
}

func NewGormDBFromDSN(dsn string, opts ...Option) (*gorm.DB, error) {
	o := options{pool: DefaultPoolConfig(), logLevel: logger.Warn}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newLogger(o.logLevel),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(o.pool.MaxIdleConns)
	sqlDB.SetMaxOpenConns(o.pool.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(o.pool.ConnMaxLifetime)

	return db, nil
}

// Ping checks the underlying connection. Used by health checks and diagnostics.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
