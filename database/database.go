package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// slogLogger forwards gorm log output to the process wide slog handler so
// database errors show up next to the sync phase logs.
type slogLogger struct {
	level logger.LogLevel
}

func (s *slogLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &slogLogger{level: level}
}

func (s *slogLogger) Info(ctx context.Context, msg string, data ...any) {
	if s.level >= logger.Info {
		slog.InfoContext(ctx, msg, "data", data)
	}
}

func (s *slogLogger) Warn(ctx context.Context, msg string, data ...any) {
	if s.level >= logger.Warn {
		slog.WarnContext(ctx, msg, "data", data)
	}
}

func (s *slogLogger) Error(ctx context.Context, msg string, data ...any) {
	if s.level >= logger.Error {
		slog.ErrorContext(ctx, msg, "data", data)
	}
}

func (s *slogLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
		return
	}
	sql, rows := fc()
	slog.ErrorContext(ctx, "database error", "err", err, "sql", sql, "rows", rows, "duration", time.Since(begin))
}

// getDSN builds a PostgreSQL connection string from parameters
func getDSN(host, user, password, dbname, port string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, dbname)
}

func NewPgxConnPool(cfg PoolConfig) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(getDSN(cfg.Host, cfg.User, cfg.Password, cfg.DBName, cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("could not parse pgx pool config: %w", err)
	}
	config.MaxConnIdleTime = cfg.ConnMaxIdleTime
	config.MaxConnLifetime = cfg.ConnMaxLifetime
	config.MaxConns = cfg.MaxOpenConns
	config.MinConns = cfg.MinConns

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("could not create pgx pool: %w", err)
	}

	slog.Info("database connection pool configured",
		"maxOpenConns", cfg.MaxOpenConns,
		"connMaxLifetime", cfg.ConnMaxLifetime,
		"connMaxIdleTime", cfg.ConnMaxIdleTime,
	)

	return pool, nil
}

// NewGormDB creates a GORM instance using an existing *pgxpool.Pool
func NewGormDB(existingPool *pgxpool.Pool) (*gorm.DB, error) {
	db := stdlib.OpenDBFromPool(existingPool)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{
		Logger: &slogLogger{level: logger.Warn},
	})
	if err != nil {
		return nil, err
	}

	return gormDB, nil
}

// NewConnection is the convenience path used by the CLI and tests that do
// not manage their own pool.
func NewConnection(host, user, password, dbname, port string) (*gorm.DB, error) {
	pool, err := NewPgxConnPool(PoolConfig{
		Host: host, User: user, Password: password, DBName: dbname, Port: port,
		MaxOpenConns:    10,
		MinConns:        1,
		ConnMaxLifetime: 4 * time.Hour,
		ConnMaxIdleTime: 15 * time.Minute,
	})
	if err != nil {
		return nil, err
	}
	return NewGormDB(pool)
}

func IsDuplicateKeyError(err error) bool {
	return strings.HasPrefix(err.Error(), "ERROR: duplicate key value violates unique constraint")
}
