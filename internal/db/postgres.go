package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/yigit/iatracker/internal/config"
)

const connectTimeout = 10 * time.Second

// PostgresDB owns the shared connection pool.
type PostgresDB struct {
	Pool *pgxpool.Pool
}

// poolConfig translates the database section into pgxpool settings. Connections that fail a
// ping are discarded on acquire.
func poolConfig(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.GetPostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	dbCfg := cfg.Database
	pc.MaxConns = int32(dbCfg.MaxOpenConns)
	if dbCfg.MaxIdleConns <= dbCfg.MaxOpenConns {
		pc.MinConns = int32(dbCfg.MaxIdleConns)
	}
	if lifetime := config.Duration(dbCfg.ConnMaxLifetime); lifetime > 0 {
		pc.MaxConnLifetime = lifetime
	}
	pc.BeforeAcquire = func(ctx context.Context, conn *pgx.Conn) bool {
		if err := conn.Ping(ctx); err != nil {
			lgr.Warn().Err(err).Msg("Dropping unhealthy pooled connection")
			return false
		}
		return true
	}
	return pc, nil
}

// NewPostgresDB opens the pool and pings the server once before returning.
func NewPostgresDB(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*PostgresDB, error) {
	pc, err := poolConfig(cfg, lgr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping %s:%s: %w", cfg.Database.Host, cfg.Database.Port, err)
	}

	lgr.Info().
		Str("host", cfg.Database.Host).
		Str("database", cfg.Database.DBName).
		Int32("maxConns", pc.MaxConns).
		Msg("Database pool ready")
	return &PostgresDB{Pool: pool}, nil
}

func (db *PostgresDB) Close() {
	if db != nil && db.Pool != nil {
		db.Pool.Close()
	}
}
