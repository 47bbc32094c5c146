// Package db: пул соединений Postgres и встроенные миграции.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"shifttrack/internal/shared/config"
	"shifttrack/internal/shared/logger"
)

const defaultConnectTimeout = 5 * time.Second

// NewPool создает пул и проверяет соединение за connect_timeout_seconds
func NewPool(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout(cfg))
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.Database, err)
	}

	log.Info(logger.Entry{
		Action:  "db_connected",
		Message: fmt.Sprintf("connected to %s:%d/%s", cfg.Host, cfg.Port, cfg.Database),
		Additional: map[string]any{
			"max_conns": poolCfg.MaxConns,
			"min_conns": poolCfg.MinConns,
		},
	})

	return pool, nil
}

func poolConfig(cfg config.DBConfig) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 && cfg.MinConns <= poolCfg.MaxConns {
		poolCfg.MinConns = cfg.MinConns
	}
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute
	poolCfg.HealthCheckPeriod = time.Minute
	poolCfg.ConnConfig.ConnectTimeout = connectTimeout(cfg)
	// все времена смен хранятся и читаются в UTC
	poolCfg.ConnConfig.RuntimeParams["timezone"] = "UTC"

	return poolCfg, nil
}

func connectTimeout(cfg config.DBConfig) time.Duration {
	if cfg.ConnectTimeoutSecs <= 0 {
		return defaultConnectTimeout
	}
	return time.Duration(cfg.ConnectTimeoutSecs) * time.Second
}

func Close(pool *pgxpool.Pool, log *logger.Logger) {
	if pool == nil {
		return
	}
	pool.Close()
	log.Info(logger.Entry{Action: "db_closed", Message: "database pool closed"})
}
