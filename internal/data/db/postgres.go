package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yungbote/contacts-backend/internal/platform/logger"
)

type PostgresConfig struct {
	URL            string
	MaxConns       int32
	MinConns       int32
	ConnectTimeout time.Duration
}

// PostgresService owns the connection pool that sessions borrow from.
type PostgresService struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

func NewPostgresService(ctx context.Context, logg *logger.Logger, cfg PostgresConfig) (*PostgresService, error) {
	serviceLog := logg.With("service", "PostgresService")

	dsn := strings.TrimSpace(cfg.URL)
	if dsn == "" {
		return nil, fmt.Errorf("postgres: connection string is empty")
	}
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse connection string: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping Postgres: %w", err)
	}
	serviceLog.Info("Postgres pool ready",
		"host", poolCfg.ConnConfig.Host,
		"database", poolCfg.ConnConfig.Database,
		"max_conns", poolCfg.MaxConns,
	)
	return &PostgresService{pool: pool, log: serviceLog}, nil
}

func (s *PostgresService) Pool() *pgxpool.Pool { return s.pool }

// Ping reports whether the database answers within ctx.
func (s *PostgresService) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresService) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
	s.log.Info("Postgres pool closed")
}
