package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/contacts-backend/internal/data/cache"
	"github.com/yungbote/contacts-backend/internal/data/db"
	"github.com/yungbote/contacts-backend/internal/observability"
	"github.com/yungbote/contacts-backend/internal/platform/logger"
)

type Clients struct {
	Postgres *db.PostgresService
	Redis    *goredis.Client
	Cache    cache.ContactCache
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(ctx, log, cfg.Database.URL); err != nil {
			return out, fmt.Errorf("postgres automigrate: %w", err)
		}
	}

	pg, err := db.NewPostgresService(ctx, log, db.PostgresConfig{
		URL: cfg.Database.URL,
		// Validate keeps both sizes within int32.
		MaxConns:       int32(cfg.Database.MaxConns),
		MinConns:       int32(cfg.Database.MinConns),
		ConnectTimeout: cfg.Database.ConnectTimeout,
	})
	if err != nil {
		return out, fmt.Errorf("init postgres: %w", err)
	}
	out.Postgres = pg

	redisCfg := cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Redis.TTL,
	}
	if redisCfg.Addr == "" {
		log.Info("Redis not configured; contact cache disabled")
		out.Cache = cache.Noop()
		return out, nil
	}
	rdb, err := cache.NewRedisClient(ctx, redisCfg)
	if err != nil {
		// Redis being down at boot only disables caching.
		log.Warn("Redis unavailable; contact cache disabled", "addr", redisCfg.Addr, "error", err)
		out.Cache = cache.Noop()
		return out, nil
	}
	out.Redis = rdb
	out.Cache = cache.NewRedisContactCache(rdb, log, redisCfg, metrics)
	return out, nil
}

func (c Clients) Close(log *logger.Logger) {
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			log.Warn("contact cache close failed", "error", err)
		}
	}
	if c.Postgres != nil {
		c.Postgres.Close()
	}
}
