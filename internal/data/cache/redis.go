package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/contacts-backend/internal/domain/contacts"
	"github.com/yungbote/contacts-backend/internal/observability"
	"github.com/yungbote/contacts-backend/internal/platform/logger"
)

const (
	defaultTTL    = 5 * time.Minute
	defaultPrefix = "contacts:contact:"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

type redisCache struct {
	log     *logger.Logger
	rdb     *goredis.Client
	ttl     time.Duration
	prefix  string
	metrics *observability.Metrics
}

// NewRedisClient dials and pings redis.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*goredis.Client, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// NewRedisContactCache wraps an existing client. Closing the cache closes the client.
func NewRedisContactCache(rdb *goredis.Client, log *logger.Logger, cfg RedisConfig, metrics *observability.Metrics) ContactCache {
	if log == nil {
		log = logger.Nop()
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &redisCache{
		log:     log.With("service", "RedisContactCache"),
		rdb:     rdb,
		ttl:     ttl,
		prefix:  prefix,
		metrics: metrics,
	}
}

func (c *redisCache) key(id uuid.UUID) string { return c.prefix + id.String() }

func (c *redisCache) genKey(id uuid.UUID) string { return c.prefix + id.String() + ":gen" }

// genTTL keeps the generation counter alive well past any in-flight read-through.
func (c *redisCache) genTTL() time.Duration { return 2 * c.ttl }

func (c *redisCache) Get(ctx context.Context, id uuid.UUID) (Lookup, error) {
	vals, err := c.rdb.MGet(ctx, c.key(id), c.genKey(id)).Result()
	if err != nil {
		c.metrics.ObserveCacheLookup("error")
		return Lookup{}, fmt.Errorf("cache get: %w", err)
	}
	version, err := parseGen(vals[1])
	if err != nil {
		c.metrics.ObserveCacheLookup("error")
		return Lookup{}, fmt.Errorf("cache get: %w", err)
	}
	raw, ok := vals[0].(string)
	if !ok {
		c.metrics.ObserveCacheLookup("miss")
		return Lookup{Version: version}, nil
	}
	var out contacts.Contact
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		// A corrupt entry is dropped and treated as a miss.
		c.metrics.ObserveCacheLookup("error")
		c.log.Warn("dropping undecodable cache entry", "contact_id", id.String(), "error", err)
		_ = c.rdb.Del(ctx, c.key(id)).Err()
		return Lookup{Version: version}, nil
	}
	c.metrics.ObserveCacheLookup("hit")
	return Lookup{Contact: &out, Hit: true, Version: version}, nil
}

func (c *redisCache) Set(ctx context.Context, contact *contacts.Contact, version int64) error {
	if contact == nil {
		return nil
	}
	raw, err := json.Marshal(contact)
	if err != nil {
		return err
	}
	gen := c.genKey(contact.ID)
	err = c.rdb.Watch(ctx, func(tx *goredis.Tx) error {
		v, err := tx.Get(ctx, gen).Result()
		if err != nil && !errors.Is(err, goredis.Nil) {
			return err
		}
		cur, err := parseGen(v)
		if err != nil {
			return err
		}
		if cur != version {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(p goredis.Pipeliner) error {
			p.Set(ctx, c.key(contact.ID), raw, c.ttl)
			return nil
		})
		return err
	}, gen)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errStale), errors.Is(err, goredis.TxFailedErr):
		c.log.Debug("skipping stale cache fill", "contact_id", contact.ID.String(), "version", version)
		return nil
	default:
		return fmt.Errorf("cache set: %w", err)
	}
}

func (c *redisCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	gen := c.genKey(id)
	_, err := c.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Incr(ctx, gen)
		p.Expire(ctx, gen, c.genTTL())
		p.Del(ctx, c.key(id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

func (c *redisCache) Close() error {
	return c.rdb.Close()
}

var errStale = errors.New("cache entry invalidated since lookup")

// parseGen reads a generation counter; a missing counter is generation zero.
func parseGen(v any) (int64, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case string:
		if t == "" {
			return 0, nil
		}
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("bad generation %q: %w", t, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("bad generation type %T", v)
	}
}
