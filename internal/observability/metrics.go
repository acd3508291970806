package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/yungbote/contacts-backend/internal/platform/logger"
)

const defaultScrapeInterval = 10 * time.Second

// Metrics is the process-wide metric set, exposed in Prometheus text format.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	aggregateOps       *CounterVec
	aggregateLatency   *HistogramVec
	aggregateConflicts *CounterVec
	aggregateRetries   *CounterVec

	cacheLookups *CounterVec

	pgPool    *GaugeVec
	redisUp   *Gauge
	redisPing *Gauge
}

func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("contacts_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"contacts_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		apiInflight:  NewGauge("contacts_api_inflight_requests", "In-flight API requests."),
		aggregateOps: NewCounterVec("contacts_aggregate_operations_total", "Aggregate operations by name/status.", []string{"operation", "status"}),
		aggregateLatency: NewHistogramVec(
			"contacts_aggregate_operation_duration_seconds",
			"Aggregate operation latency in seconds by name/status.",
			[]string{"operation", "status"},
			[]float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		),
		aggregateConflicts: NewCounterVec("contacts_aggregate_conflicts_total", "Aggregate writes rejected by a conflict.", []string{"operation"}),
		aggregateRetries:   NewCounterVec("contacts_aggregate_retryable_total", "Aggregate operations failing with a retryable error.", []string{"operation"}),
		cacheLookups:       NewCounterVec("contacts_cache_lookups_total", "Contact cache lookups by result.", []string{"result"}),
		pgPool:             NewGaugeVec("contacts_postgres_pool", "pgx pool statistics.", []string{"metric"}),
		redisUp:            NewGauge("contacts_redis_up", "Redis connectivity (1=up, 0=down)."),
		redisPing:          NewGauge("contacts_redis_ping_seconds", "Redis ping latency in seconds."),
	}
}

// Handler serves the exposition text.
func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if m == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		_ = m.WritePrometheus(w)
	})
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []collector{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.aggregateOps, m.aggregateLatency, m.aggregateConflicts, m.aggregateRetries,
		m.cacheLookups,
		m.pgPool, m.redisUp, m.redisPing,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Add(1)
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Add(-1)
}

func (m *Metrics) ObserveAggregateOperation(name, status string, dur time.Duration) {
	if m == nil {
		return
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "unknown"
	}
	m.aggregateOps.Inc(name, status)
	m.aggregateLatency.Observe(dur.Seconds(), name, status)
}

func (m *Metrics) IncAggregateConflict(name string) {
	if m == nil {
		return
	}
	m.aggregateConflicts.Inc(name)
}

func (m *Metrics) IncAggregateRetry(name string) {
	if m == nil {
		return
	}
	m.aggregateRetries.Inc(name)
}

// ObserveCacheLookup records a hit, a miss, or an error of the contact cache.
func (m *Metrics) ObserveCacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.Inc(result)
}

// StartPostgresCollector samples pool statistics until ctx is done.
func (m *Metrics) StartPostgresCollector(ctx context.Context, pool *pgxpool.Pool, interval time.Duration) {
	if m == nil || pool == nil {
		return
	}
	if interval <= 0 {
		interval = defaultScrapeInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.recordPoolStat(pool.Stat())
			}
		}
	}()
}

func (m *Metrics) recordPoolStat(s *pgxpool.Stat) {
	if s == nil {
		return
	}
	m.pgPool.Set(float64(s.TotalConns()), "total_conns")
	m.pgPool.Set(float64(s.AcquiredConns()), "acquired_conns")
	m.pgPool.Set(float64(s.IdleConns()), "idle_conns")
	m.pgPool.Set(float64(s.MaxConns()), "max_conns")
	m.pgPool.Set(float64(s.AcquireCount()), "acquire_count")
	m.pgPool.Set(float64(s.EmptyAcquireCount()), "empty_acquire_count")
	m.pgPool.Set(s.AcquireDuration().Seconds(), "acquire_duration_seconds")
	m.pgPool.Set(float64(s.CanceledAcquireCount()), "canceled_acquire_count")
}

// StartRedisCollector pings rdb periodically until ctx is done.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *redis.Client, interval time.Duration) {
	if m == nil || rdb == nil {
		return
	}
	if interval <= 0 {
		interval = defaultScrapeInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil && ctx.Err() == nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
