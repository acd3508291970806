package app

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/contacts-backend/internal/data/session"
	"github.com/yungbote/contacts-backend/internal/observability"
	"github.com/yungbote/contacts-backend/internal/platform/envutil"
)

type HTTPConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins       []string      `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	URL            string        `yaml:"url"`
	MaxConns       int           `yaml:"max_conns"`
	MinConns       int           `yaml:"min_conns"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	// WriteIsolation is one of read_committed, repeatable_read, serializable.
	WriteIsolation string        `yaml:"write_isolation"`
	ReleaseTimeout time.Duration `yaml:"release_timeout"`
	AutoMigrate    bool          `yaml:"auto_migrate"`
}

type RedisConfig struct {
	// Addr enables the contact cache when set.
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled        bool          `yaml:"enabled"`
	ScrapeInterval time.Duration `yaml:"scrape_interval"`
}

type OtelConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	Endpoint    string  `yaml:"endpoint"`
	Headers     string  `yaml:"headers"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

type Config struct {
	Env      string         `yaml:"env"`
	Version  string         `yaml:"version"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Otel     OtelConfig     `yaml:"otel"`
}

func defaultConfig() Config {
	return Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       2 * time.Minute,
			ShutdownTimeout:   15 * time.Second,
		},
		Database: DatabaseConfig{
			MaxConns:       10,
			ConnectTimeout: 10 * time.Second,
			WriteIsolation: "read_committed",
			ReleaseTimeout: 5 * time.Second,
			AutoMigrate:    true,
		},
		Redis: RedisConfig{
			TTL: 5 * time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled:        true,
			ScrapeInterval: 15 * time.Second,
		},
		Otel: OtelConfig{
			ServiceName: "contacts-backend",
			SampleRatio: 1,
		},
	}
}

// LoadConfig reads defaults, then the YAML file named by CONFIG_FILE (or
// ./config/config.yaml when present), then environment overrides.
func LoadConfig() (Config, error) {
	cfg := defaultConfig()

	path := strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			p := filepath.Join(wd, "config", "config.yaml")
			if _, err := os.Stat(p); err == nil {
				path = p
			}
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Env = envutil.String("LOG_MODE", cfg.Env)
	cfg.Version = envutil.String("APP_VERSION", cfg.Version)

	cfg.HTTP.Addr = envutil.String("HTTP_ADDR", cfg.HTTP.Addr)
	if port := envutil.String("PORT", ""); port != "" {
		cfg.HTTP.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	cfg.HTTP.ShutdownTimeout = envutil.Duration("HTTP_SHUTDOWN_TIMEOUT", cfg.HTTP.ShutdownTimeout)
	if origins := envutil.String("CORS_ALLOWED_ORIGINS", ""); origins != "" {
		cfg.HTTP.CORSOrigins = strings.Split(origins, ",")
	}

	cfg.Database.URL = envutil.String("DATABASE_URL", cfg.Database.URL)
	cfg.Database.MaxConns = envutil.Int("DB_MAX_CONNS", cfg.Database.MaxConns)
	cfg.Database.MinConns = envutil.Int("DB_MIN_CONNS", cfg.Database.MinConns)
	cfg.Database.ConnectTimeout = envutil.Duration("DB_CONNECT_TIMEOUT", cfg.Database.ConnectTimeout)
	cfg.Database.WriteIsolation = envutil.String("DB_WRITE_ISOLATION", cfg.Database.WriteIsolation)
	cfg.Database.ReleaseTimeout = envutil.Duration("DB_RELEASE_TIMEOUT", cfg.Database.ReleaseTimeout)
	cfg.Database.AutoMigrate = envutil.Bool("DB_AUTO_MIGRATE", cfg.Database.AutoMigrate)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = envutil.String("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = envutil.Int("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.TTL = envutil.Duration("CONTACT_CACHE_TTL", cfg.Redis.TTL)

	cfg.Metrics.Enabled = envutil.Bool("METRICS_ENABLED", cfg.Metrics.Enabled)

	cfg.Otel.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Otel.Enabled)
	cfg.Otel.ServiceName = envutil.String("OTEL_SERVICE_NAME", cfg.Otel.ServiceName)
	cfg.Otel.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Otel.Endpoint)
	cfg.Otel.Headers = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", cfg.Otel.Headers)
	cfg.Otel.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Otel.Insecure)
	cfg.Otel.SampleRatio = envutil.Float("OTEL_SAMPLE_RATIO", cfg.Otel.SampleRatio)
}

// Validate rejects configurations the service cannot start with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Database.URL) == "" {
		errs = append(errs, errors.New("missing database connection string (set DATABASE_URL or database.url)"))
	}
	if _, err := session.ParseIsolation(c.Database.WriteIsolation); err != nil {
		errs = append(errs, err)
	}
	if !validPoolSize(c.Database.MinConns) || !validPoolSize(c.Database.MaxConns) ||
		(c.Database.MaxConns > 0 && c.Database.MinConns > c.Database.MaxConns) {
		errs = append(errs, fmt.Errorf("invalid pool size: min=%d max=%d", c.Database.MinConns, c.Database.MaxConns))
	}
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		errs = append(errs, errors.New("missing http address"))
	}
	if c.Otel.SampleRatio < 0 || c.Otel.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("otel sample ratio %v out of range [0,1]", c.Otel.SampleRatio))
	}
	return errors.Join(errs...)
}

// validPoolSize accepts what pgxpool can hold in its int32 fields.
func validPoolSize(n int) bool {
	return n >= 0 && int64(n) <= math.MaxInt32
}

func (c Config) otel() observability.OtelConfig {
	return observability.OtelConfig{
		Enabled:     c.Otel.Enabled,
		ServiceName: c.Otel.ServiceName,
		Environment: c.Env,
		Version:     c.Version,
		Endpoint:    c.Otel.Endpoint,
		Headers:     observability.ParseHeaders(c.Otel.Headers),
		Insecure:    c.Otel.Insecure,
		SampleRatio: c.Otel.SampleRatio,
	}
}
