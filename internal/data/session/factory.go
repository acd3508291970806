package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yungbote/contacts-backend/internal/platform/logger"
)

type FactoryConfig struct {
	// WriteIsolation is the isolation level of write transactions. Empty means read committed.
	WriteIsolation pgx.TxIsoLevel
	ReleaseTimeout time.Duration
}

// Factory opens sessions against one Connector.
type Factory struct {
	connector Connector
	log       *logger.Logger
	cfg       FactoryConfig
}

func NewFactory(connector Connector, log *logger.Logger, cfg FactoryConfig) *Factory {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.WriteIsolation == "" {
		cfg.WriteIsolation = pgx.ReadCommitted
	}
	return &Factory{
		connector: connector,
		log:       log.With("service", "SessionFactory"),
		cfg:       cfg,
	}
}

// Read opens a session that runs statements on the bare connection, without a transaction.
func (f *Factory) Read() *Session {
	return New(f.connector, f.log, Options{
		Mode:           ModeRead,
		ReleaseTimeout: f.cfg.ReleaseTimeout,
	})
}

// Write opens a transactional session at the configured isolation level.
func (f *Factory) Write() *Session {
	return New(f.connector, f.log, Options{
		Mode:           ModeWrite,
		TxOptions:      &pgx.TxOptions{IsoLevel: f.cfg.WriteIsolation},
		ReleaseTimeout: f.cfg.ReleaseTimeout,
	})
}

// ParseIsolation maps a config value such as "serializable" or "read_committed" to a pgx level.
func ParseIsolation(raw string) (pgx.TxIsoLevel, error) {
	norm := strings.NewReplacer("_", " ", "-", " ").Replace(strings.ToLower(strings.TrimSpace(raw)))
	switch norm {
	case "", "read committed":
		return pgx.ReadCommitted, nil
	case "repeatable read":
		return pgx.RepeatableRead, nil
	case "serializable":
		return pgx.Serializable, nil
	case "read uncommitted":
		return pgx.ReadUncommitted, nil
	default:
		return "", fmt.Errorf("unknown transaction isolation level %q", raw)
	}
}
