package app

import (
	"github.com/yungbote/contacts-backend/internal/data/aggregates"
	"github.com/yungbote/contacts-backend/internal/data/session"
	"github.com/yungbote/contacts-backend/internal/observability"
	"github.com/yungbote/contacts-backend/internal/platform/logger"
	"github.com/yungbote/contacts-backend/internal/services"
)

type Services struct {
	Sessions *session.Factory
	Contacts services.ContactService
}

func wireServices(log *logger.Logger, cfg Config, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")
	iso, err := session.ParseIsolation(cfg.Database.WriteIsolation)
	if err != nil {
		return Services{}, err
	}
	sessions := session.NewFactory(session.NewPoolConnector(clients.Postgres.Pool()), log, session.FactoryConfig{
		WriteIsolation: iso,
		ReleaseTimeout: cfg.Database.ReleaseTimeout,
	})
	contactSessions := aggregates.NewContactSessions(aggregates.BaseDeps{
		Sessions: sessions,
		Hooks:    aggregates.NewObservabilityHooks(metrics),
	})
	return Services{
		Sessions: sessions,
		Contacts: services.NewContactService(log, contactSessions, clients.Cache),
	}, nil
}
