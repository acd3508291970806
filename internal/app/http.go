package app

import (
	"github.com/gin-gonic/gin"

	apphttp "github.com/yungbote/contacts-backend/internal/http"
	httpH "github.com/yungbote/contacts-backend/internal/http/handlers"
	"github.com/yungbote/contacts-backend/internal/observability"
	"github.com/yungbote/contacts-backend/internal/platform/logger"
)

type Handlers struct {
	Health  *httpH.HealthHandler
	Contact *httpH.ContactHandler
}

func wireHandlers(log *logger.Logger, services Services, clients Clients) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:  httpH.NewHealthHandler(clients.Postgres),
		Contact: httpH.NewContactHandler(services.Contacts),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *gin.Engine {
	if cfg.Env == "prod" || cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	return apphttp.NewRouter(apphttp.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		ServiceName:    cfg.Otel.ServiceName,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		Tracing:        cfg.Otel.Enabled,
		ContactHandler: handlers.Contact,
		HealthHandler:  handlers.Health,
	})
}
