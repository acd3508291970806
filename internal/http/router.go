package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/contacts-backend/internal/http/handlers"
	httpMW "github.com/yungbote/contacts-backend/internal/http/middleware"
	"github.com/yungbote/contacts-backend/internal/observability"
	"github.com/yungbote/contacts-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string
	// Tracing wraps every request in a server span.
	Tracing bool

	ContactHandler *httpH.ContactHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Tracing {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Contacts
		if cfg.ContactHandler != nil {
			api.GET("/contacts", cfg.ContactHandler.ListContacts)
			api.GET("/contacts/:id", cfg.ContactHandler.GetContact)
			api.PUT("/contacts", cfg.ContactHandler.UpsertContact)
			api.DELETE("/contacts/:id", cfg.ContactHandler.DeleteContact)
		}
	}

	return r
}
