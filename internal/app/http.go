package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/parammap-backend/internal/http"
	httpH "github.com/yungbote/parammap-backend/internal/http/handlers"
	"github.com/yungbote/parammap-backend/internal/observability"
	"github.com/yungbote/parammap-backend/internal/platform/logger"
)

type Handlers struct {
	Health    *httpH.HealthHandler
	Vendor    *httpH.VendorHandler
	Mapping   *httpH.MappingHandler
	History   *httpH.HistoryHandler
	Resolve   *httpH.ResolveHandler
	Parameter *httpH.ParameterHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(),
		Vendor:    httpH.NewVendorHandler(services.Vendor, cfg.MaxPageSize),
		Mapping:   httpH.NewMappingHandler(services.Mapping, cfg.MaxPageSize),
		History:   httpH.NewHistoryHandler(services.History, cfg.MaxPageSize),
		Resolve:   httpH.NewResolveHandler(services.Resolve),
		Parameter: httpH.NewParameterHandler(services.Parameter, cfg.MaxPageSize),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:              log.With("component", "http"),
		Metrics:          metrics,
		ServiceName:      cfg.Otel.ServiceName,
		CORSOrigins:      cfg.CORSOrigins,
		Tracing:          cfg.Otel.Enabled,
		HealthHandler:    handlers.Health,
		VendorHandler:    handlers.Vendor,
		MappingHandler:   handlers.Mapping,
		HistoryHandler:   handlers.History,
		ResolveHandler:   handlers.Resolve,
		ParameterHandler: handlers.Parameter,
	})
}
