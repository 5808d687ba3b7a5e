package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/parammap-backend/internal/http/handlers"
	httpMW "github.com/yungbote/parammap-backend/internal/http/middleware"
	"github.com/yungbote/parammap-backend/internal/observability"
	"github.com/yungbote/parammap-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string
	// Tracing adds otelgin spans for every request.
	Tracing bool

	HealthHandler    *httpH.HealthHandler
	VendorHandler    *httpH.VendorHandler
	MappingHandler   *httpH.MappingHandler
	HistoryHandler   *httpH.HistoryHandler
	ResolveHandler   *httpH.ResolveHandler
	ParameterHandler *httpH.ParameterHandler
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
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	// Metrics
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	// Vendors
	if cfg.VendorHandler != nil {
		r.GET("/vendors", cfg.VendorHandler.ListVendors)
		r.POST("/vendors", cfg.VendorHandler.CreateVendor)
		r.GET("/vendors/:id", cfg.VendorHandler.GetVendor)
		r.PATCH("/vendors/:id", cfg.VendorHandler.UpdateVendor)
		r.DELETE("/vendors/:id", cfg.VendorHandler.DeleteVendor)
	}

	// Mappings
	if cfg.MappingHandler != nil {
		r.GET("/mappings", cfg.MappingHandler.ListMappings)
		r.POST("/mappings", cfg.MappingHandler.CreateMapping)
		r.POST("/mappings/bulk", cfg.MappingHandler.BulkUpsertMappings)
		r.GET("/mappings/:id", cfg.MappingHandler.GetMapping)
		r.PATCH("/mappings/:id", cfg.MappingHandler.UpdateMapping)
		r.DELETE("/mappings/:id", cfg.MappingHandler.DeleteMapping)
	}

	// History
	if cfg.HistoryHandler != nil {
		r.GET("/history", cfg.HistoryHandler.ListHistory)
	}

	// Resolution
	if cfg.ResolveHandler != nil {
		r.POST("/resolve", cfg.ResolveHandler.Resolve)
	}

	// Parameters
	if cfg.ParameterHandler != nil {
		r.GET("/parameters", cfg.ParameterHandler.ListParameters)
		r.POST("/parameters/bulk", cfg.ParameterHandler.BulkUpsertParameters)
	}

	return r
}
