package app

import (
	"github.com/yungbote/parammap-backend/internal/data/cache"
	"github.com/yungbote/parammap-backend/internal/observability"
	"github.com/yungbote/parammap-backend/internal/platform/logger"
	"github.com/yungbote/parammap-backend/internal/services"
)

type Services struct {
	Vendor    services.VendorService
	Mapping   services.MappingService
	History   services.HistoryService
	Resolve   services.ResolveService
	Parameter services.ParameterService
}

func wireServices(log *logger.Logger, r Repos, mappingCache cache.MappingCache, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	history := services.NewHistoryService(log, r.History, metrics)
	return Services{
		Vendor:    services.NewVendorService(log, r.Tx, r.Vendor, r.Mapping, r.History, mappingCache),
		Mapping:   services.NewMappingService(log, r.Vendor, r.Mapping, history, mappingCache, metrics),
		History:   history,
		Resolve:   services.NewResolveService(log, r.Vendor, r.Mapping, mappingCache, metrics),
		Parameter: services.NewParameterService(log, r.Parameter),
	}
}
