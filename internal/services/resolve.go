package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/parammap-backend/internal/data/cache"
	"github.com/yungbote/parammap-backend/internal/data/repos"
	"github.com/yungbote/parammap-backend/internal/domain"
	"github.com/yungbote/parammap-backend/internal/mapping"
	"github.com/yungbote/parammap-backend/internal/observability"
	"github.com/yungbote/parammap-backend/internal/platform/dbctx"
	"github.com/yungbote/parammap-backend/internal/platform/logger"
)

type ResolveRequest struct {
	VendorID   string         `json:"vendor_id"`
	Namespace  *string        `json:"namespace"`
	Parameters []string       `json:"parameters"`
	Values     map[string]any `json:"values"`
}

type ResolveResult struct {
	VendorID  string         `json:"vendor_id"`
	Namespace string         `json:"namespace"`
	Resolved  map[string]any `json:"resolved"`
	RulesUsed []domain.Rule  `json:"rules_used"`
}

type ResolveService interface {
	Resolve(ctx context.Context, req ResolveRequest) (*ResolveResult, error)
}

type resolveService struct {
	log         *logger.Logger
	vendorRepo  repos.VendorRepo
	mappingRepo repos.MappingRepo
	cache       cache.MappingCache
	metrics     *observability.Metrics
	tracer      trace.Tracer
}

func NewResolveService(
	baseLog *logger.Logger,
	vendorRepo repos.VendorRepo,
	mappingRepo repos.MappingRepo,
	mappingCache cache.MappingCache,
	metrics *observability.Metrics,
) ResolveService {
	if mappingCache == nil {
		mappingCache = cache.NoopMappingCache{}
	}
	return &resolveService{
		log:         baseLog.With("service", "ResolveService"),
		vendorRepo:  vendorRepo,
		mappingRepo: mappingRepo,
		cache:       mappingCache,
		metrics:     metrics,
		tracer:      observability.Tracer(),
	}
}

// Resolve is read-only. Parameters without a rule contribute nothing;
// RulesUsed is always the mapping's full rule list.
func (s *resolveService) Resolve(ctx context.Context, req ResolveRequest) (res *ResolveResult, err error) {
	const op = "mapping.resolve"
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, op)
	defer func() {
		s.metrics.ObserveResolution(resolveOutcome(err), time.Since(start))
		span.End()
	}()

	vendorID, err := domain.ParseID(op, "vendor", req.VendorID)
	if err != nil {
		return nil, spanErr(span, err)
	}
	namespace := domain.DefaultNamespace
	if req.Namespace != nil {
		namespace = domain.NormalizeNamespace(*req.Namespace)
	}
	span.SetAttributes(
		attribute.String("vendor_id", vendorID.String()),
		attribute.String("namespace", namespace),
		attribute.Int("parameters", len(req.Parameters)),
	)

	dbc := dbctx.New(ctx)
	vendor, err := s.vendorRepo.GetByID(dbc, vendorID)
	if err != nil {
		return nil, spanErr(span, err)
	}
	if vendor == nil || !vendor.IsActive {
		return nil, spanErr(span, domain.NotFound(op, "Active vendor not found"))
	}

	m, err := s.loadMapping(dbc, vendor.ID, namespace)
	if err != nil {
		return nil, spanErr(span, err)
	}
	if m == nil {
		return nil, spanErr(span, domain.NotFound(op, "Mapping not found for vendor/namespace"))
	}

	rs := mapping.NewRuleSet(m.RuleList())
	resolved, used := rs.Evaluate(req.Parameters, req.Values)
	span.SetAttributes(attribute.Int("rules_hit", len(used)), attribute.Int("mapping_version", m.Version))

	return &ResolveResult{
		VendorID:  vendor.ID.String(),
		Namespace: namespace,
		Resolved:  resolved,
		RulesUsed: rs.Rules(),
	}, nil
}

func (s *resolveService) loadMapping(dbc dbctx.Context, vendorID uuid.UUID, namespace string) (*domain.Mapping, error) {
	if m, hit := s.cache.Get(dbc.Ctx, vendorID, namespace); hit {
		s.metrics.ObserveCacheLookup(true)
		return m, nil
	}
	s.metrics.ObserveCacheLookup(false)
	m, err := s.mappingRepo.GetByVendorAndNamespace(dbc, vendorID, namespace)
	if err != nil || m == nil {
		return m, err
	}
	s.cache.Fill(dbc.Ctx, m)
	return m, nil
}

func resolveOutcome(err error) string {
	switch domain.CodeOf(err) {
	case "":
		if err != nil {
			return "error"
		}
		return "ok"
	case domain.CodeNotFound:
		return "not_found"
	case domain.CodeValidation:
		return "invalid"
	default:
		return "error"
	}
}
