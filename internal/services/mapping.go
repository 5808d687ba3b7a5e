package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/yungbote/parammap-backend/internal/data/cache"
	"github.com/yungbote/parammap-backend/internal/data/repos"
	"github.com/yungbote/parammap-backend/internal/domain"
	"github.com/yungbote/parammap-backend/internal/observability"
	"github.com/yungbote/parammap-backend/internal/platform/dbctx"
	"github.com/yungbote/parammap-backend/internal/platform/logger"
	"github.com/yungbote/parammap-backend/internal/platform/pagination"
)

// MappingCreate requires Rules; an empty list is allowed.
type MappingCreate struct {
	VendorID  string        `json:"vendor_id"`
	Namespace *string       `json:"namespace"`
	Rules     []domain.Rule `json:"rules"`
}

// MappingPatch with neither a namespace nor a rule is a no-op. Otherwise a
// non-nil Rules replaces the rule list, even when empty.
// ExpectedVersion turns the write into a compare-and-swap.
type MappingPatch struct {
	Namespace       *string       `json:"namespace"`
	Rules           []domain.Rule `json:"rules"`
	ExpectedVersion *int          `json:"expected_version"`
}

type MappingQuery struct {
	VendorID  string
	Namespace string
}

type MappingPage struct {
	Items []*domain.Mapping `json:"items"`
	Page  int               `json:"page"`
	Size  int               `json:"pageSize"`
	Total int64             `json:"total"`
}

type BulkStatus string

const (
	BulkCreated              BulkStatus = "created"
	BulkUpdated              BulkStatus = "updated"
	BulkSkippedMalformed     BulkStatus = "skipped_malformed"
	BulkSkippedInvalidVendor BulkStatus = "skipped_invalid_vendor"
	BulkFailed               BulkStatus = "failed"
)

type BulkItemResult struct {
	Index     int        `json:"index"`
	Status    BulkStatus `json:"status"`
	MappingID *uuid.UUID `json:"mapping_id,omitempty"`
	Version   int        `json:"version,omitempty"`
	Reason    string     `json:"reason,omitempty"`
}

// BulkResult keeps the processed count for callers that only read that.
type BulkResult struct {
	Processed int              `json:"processed"`
	Results   []BulkItemResult `json:"results"`
}

type MappingService interface {
	Create(ctx context.Context, in MappingCreate) (*domain.Mapping, error)
	Get(ctx context.Context, id string) (*domain.Mapping, error)
	List(ctx context.Context, q MappingQuery, page pagination.Page) (*MappingPage, error)
	Update(ctx context.Context, id string, patch MappingPatch) (*domain.Mapping, error)
	Delete(ctx context.Context, id string) error
	BulkUpsert(ctx context.Context, items []BulkItem) *BulkResult
}

type mappingService struct {
	log         *logger.Logger
	vendorRepo  repos.VendorRepo
	mappingRepo repos.MappingRepo
	history     HistoryService
	cache       cache.MappingCache
	metrics     *observability.Metrics
	tracer      trace.Tracer
	now         func() time.Time
}

func NewMappingService(
	baseLog *logger.Logger,
	vendorRepo repos.VendorRepo,
	mappingRepo repos.MappingRepo,
	history HistoryService,
	mappingCache cache.MappingCache,
	metrics *observability.Metrics,
) MappingService {
	if mappingCache == nil {
		mappingCache = cache.NoopMappingCache{}
	}
	return &mappingService{
		log:         baseLog.With("service", "MappingService"),
		vendorRepo:  vendorRepo,
		mappingRepo: mappingRepo,
		history:     history,
		cache:       mappingCache,
		metrics:     metrics,
		tracer:      observability.Tracer(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *mappingService) Create(ctx context.Context, in MappingCreate) (*domain.Mapping, error) {
	const op = "mapping.create"
	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()

	vendorID, err := domain.ParseID(op, "vendor", in.VendorID)
	if err != nil {
		return nil, spanErr(span, err)
	}
	if in.Rules == nil {
		return nil, spanErr(span, domain.NewError(domain.CodeValidation, op, "rules is required", nil))
	}
	if err := domain.ValidateRules(op, in.Rules); err != nil {
		return nil, spanErr(span, err)
	}
	namespace := domain.DefaultNamespace
	if in.Namespace != nil {
		namespace = domain.NormalizeNamespace(*in.Namespace)
	}
	span.SetAttributes(attribute.String("vendor_id", vendorID.String()), attribute.String("namespace", namespace))

	dbc := dbctx.New(ctx)
	vendor, err := s.vendorRepo.GetByID(dbc, vendorID)
	if err != nil {
		return nil, spanErr(span, err)
	}
	if vendor == nil {
		return nil, spanErr(span, domain.NotFound(op, "Vendor not found"))
	}
	existing, err := s.mappingRepo.GetByVendorAndNamespace(dbc, vendorID, namespace)
	if err != nil {
		return nil, spanErr(span, err)
	}
	if existing != nil {
		return nil, spanErr(span, domain.Conflict(op, "Mapping already exists for vendor/namespace"))
	}

	m, err := s.insert(dbc, vendorID, namespace, in.Rules)
	if err != nil {
		return nil, spanErr(span, err)
	}
	s.afterMutation(ctx, m, domain.ChangeCreate)
	return m, nil
}

func (s *mappingService) Get(ctx context.Context, id string) (*domain.Mapping, error) {
	const op = "mapping.get"
	mappingID, err := domain.ParseID(op, "mapping", id)
	if err != nil {
		return nil, err
	}
	m, err := s.mappingRepo.GetByID(dbctx.New(ctx), mappingID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.NotFound(op, "Mapping not found")
	}
	return m, nil
}

func (s *mappingService) List(ctx context.Context, q MappingQuery, page pagination.Page) (*MappingPage, error) {
	const op = "mapping.list"
	filter := repos.MappingFilter{Namespace: strings.TrimSpace(q.Namespace)}
	if raw := strings.TrimSpace(q.VendorID); raw != "" {
		id, err := domain.ParseID(op, "vendor", raw)
		if err != nil {
			return nil, err
		}
		filter.VendorID = &id
	}

	var (
		items []*domain.Mapping
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.mappingRepo.List(dbctx.New(gctx), filter, page)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.mappingRepo.Count(dbctx.New(gctx), filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.Mapping{}
	}
	return &MappingPage{Items: items, Page: page.Number, Size: page.Size, Total: total}, nil
}

func (s *mappingService) Update(ctx context.Context, id string, patch MappingPatch) (*domain.Mapping, error) {
	const op = "mapping.update"
	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()

	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, spanErr(span, err)
	}
	span.SetAttributes(attribute.String("mapping_id", m.ID.String()))

	var newNamespace string
	if patch.Namespace != nil {
		newNamespace = strings.TrimSpace(*patch.Namespace)
	}
	if newNamespace == "" && len(patch.Rules) == 0 {
		return m, nil
	}
	applyRules := patch.Rules != nil
	if applyRules {
		if err := domain.ValidateRules(op, patch.Rules); err != nil {
			return nil, spanErr(span, err)
		}
	}

	dbc := dbctx.New(ctx)
	oldNamespace := m.Namespace
	if newNamespace != "" && newNamespace != oldNamespace {
		clash, err := s.mappingRepo.GetByVendorAndNamespace(dbc, m.VendorID, newNamespace)
		if err != nil {
			return nil, spanErr(span, err)
		}
		if clash != nil {
			return nil, spanErr(span, domain.Conflict(op, "Mapping already exists for vendor/namespace"))
		}
	}

	now := s.now()
	fields := map[string]any{
		"version":    m.Version + 1,
		"updated_at": now,
	}
	if newNamespace != "" {
		fields["namespace"] = newNamespace
	}
	if applyRules {
		fields["rules"] = datatypes.JSONSlice[domain.Rule](patch.Rules)
	}

	if patch.ExpectedVersion != nil {
		if *patch.ExpectedVersion != m.Version {
			return nil, spanErr(span, domain.Conflict(op, "Mapping version mismatch"))
		}
		ok, err := s.mappingRepo.UpdateFieldsIfVersion(dbc, m.ID, *patch.ExpectedVersion, fields)
		if err != nil {
			return nil, spanErr(span, err)
		}
		if !ok {
			return nil, spanErr(span, domain.Conflict(op, "Mapping version mismatch"))
		}
	} else {
		ok, err := s.mappingRepo.ReplaceFields(dbc, m.ID, fields)
		if err != nil {
			return nil, spanErr(span, err)
		}
		if !ok {
			return nil, spanErr(span, domain.NotFound(op, "Mapping not found"))
		}
	}

	m.Version++
	m.UpdatedAt = now
	if newNamespace != "" {
		m.Namespace = newNamespace
	}
	if applyRules {
		m.Rules = append(datatypes.JSONSlice[domain.Rule]{}, patch.Rules...)
	}
	if oldNamespace != m.Namespace {
		s.cache.Tombstone(ctx, m, oldNamespace)
	}
	s.afterMutation(ctx, m, domain.ChangeUpdate)
	return m, nil
}

func (s *mappingService) Delete(ctx context.Context, id string) error {
	const op = "mapping.delete"
	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()

	m, err := s.Get(ctx, id)
	if err != nil {
		return spanErr(span, err)
	}
	n, err := s.mappingRepo.DeleteByID(dbctx.New(ctx), m.ID)
	if err != nil {
		return spanErr(span, err)
	}
	if n == 0 {
		return spanErr(span, domain.NotFound(op, "Mapping not found"))
	}
	s.afterMutation(ctx, m, domain.ChangeDelete)
	return nil
}

// BulkUpsert applies every item independently; an item's failure never
// undoes earlier items.
func (s *mappingService) BulkUpsert(ctx context.Context, items []BulkItem) *BulkResult {
	ctx, span := s.tracer.Start(ctx, "mapping.bulk_upsert")
	defer span.End()
	span.SetAttributes(attribute.Int("items", len(items)))

	res := &BulkResult{Results: make([]BulkItemResult, 0, len(items))}
	for i, item := range items {
		r := s.upsertOne(ctx, item)
		r.Index = i
		if r.Status == BulkCreated || r.Status == BulkUpdated {
			res.Processed++
		}
		s.metrics.IncBulkItem(string(r.Status))
		res.Results = append(res.Results, r)
	}
	span.SetAttributes(attribute.Int("processed", res.Processed))
	s.log.Info("bulk upsert finished", "items", len(items), "processed", res.Processed)
	return res
}

func (s *mappingService) upsertOne(ctx context.Context, item BulkItem) BulkItemResult {
	const op = "mapping.bulk_upsert"
	if item.Problem != "" {
		return BulkItemResult{Status: BulkSkippedMalformed, Reason: item.Problem}
	}
	vendorID, err := domain.ParseID(op, "vendor", item.VendorID)
	if err != nil {
		return BulkItemResult{Status: BulkSkippedMalformed, Reason: domain.MessageOf(err)}
	}
	rules := item.Rules
	if rules == nil {
		rules = []domain.Rule{}
	}
	if err := domain.ValidateRules(op, rules); err != nil {
		return BulkItemResult{Status: BulkSkippedMalformed, Reason: domain.MessageOf(err)}
	}
	namespace := domain.DefaultNamespace
	if item.Namespace != nil {
		namespace = domain.NormalizeNamespace(*item.Namespace)
	}

	dbc := dbctx.New(ctx)
	vendor, err := s.vendorRepo.GetByID(dbc, vendorID)
	if err != nil {
		return s.bulkFailed(vendorID, namespace, err)
	}
	if vendor == nil {
		return BulkItemResult{Status: BulkSkippedInvalidVendor, Reason: "Vendor not found"}
	}

	existing, err := s.mappingRepo.GetByVendorAndNamespace(dbc, vendorID, namespace)
	if err != nil {
		return s.bulkFailed(vendorID, namespace, err)
	}
	if existing == nil {
		m, err := s.insert(dbc, vendorID, namespace, rules)
		if err != nil {
			return s.bulkFailed(vendorID, namespace, err)
		}
		s.afterMutation(ctx, m, domain.ChangeCreate)
		return BulkItemResult{Status: BulkCreated, MappingID: &m.ID, Version: m.Version}
	}

	now := s.now()
	fields := map[string]any{
		"rules":      datatypes.JSONSlice[domain.Rule](rules),
		"version":    existing.Version + 1,
		"updated_at": now,
	}
	ok, err := s.mappingRepo.ReplaceFields(dbc, existing.ID, fields)
	if err != nil {
		return s.bulkFailed(vendorID, namespace, err)
	}
	if !ok {
		return BulkItemResult{Status: BulkFailed, MappingID: &existing.ID, Reason: "Mapping disappeared during upsert"}
	}
	existing.Rules = rules
	existing.Version++
	existing.UpdatedAt = now
	s.afterMutation(ctx, existing, domain.ChangeUpdate)
	return BulkItemResult{Status: BulkUpdated, MappingID: &existing.ID, Version: existing.Version}
}

func (s *mappingService) bulkFailed(vendorID uuid.UUID, namespace string, err error) BulkItemResult {
	s.log.Warn("bulk upsert item failed", "vendor_id", vendorID, "namespace", namespace, "error", err)
	return BulkItemResult{Status: BulkFailed, Reason: domain.MessageOf(err)}
}

func (s *mappingService) insert(dbc dbctx.Context, vendorID uuid.UUID, namespace string, rules []domain.Rule) (*domain.Mapping, error) {
	now := s.now()
	if rules == nil {
		rules = []domain.Rule{}
	}
	m := &domain.Mapping{
		ID:        uuid.New(),
		VendorID:  vendorID,
		Namespace: namespace,
		Rules:     rules,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.mappingRepo.Create(dbc, m); err != nil {
		return nil, err
	}
	return m, nil
}

// afterMutation runs once per successful write: cache write-through, metrics
// and the audit record, in that order.
func (s *mappingService) afterMutation(ctx context.Context, m *domain.Mapping, change domain.ChangeType) {
	if change == domain.ChangeDelete {
		s.cache.Tombstone(ctx, m, m.Namespace)
	} else {
		s.cache.Put(ctx, m)
	}
	s.metrics.IncMappingMutation(string(change))
	s.history.Record(ctx, m, change)
	s.log.Debug("mapping mutated",
		"mapping_id", m.ID,
		"vendor_id", m.VendorID,
		"namespace", m.Namespace,
		"change_type", change,
		"version", m.Version,
	)
}

func spanErr(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, domain.MessageOf(err))
	}
	return err
}
