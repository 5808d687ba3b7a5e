package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/parammap-backend/internal/data/repos"
	"github.com/yungbote/parammap-backend/internal/domain"
	"github.com/yungbote/parammap-backend/internal/platform/dbctx"
	"github.com/yungbote/parammap-backend/internal/platform/logger"
	"github.com/yungbote/parammap-backend/internal/platform/pagination"
)

type store struct {
	mu       sync.Mutex
	vendors  map[uuid.UUID]*domain.Vendor
	mappings map[uuid.UUID]*domain.Mapping
	history  []*domain.MappingHistory
	params   map[string]*domain.Parameter

	historyErr error
}

func newStore() *store {
	return &store{
		vendors:  map[uuid.UUID]*domain.Vendor{},
		mappings: map[uuid.UUID]*domain.Mapping{},
		params:   map[string]*domain.Parameter{},
	}
}

func cloneMapping(m *domain.Mapping) *domain.Mapping {
	cp := *m
	cp.Rules = append(datatypes.JSONSlice[domain.Rule]{}, m.Rules...)
	return &cp
}

func (s *store) historyFor(mappingID uuid.UUID) []*domain.MappingHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.MappingHistory
	for _, h := range s.history {
		if h.MappingID == mappingID {
			out = append(out, h)
		}
	}
	return out
}

type fakeVendorRepo struct{ s *store }

func (r fakeVendorRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*domain.Vendor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.vendors[id]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (r fakeVendorRepo) GetByCode(_ dbctx.Context, code string) (*domain.Vendor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.vendors {
		if v.Code == code {
			cp := *v
			return &cp, nil
		}
	}
	return nil, nil
}

func (r fakeVendorRepo) Create(_ dbctx.Context, v *domain.Vendor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *v
	r.s.vendors[v.ID] = &cp
	return nil
}

func (r fakeVendorRepo) UpdateFields(_ dbctx.Context, id uuid.UUID, fields map[string]any) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.vendors[id]
	if !ok {
		return false, nil
	}
	for k, val := range fields {
		switch k {
		case "name":
			v.Name = val.(string)
		case "description":
			d := val.(string)
			v.Description = &d
		case "is_active":
			v.IsActive = val.(bool)
		case "updated_at":
			v.UpdatedAt = val.(time.Time)
		}
	}
	return true, nil
}

func (r fakeVendorRepo) DeleteByID(_ dbctx.Context, id uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.vendors[id]; !ok {
		return 0, nil
	}
	delete(r.s.vendors, id)
	return 1, nil
}

func (r fakeVendorRepo) List(_ dbctx.Context, page pagination.Page) ([]*domain.Vendor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Vendor
	for _, v := range r.s.vendors {
		cp := *v
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return window(out, page), nil
}

func (r fakeVendorRepo) Count(dbctx.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.vendors)), nil
}

type fakeMappingRepo struct{ s *store }

func (r fakeMappingRepo) GetByVendorAndNamespace(_ dbctx.Context, vendorID uuid.UUID, namespace string) (*domain.Mapping, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.mappings {
		if m.VendorID == vendorID && m.Namespace == namespace {
			return cloneMapping(m), nil
		}
	}
	return nil, nil
}

func (r fakeMappingRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*domain.Mapping, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.mappings[id]
	if !ok {
		return nil, nil
	}
	return cloneMapping(m), nil
}

func (r fakeMappingRepo) Create(_ dbctx.Context, m *domain.Mapping) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.mappings {
		if existing.VendorID == m.VendorID && existing.Namespace == m.Namespace {
			return domain.Conflict("mapping.create", "duplicate key")
		}
	}
	r.s.mappings[m.ID] = cloneMapping(m)
	return nil
}

func (r fakeMappingRepo) apply(m *domain.Mapping, fields map[string]any) {
	for k, val := range fields {
		switch k {
		case "namespace":
			m.Namespace = val.(string)
		case "rules":
			m.Rules = append(datatypes.JSONSlice[domain.Rule]{}, val.(datatypes.JSONSlice[domain.Rule])...)
		case "version":
			m.Version = val.(int)
		case "updated_at":
			m.UpdatedAt = val.(time.Time)
		}
	}
}

func (r fakeMappingRepo) ReplaceFields(_ dbctx.Context, id uuid.UUID, fields map[string]any) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.mappings[id]
	if !ok {
		return false, nil
	}
	r.apply(m, fields)
	return true, nil
}

func (r fakeMappingRepo) UpdateFieldsIfVersion(_ dbctx.Context, id uuid.UUID, expected int, fields map[string]any) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.mappings[id]
	if !ok || m.Version != expected {
		return false, nil
	}
	r.apply(m, fields)
	return true, nil
}

func (r fakeMappingRepo) DeleteByID(_ dbctx.Context, id uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.mappings[id]; !ok {
		return 0, nil
	}
	delete(r.s.mappings, id)
	return 1, nil
}

func (r fakeMappingRepo) DeleteAllByVendor(_ dbctx.Context, vendorID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, m := range r.s.mappings {
		if m.VendorID == vendorID {
			delete(r.s.mappings, id)
			n++
		}
	}
	return n, nil
}

func (r fakeMappingRepo) matching(filter repos.MappingFilter) []*domain.Mapping {
	var out []*domain.Mapping
	for _, m := range r.s.mappings {
		if filter.VendorID != nil && m.VendorID != *filter.VendorID {
			continue
		}
		if filter.Namespace != "" && m.Namespace != filter.Namespace {
			continue
		}
		out = append(out, cloneMapping(m))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].VendorID != out[j].VendorID {
			return out[i].VendorID.String() < out[j].VendorID.String()
		}
		return out[i].Namespace < out[j].Namespace
	})
	return out
}

func (r fakeMappingRepo) List(_ dbctx.Context, filter repos.MappingFilter, page pagination.Page) ([]*domain.Mapping, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return window(r.matching(filter), page), nil
}

func (r fakeMappingRepo) Count(_ dbctx.Context, filter repos.MappingFilter) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.matching(filter))), nil
}

type fakeHistoryRepo struct{ s *store }

func (r fakeHistoryRepo) Append(_ dbctx.Context, rec *domain.MappingHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.historyErr != nil {
		return r.s.historyErr
	}
	cp := *rec
	r.s.history = append(r.s.history, &cp)
	return nil
}

func (r fakeHistoryRepo) matching(filter repos.HistoryFilter) []*domain.MappingHistory {
	var out []*domain.MappingHistory
	for i := len(r.s.history) - 1; i >= 0; i-- {
		h := r.s.history[i]
		if filter.MappingID != nil && h.MappingID != *filter.MappingID {
			continue
		}
		if filter.VendorID != nil && h.VendorID != *filter.VendorID {
			continue
		}
		out = append(out, h)
	}
	return out
}

func (r fakeHistoryRepo) List(_ dbctx.Context, filter repos.HistoryFilter, page pagination.Page) ([]*domain.MappingHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return window(r.matching(filter), page), nil
}

func (r fakeHistoryRepo) Count(_ dbctx.Context, filter repos.HistoryFilter) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.matching(filter))), nil
}

func (r fakeHistoryRepo) DeleteAllByVendor(_ dbctx.Context, vendorID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.history[:0]
	var n int64
	for _, h := range r.s.history {
		if h.VendorID == vendorID {
			n++
			continue
		}
		kept = append(kept, h)
	}
	r.s.history = kept
	return n, nil
}

type fakeParameterRepo struct{ s *store }

func (r fakeParameterRepo) List(_ dbctx.Context, page pagination.Page) ([]*domain.Parameter, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Parameter
	for _, p := range r.s.params {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return window(out, page), nil
}

func (r fakeParameterRepo) Count(dbctx.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.params)), nil
}

func (r fakeParameterRepo) UpsertByKey(_ dbctx.Context, rows []*domain.Parameter) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, row := range rows {
		if existing, ok := r.s.params[row.Key]; ok {
			row.ID = existing.ID
		} else if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		r.s.params[row.Key] = row
	}
	return len(rows), nil
}

func window[T any](rows []T, page pagination.Page) []T {
	if page.Size <= 0 {
		return rows
	}
	start := page.Offset()
	if start >= len(rows) {
		return []T{}
	}
	end := start + page.Limit()
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

type fakeTxRunner struct{}

func (fakeTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	return fn(dbctx.New(ctx))
}

// cacheEntry mirrors the Redis entry ordering: (created µs, rank) where rank
// is 2*version, plus one for a tombstone.
type cacheEntry struct {
	m       *domain.Mapping
	created int64
	rank    int
}

func (e cacheEntry) outranks(o cacheEntry) bool {
	return e.created > o.created || (e.created == o.created && e.rank >= o.rank)
}

func newCacheEntry(m *domain.Mapping, tombstone bool) cacheEntry {
	e := cacheEntry{created: m.CreatedAt.UnixMicro(), rank: 2 * m.Version}
	if e.created < 0 {
		e.created = 0
	}
	if tombstone {
		e.rank++
	} else {
		e.m = cloneMapping(m)
	}
	return e
}

type fakeCache struct {
	mu          sync.Mutex
	entries     map[string]cacheEntry
	vendorDrops []uuid.UUID
	gets, hits  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]cacheEntry{}}
}

func cacheKey(vendorID uuid.UUID, namespace string) string {
	return vendorID.String() + "/" + namespace
}

// live returns the cached mapping for a key, or nil for a miss or tombstone.
func (c *fakeCache) live(vendorID uuid.UUID, namespace string) *domain.Mapping {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[cacheKey(vendorID, namespace)].m
}

func (c *fakeCache) tombstoned(vendorID uuid.UUID, namespace string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[cacheKey(vendorID, namespace)]
	return ok && e.m == nil
}

// expire drops every entry, as TTL expiry would.
func (c *fakeCache) expire() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]cacheEntry{}
}

func (c *fakeCache) Get(_ context.Context, vendorID uuid.UUID, namespace string) (*domain.Mapping, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	e, ok := c.entries[cacheKey(vendorID, namespace)]
	if !ok || e.m == nil {
		return nil, false
	}
	c.hits++
	return cloneMapping(e.m), true
}

func (c *fakeCache) Fill(_ context.Context, m *domain.Mapping) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := cacheKey(m.VendorID, m.Namespace)
	if _, ok := c.entries[k]; ok {
		return
	}
	c.entries[k] = newCacheEntry(m, false)
}

func (c *fakeCache) write(k string, e cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.entries[k]; ok && cur.outranks(e) {
		return
	}
	c.entries[k] = e
}

func (c *fakeCache) Put(_ context.Context, m *domain.Mapping) {
	c.write(cacheKey(m.VendorID, m.Namespace), newCacheEntry(m, false))
}

func (c *fakeCache) Tombstone(_ context.Context, m *domain.Mapping, namespace string) {
	c.write(cacheKey(m.VendorID, namespace), newCacheEntry(m, true))
}

func (c *fakeCache) InvalidateVendor(_ context.Context, vendorID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vendorDrops = append(c.vendorDrops, vendorID)
	prefix := vendorID.String() + "/"
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

func (c *fakeCache) Close() error { return nil }

var errHistoryDown = errors.New("history store unavailable")

type harness struct {
	store    *store
	cache    *fakeCache
	vendors  VendorService
	mappings MappingService
	history  HistoryService
	resolver ResolveService
	params   ParameterService
}

func newHarness() *harness {
	log := logger.Nop()
	st := newStore()
	c := newFakeCache()
	vr := fakeVendorRepo{st}
	mr := fakeMappingRepo{st}
	hr := fakeHistoryRepo{st}
	hist := NewHistoryService(log, hr, nil)
	return &harness{
		store:    st,
		cache:    c,
		vendors:  NewVendorService(log, fakeTxRunner{}, vr, mr, hr, c),
		mappings: NewMappingService(log, vr, mr, hist, c, nil),
		history:  hist,
		resolver: NewResolveService(log, vr, mr, c, nil),
		params:   NewParameterService(log, fakeParameterRepo{st}),
	}
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func intPtr(n int) *int       { return &n }

func acmeRules() []domain.Rule {
	return []domain.Rule{
		{InputParam: "first_name", OutputParam: "fname", Transform: strPtr("uppercase")},
		{InputParam: "last_name", OutputParam: "lname"},
		{InputParam: "age", OutputParam: "age_years", Transform: strPtr("to_int")},
	}
}
