package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/parammap-backend/internal/data/cache"
	"github.com/yungbote/parammap-backend/internal/data/repos"
	"github.com/yungbote/parammap-backend/internal/domain"
	"github.com/yungbote/parammap-backend/internal/platform/dbctx"
	"github.com/yungbote/parammap-backend/internal/platform/logger"
	"github.com/yungbote/parammap-backend/internal/platform/pagination"
)

type VendorCreate struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// VendorPatch applies only non-nil fields. Code is immutable.
type VendorPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type VendorPage struct {
	Items []*domain.Vendor `json:"items"`
	Page  int              `json:"page"`
	Size  int              `json:"pageSize"`
	Total int64            `json:"total"`
}

type VendorService interface {
	Create(ctx context.Context, in VendorCreate) (*domain.Vendor, error)
	Get(ctx context.Context, id string) (*domain.Vendor, error)
	List(ctx context.Context, page pagination.Page) (*VendorPage, error)
	Update(ctx context.Context, id string, patch VendorPatch) (*domain.Vendor, error)
	// Delete removes the vendor with all of its mappings and history.
	Delete(ctx context.Context, id string) error
}

type vendorService struct {
	log         *logger.Logger
	tx          repos.TxRunner
	vendorRepo  repos.VendorRepo
	mappingRepo repos.MappingRepo
	historyRepo repos.HistoryRepo
	cache       cache.MappingCache
	now         func() time.Time
}

func NewVendorService(
	baseLog *logger.Logger,
	tx repos.TxRunner,
	vendorRepo repos.VendorRepo,
	mappingRepo repos.MappingRepo,
	historyRepo repos.HistoryRepo,
	mappingCache cache.MappingCache,
) VendorService {
	if mappingCache == nil {
		mappingCache = cache.NoopMappingCache{}
	}
	return &vendorService{
		log:         baseLog.With("service", "VendorService"),
		tx:          tx,
		vendorRepo:  vendorRepo,
		mappingRepo: mappingRepo,
		historyRepo: historyRepo,
		cache:       mappingCache,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *vendorService) Create(ctx context.Context, in VendorCreate) (*domain.Vendor, error) {
	const op = "vendor.create"
	code := strings.TrimSpace(in.Code)
	name := strings.TrimSpace(in.Name)
	if code == "" {
		return nil, domain.Validation(op, "code is required")
	}
	if name == "" {
		return nil, domain.Validation(op, "name is required")
	}

	dbc := dbctx.New(ctx)
	existing, err := s.vendorRepo.GetByCode(dbc, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.Conflict(op, "Vendor code already exists")
	}

	now := s.now()
	v := &domain.Vendor{
		ID:          uuid.New(),
		Code:        code,
		Name:        name,
		Description: in.Description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.IsActive != nil {
		v.IsActive = *in.IsActive
	}
	if err := s.vendorRepo.Create(dbc, v); err != nil {
		if domain.IsCode(err, domain.CodeConflict) {
			return nil, domain.Conflict(op, "Vendor code already exists")
		}
		return nil, err
	}
	s.log.Info("vendor created", "vendor_id", v.ID, "code", v.Code)
	return v, nil
}

func (s *vendorService) Get(ctx context.Context, id string) (*domain.Vendor, error) {
	const op = "vendor.get"
	vendorID, err := domain.ParseID(op, "vendor", id)
	if err != nil {
		return nil, err
	}
	v, err := s.vendorRepo.GetByID(dbctx.New(ctx), vendorID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.NotFound(op, "Vendor not found")
	}
	return v, nil
}

func (s *vendorService) List(ctx context.Context, page pagination.Page) (*VendorPage, error) {
	var (
		items []*domain.Vendor
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.vendorRepo.List(dbctx.New(gctx), page)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.vendorRepo.Count(dbctx.New(gctx))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.Vendor{}
	}
	return &VendorPage{Items: items, Page: page.Number, Size: page.Size, Total: total}, nil
}

func (s *vendorService) Update(ctx context.Context, id string, patch VendorPatch) (*domain.Vendor, error) {
	const op = "vendor.update"
	vendorID, err := domain.ParseID(op, "vendor", id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, domain.Validation(op, "name must not be empty")
		}
		fields["name"] = name
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.IsActive != nil {
		fields["is_active"] = *patch.IsActive
	}
	if len(fields) == 0 {
		return s.Get(ctx, id)
	}
	fields["updated_at"] = s.now()

	ok, err := s.vendorRepo.UpdateFields(dbctx.New(ctx), vendorID, fields)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NotFound(op, "Vendor not found")
	}
	return s.Get(ctx, id)
}

func (s *vendorService) Delete(ctx context.Context, id string) error {
	const op = "vendor.delete"
	vendorID, err := domain.ParseID(op, "vendor", id)
	if err != nil {
		return err
	}

	var mappings, history int64
	err = s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		var err error
		if mappings, err = s.mappingRepo.DeleteAllByVendor(dbc, vendorID); err != nil {
			return err
		}
		if history, err = s.historyRepo.DeleteAllByVendor(dbc, vendorID); err != nil {
			return err
		}
		n, err := s.vendorRepo.DeleteByID(dbc, vendorID)
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.NotFound(op, "Vendor not found")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.cache.InvalidateVendor(ctx, vendorID)
	s.log.Info("vendor deleted", "vendor_id", vendorID, "mappings", mappings, "history", history)
	return nil
}
