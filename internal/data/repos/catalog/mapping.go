package catalog

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/parammap-backend/internal/domain"
	"github.com/yungbote/parammap-backend/internal/platform/dbctx"
	"github.com/yungbote/parammap-backend/internal/platform/logger"
	"github.com/yungbote/parammap-backend/internal/platform/pagination"
)

type MappingFilter struct {
	VendorID  *uuid.UUID
	Namespace string
}

type MappingRepo interface {
	GetByVendorAndNamespace(dbc dbctx.Context, vendorID uuid.UUID, namespace string) (*domain.Mapping, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Mapping, error)
	Create(dbc dbctx.Context, m *domain.Mapping) error
	ReplaceFields(dbc dbctx.Context, id uuid.UUID, fields map[string]any) (bool, error)
	UpdateFieldsIfVersion(dbc dbctx.Context, id uuid.UUID, expectedVersion int, fields map[string]any) (bool, error)
	DeleteByID(dbc dbctx.Context, id uuid.UUID) (int64, error)
	DeleteAllByVendor(dbc dbctx.Context, vendorID uuid.UUID) (int64, error)
	List(dbc dbctx.Context, filter MappingFilter, page pagination.Page) ([]*domain.Mapping, error)
	Count(dbc dbctx.Context, filter MappingFilter) (int64, error)
}

type mappingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMappingRepo(db *gorm.DB, baseLog *logger.Logger) MappingRepo {
	return &mappingRepo{db: db, log: baseLog.With("repo", "MappingRepo")}
}

func (r *mappingRepo) GetByVendorAndNamespace(dbc dbctx.Context, vendorID uuid.UUID, namespace string) (*domain.Mapping, error) {
	if vendorID == uuid.Nil {
		return nil, nil
	}
	var rows []*domain.Mapping
	if err := dbc.DB(r.db).
		Where("vendor_id = ? AND namespace = ?", vendorID, namespace).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, MapError("mapping.get_by_pair", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *mappingRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Mapping, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var rows []*domain.Mapping
	if err := dbc.DB(r.db).
		Where("id = ?", id).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, MapError("mapping.get", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *mappingRepo) Create(dbc dbctx.Context, m *domain.Mapping) error {
	if m == nil {
		return nil
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Rules == nil {
		m.Rules = []domain.Rule{}
	}
	return MapError("mapping.create", dbc.DB(r.db).Create(m).Error)
}

// ReplaceFields writes fields unconditionally (last write wins).
func (r *mappingRepo) ReplaceFields(dbc dbctx.Context, id uuid.UUID, fields map[string]any) (bool, error) {
	if id == uuid.Nil || len(fields) == 0 {
		return false, nil
	}
	res := dbc.DB(r.db).
		Model(&domain.Mapping{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return false, MapError("mapping.replace", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// UpdateFieldsIfVersion writes fields only while the stored version still
// equals expectedVersion. False means the row moved on or is gone.
func (r *mappingRepo) UpdateFieldsIfVersion(dbc dbctx.Context, id uuid.UUID, expectedVersion int, fields map[string]any) (bool, error) {
	if id == uuid.Nil || len(fields) == 0 {
		return false, nil
	}
	if expectedVersion < 1 {
		return false, domain.Validation("mapping.update_cas", "expected_version must be >= 1")
	}
	res := dbc.DB(r.db).
		Model(&domain.Mapping{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(fields)
	if res.Error != nil {
		return false, MapError("mapping.update_cas", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *mappingRepo) DeleteByID(dbc dbctx.Context, id uuid.UUID) (int64, error) {
	if id == uuid.Nil {
		return 0, nil
	}
	res := dbc.DB(r.db).
		Where("id = ?", id).
		Delete(&domain.Mapping{})
	if res.Error != nil {
		return 0, MapError("mapping.delete", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *mappingRepo) DeleteAllByVendor(dbc dbctx.Context, vendorID uuid.UUID) (int64, error) {
	if vendorID == uuid.Nil {
		return 0, nil
	}
	res := dbc.DB(r.db).
		Where("vendor_id = ?", vendorID).
		Delete(&domain.Mapping{})
	if res.Error != nil {
		return 0, MapError("mapping.delete_by_vendor", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *mappingRepo) List(dbc dbctx.Context, filter MappingFilter, page pagination.Page) ([]*domain.Mapping, error) {
	var rows []*domain.Mapping
	q := r.filtered(dbc, filter).
		Order("vendor_id ASC").
		Order("namespace ASC")
	if err := paged(q, page).Find(&rows).Error; err != nil {
		return nil, MapError("mapping.list", err)
	}
	return rows, nil
}

func (r *mappingRepo) Count(dbc dbctx.Context, filter MappingFilter) (int64, error) {
	var n int64
	if err := r.filtered(dbc, filter).Count(&n).Error; err != nil {
		return 0, MapError("mapping.count", err)
	}
	return n, nil
}

func (r *mappingRepo) filtered(dbc dbctx.Context, filter MappingFilter) *gorm.DB {
	q := dbc.DB(r.db).Model(&domain.Mapping{})
	if filter.VendorID != nil {
		q = q.Where("vendor_id = ?", *filter.VendorID)
	}
	if ns := strings.TrimSpace(filter.Namespace); ns != "" {
		q = q.Where("namespace = ?", ns)
	}
	return q
}
