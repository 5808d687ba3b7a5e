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

type VendorRepo interface {
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Vendor, error)
	GetByCode(dbc dbctx.Context, code string) (*domain.Vendor, error)
	Create(dbc dbctx.Context, v *domain.Vendor) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, fields map[string]any) (bool, error)
	DeleteByID(dbc dbctx.Context, id uuid.UUID) (int64, error)
	List(dbc dbctx.Context, page pagination.Page) ([]*domain.Vendor, error)
	Count(dbc dbctx.Context) (int64, error)
}

type vendorRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVendorRepo(db *gorm.DB, baseLog *logger.Logger) VendorRepo {
	return &vendorRepo{db: db, log: baseLog.With("repo", "VendorRepo")}
}

// GetByID returns nil, nil when the vendor does not exist.
func (r *vendorRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Vendor, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var rows []*domain.Vendor
	if err := dbc.DB(r.db).
		Where("id = ?", id).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, MapError("vendor.get", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *vendorRepo) GetByCode(dbc dbctx.Context, code string) (*domain.Vendor, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var rows []*domain.Vendor
	if err := dbc.DB(r.db).
		Where("code = ?", code).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, MapError("vendor.get_by_code", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *vendorRepo) Create(dbc dbctx.Context, v *domain.Vendor) error {
	if v == nil {
		return nil
	}
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return MapError("vendor.create", dbc.DB(r.db).Create(v).Error)
}

// UpdateFields reports false when no row matched id.
func (r *vendorRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, fields map[string]any) (bool, error) {
	if id == uuid.Nil || len(fields) == 0 {
		return false, nil
	}
	res := dbc.DB(r.db).
		Model(&domain.Vendor{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return false, MapError("vendor.update", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *vendorRepo) DeleteByID(dbc dbctx.Context, id uuid.UUID) (int64, error) {
	if id == uuid.Nil {
		return 0, nil
	}
	res := dbc.DB(r.db).
		Where("id = ?", id).
		Delete(&domain.Vendor{})
	if res.Error != nil {
		return 0, MapError("vendor.delete", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *vendorRepo) List(dbc dbctx.Context, page pagination.Page) ([]*domain.Vendor, error) {
	var rows []*domain.Vendor
	q := dbc.DB(r.db).
		Order("name ASC").
		Order("id ASC")
	if err := paged(q, page).Find(&rows).Error; err != nil {
		return nil, MapError("vendor.list", err)
	}
	return rows, nil
}

func (r *vendorRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	if err := dbc.DB(r.db).Model(&domain.Vendor{}).Count(&n).Error; err != nil {
		return 0, MapError("vendor.count", err)
	}
	return n, nil
}
