package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/parammap-backend/internal/domain"
	"github.com/yungbote/parammap-backend/internal/platform/dbctx"
	"github.com/yungbote/parammap-backend/internal/platform/logger"
	"github.com/yungbote/parammap-backend/internal/platform/pagination"
)

type HistoryFilter struct {
	MappingID *uuid.UUID
	VendorID  *uuid.UUID
}

// HistoryRepo is append-only apart from vendor cascade deletes.
type HistoryRepo interface {
	Append(dbc dbctx.Context, rec *domain.MappingHistory) error
	List(dbc dbctx.Context, filter HistoryFilter, page pagination.Page) ([]*domain.MappingHistory, error)
	Count(dbc dbctx.Context, filter HistoryFilter) (int64, error)
	DeleteAllByVendor(dbc dbctx.Context, vendorID uuid.UUID) (int64, error)
}

type historyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHistoryRepo(db *gorm.DB, baseLog *logger.Logger) HistoryRepo {
	return &historyRepo{db: db, log: baseLog.With("repo", "HistoryRepo")}
}

func (r *historyRepo) Append(dbc dbctx.Context, rec *domain.MappingHistory) error {
	if rec == nil {
		return nil
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	return MapError("history.append", dbc.DB(r.db).Create(rec).Error)
}

// List returns records newest first.
func (r *historyRepo) List(dbc dbctx.Context, filter HistoryFilter, page pagination.Page) ([]*domain.MappingHistory, error) {
	var rows []*domain.MappingHistory
	q := r.filtered(dbc, filter).
		Order("changed_at DESC").
		Order("version DESC")
	if err := paged(q, page).Find(&rows).Error; err != nil {
		return nil, MapError("history.list", err)
	}
	return rows, nil
}

func (r *historyRepo) Count(dbc dbctx.Context, filter HistoryFilter) (int64, error) {
	var n int64
	if err := r.filtered(dbc, filter).Count(&n).Error; err != nil {
		return 0, MapError("history.count", err)
	}
	return n, nil
}

func (r *historyRepo) DeleteAllByVendor(dbc dbctx.Context, vendorID uuid.UUID) (int64, error) {
	if vendorID == uuid.Nil {
		return 0, nil
	}
	res := dbc.DB(r.db).
		Where("vendor_id = ?", vendorID).
		Delete(&domain.MappingHistory{})
	if res.Error != nil {
		return 0, MapError("history.delete_by_vendor", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *historyRepo) filtered(dbc dbctx.Context, filter HistoryFilter) *gorm.DB {
	q := dbc.DB(r.db).Model(&domain.MappingHistory{})
	if filter.MappingID != nil {
		q = q.Where("mapping_id = ?", *filter.MappingID)
	}
	if filter.VendorID != nil {
		q = q.Where("vendor_id = ?", *filter.VendorID)
	}
	return q
}
