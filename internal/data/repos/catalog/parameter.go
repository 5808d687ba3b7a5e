package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/parammap-backend/internal/domain"
	"github.com/yungbote/parammap-backend/internal/platform/dbctx"
	"github.com/yungbote/parammap-backend/internal/platform/logger"
	"github.com/yungbote/parammap-backend/internal/platform/pagination"
)

type ParameterRepo interface {
	List(dbc dbctx.Context, page pagination.Page) ([]*domain.Parameter, error)
	Count(dbc dbctx.Context) (int64, error)
	UpsertByKey(dbc dbctx.Context, rows []*domain.Parameter) (int, error)
}

type parameterRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewParameterRepo(db *gorm.DB, baseLog *logger.Logger) ParameterRepo {
	return &parameterRepo{db: db, log: baseLog.With("repo", "ParameterRepo")}
}

func (r *parameterRepo) List(dbc dbctx.Context, page pagination.Page) ([]*domain.Parameter, error) {
	var rows []*domain.Parameter
	q := dbc.DB(r.db).Order("key ASC")
	if err := paged(q, page).Find(&rows).Error; err != nil {
		return nil, MapError("parameter.list", err)
	}
	return rows, nil
}

func (r *parameterRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	if err := dbc.DB(r.db).Model(&domain.Parameter{}).Count(&n).Error; err != nil {
		return 0, MapError("parameter.count", err)
	}
	return n, nil
}

// UpsertByKey inserts or overwrites each row by key and returns how many
// rows were written.
func (r *parameterRepo) UpsertByKey(dbc dbctx.Context, rows []*domain.Parameter) (int, error) {
	now := time.Now().UTC()
	written := 0
	for _, row := range rows {
		if row == nil || strings.TrimSpace(row.Key) == "" {
			continue
		}
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.AllowedValues == nil {
			row.AllowedValues = []any{}
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
		row.UpdatedAt = now

		err := dbc.DB(r.db).
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"description",
					"data_type",
					"allowed_values",
					"updated_at",
				}),
			}).
			Create(row).Error
		if err != nil {
			return written, MapError("parameter.upsert", err)
		}
		written++
	}
	return written, nil
}
