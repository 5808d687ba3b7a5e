package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/parammap-backend/internal/data/repos/catalog"
	"github.com/yungbote/parammap-backend/internal/platform/logger"
)

type VendorRepo = catalog.VendorRepo
type MappingRepo = catalog.MappingRepo
type HistoryRepo = catalog.HistoryRepo
type ParameterRepo = catalog.ParameterRepo

type MappingFilter = catalog.MappingFilter
type HistoryFilter = catalog.HistoryFilter

type TxRunner = catalog.TxRunner

func NewVendorRepo(db *gorm.DB, baseLog *logger.Logger) VendorRepo {
	return catalog.NewVendorRepo(db, baseLog)
}
func NewMappingRepo(db *gorm.DB, baseLog *logger.Logger) MappingRepo {
	return catalog.NewMappingRepo(db, baseLog)
}
func NewHistoryRepo(db *gorm.DB, baseLog *logger.Logger) HistoryRepo {
	return catalog.NewHistoryRepo(db, baseLog)
}
func NewParameterRepo(db *gorm.DB, baseLog *logger.Logger) ParameterRepo {
	return catalog.NewParameterRepo(db, baseLog)
}

func NewTxRunner(db *gorm.DB) TxRunner { return catalog.NewGormTxRunner(db) }

// MapError translates store failures into domain error codes.
func MapError(op string, err error) error { return catalog.MapError(op, err) }
