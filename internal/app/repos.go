package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/parammap-backend/internal/data/repos"
	"github.com/yungbote/parammap-backend/internal/platform/logger"
)

type Repos struct {
	Tx        repos.TxRunner
	Vendor    repos.VendorRepo
	Mapping   repos.MappingRepo
	History   repos.HistoryRepo
	Parameter repos.ParameterRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Tx:        repos.NewTxRunner(db),
		Vendor:    repos.NewVendorRepo(db, log),
		Mapping:   repos.NewMappingRepo(db, log),
		History:   repos.NewHistoryRepo(db, log),
		Parameter: repos.NewParameterRepo(db, log),
	}
}
