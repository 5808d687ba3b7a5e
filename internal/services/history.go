package services

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/parammap-backend/internal/data/repos"
	"github.com/yungbote/parammap-backend/internal/domain"
	"github.com/yungbote/parammap-backend/internal/observability"
	"github.com/yungbote/parammap-backend/internal/platform/dbctx"
	"github.com/yungbote/parammap-backend/internal/platform/logger"
	"github.com/yungbote/parammap-backend/internal/platform/pagination"
)

type HistoryQuery struct {
	MappingID string
	VendorID  string
}

type HistoryPage struct {
	Items []*domain.MappingHistory `json:"items"`
	Page  int                      `json:"page"`
	Size  int                      `json:"pageSize"`
	Total int64                    `json:"total"`
}

type HistoryService interface {
	// Record appends one audit entry. It never fails the caller: append
	// errors are logged and counted.
	Record(ctx context.Context, m *domain.Mapping, change domain.ChangeType)
	// List returns matching records newest first. A zero page returns all of them.
	List(ctx context.Context, q HistoryQuery, page pagination.Page) (*HistoryPage, error)
}

type historyService struct {
	log         *logger.Logger
	historyRepo repos.HistoryRepo
	metrics     *observability.Metrics
	now         func() time.Time
}

func NewHistoryService(baseLog *logger.Logger, historyRepo repos.HistoryRepo, metrics *observability.Metrics) HistoryService {
	return &historyService{
		log:         baseLog.With("service", "HistoryService"),
		historyRepo: historyRepo,
		metrics:     metrics,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *historyService) Record(ctx context.Context, m *domain.Mapping, change domain.ChangeType) {
	if m == nil {
		return
	}
	rec := domain.NewHistoryRecord(m, change, s.now())
	if err := s.historyRepo.Append(dbctx.New(ctx), rec); err != nil {
		s.metrics.IncHistoryAppendFailure()
		s.log.Error("history append failed",
			"mapping_id", m.ID,
			"vendor_id", m.VendorID,
			"change_type", change,
			"version", m.Version,
			"error", err,
		)
	}
}

func (s *historyService) List(ctx context.Context, q HistoryQuery, page pagination.Page) (*HistoryPage, error) {
	const op = "history.list"
	var filter repos.HistoryFilter
	if raw := strings.TrimSpace(q.MappingID); raw != "" {
		id, err := domain.ParseID(op, "mapping", raw)
		if err != nil {
			return nil, err
		}
		filter.MappingID = &id
	}
	if raw := strings.TrimSpace(q.VendorID); raw != "" {
		id, err := domain.ParseID(op, "vendor", raw)
		if err != nil {
			return nil, err
		}
		filter.VendorID = &id
	}

	var (
		items []*domain.MappingHistory
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.historyRepo.List(dbctx.New(gctx), filter, page)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.historyRepo.Count(dbctx.New(gctx), filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.MappingHistory{}
	}
	out := &HistoryPage{Items: items, Page: page.Number, Size: page.Size, Total: total}
	if page.Unbounded() {
		out.Page, out.Size = 1, len(items)
	}
	return out, nil
}
