package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/parammap-backend/internal/data/repos"
	"github.com/yungbote/parammap-backend/internal/domain"
	"github.com/yungbote/parammap-backend/internal/platform/dbctx"
	"github.com/yungbote/parammap-backend/internal/platform/logger"
	"github.com/yungbote/parammap-backend/internal/platform/pagination"
)

type ParameterInput struct {
	Key           any     `json:"key"`
	Description   *string `json:"description"`
	DataType      *string `json:"dataType"`
	AllowedValues []any   `json:"allowedValues"`
}

type ParameterPage struct {
	Items []*domain.Parameter `json:"items"`
	Page  int                 `json:"page"`
	Size  int                 `json:"pageSize"`
	Total int64               `json:"total"`
}

type ParameterService interface {
	List(ctx context.Context, page pagination.Page) (*ParameterPage, error)
	// BulkUpsert writes every item by key. The whole batch is rejected when
	// any item lacks a string key.
	BulkUpsert(ctx context.Context, items []ParameterInput) (int, error)
}

type parameterService struct {
	log           *logger.Logger
	parameterRepo repos.ParameterRepo
}

func NewParameterService(baseLog *logger.Logger, parameterRepo repos.ParameterRepo) ParameterService {
	return &parameterService{
		log:           baseLog.With("service", "ParameterService"),
		parameterRepo: parameterRepo,
	}
}

func (s *parameterService) List(ctx context.Context, page pagination.Page) (*ParameterPage, error) {
	var (
		items []*domain.Parameter
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.parameterRepo.List(dbctx.New(gctx), page)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.parameterRepo.Count(dbctx.New(gctx))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.Parameter{}
	}
	return &ParameterPage{Items: items, Page: page.Number, Size: page.Size, Total: total}, nil
}

func (s *parameterService) BulkUpsert(ctx context.Context, items []ParameterInput) (int, error) {
	const op = "parameter.bulk"
	if len(items) == 0 {
		return 0, domain.Validation(op, "Body must include non-empty 'items' array")
	}
	rows := make([]*domain.Parameter, 0, len(items))
	for i, item := range items {
		key, ok := item.Key.(string)
		if !ok || strings.TrimSpace(key) == "" {
			return 0, domain.Validation(op, fmt.Sprintf("Item %d missing 'key'", i))
		}
		allowed := item.AllowedValues
		if allowed == nil {
			allowed = []any{}
		}
		rows = append(rows, &domain.Parameter{
			Key:           key,
			Description:   item.Description,
			DataType:      item.DataType,
			AllowedValues: allowed,
		})
	}
	n, err := s.parameterRepo.UpsertByKey(dbctx.New(ctx), rows)
	if err != nil {
		return n, err
	}
	s.log.Info("parameters upserted", "count", n)
	return n, nil
}
