package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/parammap-backend/internal/domain"
)

func SeedVendor(tb testing.TB, ctx context.Context, tx *gorm.DB, code string, active bool) *domain.Vendor {
	tb.Helper()
	now := time.Now().UTC()
	v := &domain.Vendor{
		ID:        uuid.New(),
		Code:      code,
		Name:      code + " Corp",
		IsActive:  active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed vendor: %v", err)
	}
	return v
}

func SeedMapping(tb testing.TB, ctx context.Context, tx *gorm.DB, vendorID uuid.UUID, namespace string, rules ...domain.Rule) *domain.Mapping {
	tb.Helper()
	now := time.Now().UTC()
	m := &domain.Mapping{
		ID:        uuid.New(),
		VendorID:  vendorID,
		Namespace: namespace,
		Rules:     datatypes.JSONSlice[domain.Rule](rules),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if m.Rules == nil {
		m.Rules = datatypes.JSONSlice[domain.Rule]{}
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed mapping: %v", err)
	}
	return m
}

func SeedHistory(tb testing.TB, ctx context.Context, tx *gorm.DB, m *domain.Mapping, change domain.ChangeType, at time.Time) *domain.MappingHistory {
	tb.Helper()
	h := domain.NewHistoryRecord(m, change, at)
	if err := tx.WithContext(ctx).Create(h).Error; err != nil {
		tb.Fatalf("seed history: %v", err)
	}
	return h
}
