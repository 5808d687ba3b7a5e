package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/yungbote/parammap-backend/internal/domain"
	"github.com/yungbote/parammap-backend/internal/platform/pagination"
)

func TestHistoryListNewestFirstWithFilters(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	v := seedVendor(t, h, "ACME", true)
	m, _ := h.mappings.Create(ctx, MappingCreate{VendorID: v.ID.String(), Rules: acmeRules()})
	_, _ = h.mappings.Update(ctx, m.ID.String(), MappingPatch{Namespace: strPtr("n2")})
	other, _ := h.mappings.Create(ctx, MappingCreate{VendorID: v.ID.String(), Namespace: strPtr("n3"), Rules: []domain.Rule{}})

	page, err := h.history.List(ctx, HistoryQuery{MappingID: m.ID.String()}, testPage(t))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 2 || page.Items[0].Version != 2 || page.Items[1].ChangeType != domain.ChangeCreate {
		t.Fatalf("mapping history order: %+v", page.Items)
	}

	page, _ = h.history.List(ctx, HistoryQuery{VendorID: v.ID.String()}, testPage(t))
	if page.Total != 3 || page.Items[0].MappingID != other.ID {
		t.Fatalf("vendor history: %+v", page.Items)
	}

	if _, err := h.history.List(ctx, HistoryQuery{MappingID: "bad"}, testPage(t)); !domain.IsCode(err, domain.CodeValidation) {
		t.Fatalf("bad id: want validation got %v", err)
	}
}

func TestHistoryListWithoutPageReturnsEverything(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	v := seedVendor(t, h, "ACME", true)
	m, _ := h.mappings.Create(ctx, MappingCreate{VendorID: v.ID.String(), Rules: acmeRules()})
	updates := pagination.DefaultSize + 10
	for i := 0; i < updates; i++ {
		rules := []domain.Rule{{InputParam: "first_name", OutputParam: fmt.Sprintf("f%d", i)}}
		if _, err := h.mappings.Update(ctx, m.ID.String(), MappingPatch{Rules: rules}); err != nil {
			t.Fatalf("Update %d: %v", i, err)
		}
	}

	all, err := h.history.List(ctx, HistoryQuery{MappingID: m.ID.String()}, pagination.Page{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all.Items) != updates+1 || all.Total != int64(updates+1) {
		t.Fatalf("want %d records, got items=%d total=%d", updates+1, len(all.Items), all.Total)
	}
	if all.Items[0].Version != updates+1 || all.Items[len(all.Items)-1].ChangeType != domain.ChangeCreate {
		t.Fatalf("order: first=%+v last=%+v", all.Items[0], all.Items[len(all.Items)-1])
	}
	if all.Page != 1 || all.Size != updates+1 {
		t.Fatalf("unbounded envelope: page=%d size=%d", all.Page, all.Size)
	}

	paged, _ := h.history.List(ctx, HistoryQuery{MappingID: m.ID.String()}, testPage(t))
	if len(paged.Items) != pagination.DefaultSize {
		t.Fatalf("explicit page should be bounded, got %d", len(paged.Items))
	}
}
