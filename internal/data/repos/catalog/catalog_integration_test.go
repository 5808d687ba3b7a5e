package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/yungbote/parammap-backend/internal/data/repos/testutil"
	"github.com/yungbote/parammap-backend/internal/domain"
	"github.com/yungbote/parammap-backend/internal/platform/dbctx"
	"github.com/yungbote/parammap-backend/internal/platform/pagination"
)

func TestMappingRepoIntegration(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	log := testutil.Logger(t)
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	mappings := NewMappingRepo(tx, log)
	history := NewHistoryRepo(tx, log)

	v := testutil.SeedVendor(t, ctx, tx, "IT-"+time.Now().Format("150405.000000"), true)
	m := testutil.SeedMapping(t, ctx, tx, v.ID, domain.DefaultNamespace,
		domain.Rule{InputParam: "first_name", OutputParam: "fname"})

	got, err := mappings.GetByVendorAndNamespace(dbc, v.ID, domain.DefaultNamespace)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, m.ID, got.ID)
	assert.Equal(t, "fname", got.Rules[0].OutputParam)

	dup := &domain.Mapping{VendorID: v.ID, Namespace: domain.DefaultNamespace, Rules: datatypes.JSONSlice[domain.Rule]{}, Version: 1}
	err = mappings.Create(dbctx.Context{Ctx: ctx, Tx: tx.SavePoint("dup")}, dup)
	assert.True(t, domain.IsCode(err, domain.CodeConflict), "got %v", err)
	tx.RollbackTo("dup")

	ok, err := mappings.UpdateFieldsIfVersion(dbc, m.ID, 1, map[string]any{"version": 2, "updated_at": time.Now().UTC()})
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = mappings.UpdateFieldsIfVersion(dbc, m.ID, 1, map[string]any{"version": 2})
	require.NoError(t, err)
	assert.False(t, ok, "stale version must not match")

	base := time.Now().UTC().Add(-time.Hour)
	testutil.SeedHistory(t, ctx, tx, m, domain.ChangeCreate, base)
	m.Version = 2
	testutil.SeedHistory(t, ctx, tx, m, domain.ChangeUpdate, base.Add(time.Minute))

	page, err := pagination.New(1, 10, 0)
	require.NoError(t, err)
	rows, err := history.List(dbc, HistoryFilter{MappingID: &m.ID}, page)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.ChangeUpdate, rows[0].ChangeType)
	assert.Equal(t, 2, rows[0].Version)

	n, err := mappings.DeleteAllByVendor(dbc, v.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = history.DeleteAllByVendor(dbc, v.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}
