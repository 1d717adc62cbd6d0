package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/metakernel/pkg/types"
)

func TestCreateAssignsIDWhenEmpty(t *testing.T) {
	b := attach(t, t.TempDir(), "")
	rec, err := b.Create(context.Background(), ordersShape, "", types.NewPayload("symbol", "ACME"))
	require.NoError(t, err)

	assert.Len(t, rec.ID, 36)
	assert.Equal(t, "orders", rec.Entity)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)
	symbol, _ := rec.Data.Get("symbol")
	assert.Equal(t, "ACME", symbol)
}

func TestCreateDuplicateFails(t *testing.T) {
	b := attach(t, t.TempDir(), "")
	ctx := context.Background()
	_, err := b.Create(ctx, ordersShape, "o-1", nil)
	require.NoError(t, err)

	_, err = b.Create(ctx, ordersShape, "o-1", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	other := types.EntityShape{Entity: "invoices"}
	_, err = b.Create(ctx, other, "o-1", nil)
	assert.NoError(t, err, "IDs are scoped per entity")
}

func TestUpdateMergesFields(t *testing.T) {
	b := attach(t, t.TempDir(), "")
	ctx := context.Background()
	_, err := b.Create(ctx, ordersShape, "o-1", types.NewPayload("symbol", "ACME", "qty", 1))
	require.NoError(t, err)
	_, err = b.Create(ctx, ordersShape, "o-2", types.NewPayload("symbol", "INIT", "qty", 2))
	require.NoError(t, err)

	ids, err := b.Update(ctx, ordersShape, types.NewPayload("qty", 5, "note", "rush"), types.Eq("symbol", "ACME"))
	require.NoError(t, err)
	assert.Equal(t, []string{"o-1"}, ids)

	recs, err := b.Query(ctx, ordersShape, types.ByRecordID("o-1"))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, []string{"symbol", "qty", "note"}, recs[0].Data.Keys())
	qty, _ := recs[0].Data.Get("qty")
	assert.EqualValues(t, "5", qty)

	untouched, err := b.Query(ctx, ordersShape, types.ByRecordID("o-2"))
	require.NoError(t, err)
	qty, _ = untouched[0].Data.Get("qty")
	assert.EqualValues(t, "2", qty)
}

func TestUpdateNoMatch(t *testing.T) {
	b := attach(t, t.TempDir(), "")
	ids, err := b.Update(context.Background(), ordersShape, types.NewPayload("a", 1), types.ByRecordID("missing"))
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestDeleteByFilter(t *testing.T) {
	b := attach(t, t.TempDir(), "")
	ctx := context.Background()
	for i, sym := range []string{"ACME", "ACME", "INIT"} {
		_, err := b.Create(ctx, ordersShape, "", types.NewPayload("symbol", sym, "seq", i))
		require.NoError(t, err)
	}

	ids, err := b.Delete(ctx, ordersShape, types.Eq("symbol", "ACME"))
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	recs, err := b.Query(ctx, ordersShape, types.EmptyFilter())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	sym, _ := recs[0].Data.Get("symbol")
	assert.Equal(t, "INIT", sym)
}

func TestQueryEmptyIsNonNil(t *testing.T) {
	b := attach(t, t.TempDir(), "")
	recs, err := b.Query(context.Background(), ordersShape, types.Eq("symbol", "none"))
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestQueryRejectsInvalidFilter(t *testing.T) {
	b := attach(t, t.TempDir(), "")
	bad := types.Filter{Conditions: []types.Condition{{Field: "a", Op: "like"}}}
	_, err := b.Query(context.Background(), ordersShape, bad)
	assert.True(t, errors.Is(err, types.ErrInvalidFilter))
}

func TestQueryIsScopedToEntity(t *testing.T) {
	b := attach(t, t.TempDir(), "")
	ctx := context.Background()
	_, err := b.Create(ctx, ordersShape, "o-1", nil)
	require.NoError(t, err)
	_, err = b.Create(ctx, types.EntityShape{Entity: "invoices"}, "i-1", nil)
	require.NoError(t, err)

	recs, err := b.Query(ctx, ordersShape, types.Filter{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "o-1", recs[0].ID)
}

func TestCounts(t *testing.T) {
	b := attach(t, t.TempDir(), "")
	ctx := context.Background()
	for _, id := range []string{"a", "b"} {
		_, err := b.Create(ctx, ordersShape, id, nil)
		require.NoError(t, err)
	}
	_, err := b.Create(ctx, types.EntityShape{Entity: "invoices"}, "i", nil)
	require.NoError(t, err)

	counts, err := b.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"orders": 2, "invoices": 1}, counts)
}

// breakJSONL replaces records.jsonl with a directory so the next rewrite
// fails.
func breakJSONL(t *testing.T, dir string) {
	t.Helper()
	path := filepath.Join(dir, recordsFile)
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0o755))
}

func TestFailedPersistLeavesNoTrace(t *testing.T) {
	dir := t.TempDir()
	b := attach(t, dir, "")
	ctx := context.Background()
	_, err := b.Create(ctx, ordersShape, "o-1", types.NewPayload("symbol", "ACME"))
	require.NoError(t, err)

	breakJSONL(t, dir)

	_, err = b.Create(ctx, ordersShape, "o-2", types.NewPayload("symbol", "INIT"))
	require.Error(t, err)
	_, err = b.Update(ctx, ordersShape, types.NewPayload("symbol", "ZZZ"), types.ByRecordID("o-1"))
	require.Error(t, err)
	_, err = b.Delete(ctx, ordersShape, types.ByRecordID("o-1"))
	require.Error(t, err)

	recs, err := b.Query(ctx, ordersShape, types.EmptyFilter())
	require.NoError(t, err)
	require.Len(t, recs, 1, "failed writes must be rolled back")
	assert.Equal(t, "o-1", recs[0].ID)
	sym, _ := recs[0].Data.Get("symbol")
	assert.Equal(t, "ACME", sym)
}
