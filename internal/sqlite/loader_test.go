package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/metakernel/pkg/types"
)

func TestAttachLoadsValidRecordsOnly(t *testing.T) {
	dir := t.TempDir()
	content := `{"entity":"orders","id":"o-1","data":{"qty":1},"created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:00Z"}
{"entity":"orders","id":"o-1","data":{"qty":99}}
{"entity":"","id":"x","data":{}}
{"entity":"orders","id":"o-2","data":[1,2]}
garbage
{"entity":"orders","id":"o-3","data":{"qty":3},"future_field":true}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, recordsFile), []byte(content), 0o644))

	b := attach(t, dir, "")
	recs, err := b.Query(context.Background(), ordersShape, types.Filter{})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "o-1", recs[0].ID)
	assert.Equal(t, "o-3", recs[1].ID)

	qty, _ := recs[0].Data.Get("qty")
	assert.EqualValues(t, "1", qty, "the first occurrence of a key wins")
	assert.Equal(t, 2026, recs[0].CreatedAt.Year())
}

func TestIsObject(t *testing.T) {
	assert.True(t, isObject([]byte(` {"a":1}`)))
	assert.False(t, isObject([]byte(`[1]`)))
	assert.False(t, isObject(nil))
}
