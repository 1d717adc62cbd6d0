package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/metakernel/internal/catalog"
	"github.com/mesh-intelligence/metakernel/internal/entitytype"
	"github.com/mesh-intelligence/metakernel/internal/model"
	"github.com/mesh-intelligence/metakernel/pkg/types"
)

const ordersYAML = `properties:
  - {id: symbol, name: Symbol, data_type: String}
  - {id: qty, name: Quantity, data_type: integer, scope: order}
components:
  - id: audited
    properties:
      - {id: created_by, name: Created by, data_type: string, nullable: true}
    referenced_properties: [created_by]
models:
  - id: order
    components: [audited]
    referenced_properties: [symbol, qty]
entity_types:
  orders: meta
`

type fixture struct {
	cat    *catalog.Catalog
	models *model.Registry
	types  *entitytype.Registry
	loader *Loader
}

func newFixture() fixture {
	cat := catalog.New()
	models := model.New(cat, nil)
	et := entitytype.New()
	return fixture{cat: cat, models: models, types: et, loader: New(cat, models, et, nil)}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	f := newFixture()
	path := writeFile(t, t.TempDir(), "orders.yaml", ordersYAML)

	s, err := f.loader.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Summary{Files: 1, Properties: 2, Components: 1, Models: 1, EntityTypes: 1}, s)
	assert.Equal(t, 4, s.Total())

	qty, ok := f.cat.Get("qty")
	require.True(t, ok)
	assert.Equal(t, types.DataTypeInteger, qty.DataType)
	symbol, _ := f.cat.Get("symbol")
	assert.Equal(t, types.DataTypeString, symbol.DataType, "data types parse case-insensitively")

	props, err := f.models.ResolveEffectiveProperties("order")
	require.NoError(t, err)
	var got []string
	for _, p := range props {
		got = append(got, p.ID)
	}
	assert.Equal(t, []string{"created_by", "symbol", "qty"}, got)
	assert.Equal(t, types.EntityTypeMeta, f.types.Lookup("orders"))
}

func TestLoadYAMLRejectsBadDataType(t *testing.T) {
	f := newFixture()
	path := writeFile(t, t.TempDir(), "bad.yml", "properties:\n  - {id: x, name: X, data_type: money}\n")

	_, err := f.loader.LoadFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInvalidDataType)
	assert.Zero(t, f.cat.Len())
}

func TestLoadYAMLRejectsModelWithoutID(t *testing.T) {
	f := newFixture()
	path := writeFile(t, t.TempDir(), "bad.yaml", "models:\n  - {description: nameless}\n")

	_, err := f.loader.LoadFile(path)
	assert.ErrorIs(t, err, types.ErrInvalidID)
}

func TestLoadJSONLSkipsBadLines(t *testing.T) {
	f := newFixture()
	content := `{"kind":"property","id":"symbol","name":"Symbol","data_type":"string"}

{"kind":"property","id":"","name":"Nameless","data_type":"string"}
{"kind":"property","id":"price","name":"Price","data_type":"money"}
not json
{"kind":"widget","id":"w"}
{"kind":"model","id":"order","referenced_properties":["symbol"]}
{"kind":"entity_type","name":"orders","type":"meta"}
{"kind":"entity_type","name":"ledger","type":"bogus"}
`
	path := writeFile(t, t.TempDir(), "defs.jsonl", content)

	s, err := f.loader.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Summary{Files: 1, Properties: 1, Models: 1, EntityTypes: 1, Skipped: 5}, s)
	assert.Equal(t, 1, f.cat.Len())
	assert.Equal(t, types.EntityTypeMeta, f.types.Lookup("orders"))
	_, mapped := f.types.Mapped("ledger")
	assert.False(t, mapped)
}

func TestLoadDir(t *testing.T) {
	f := newFixture()
	dir := t.TempDir()
	writeFile(t, dir, "10-orders.yaml", ordersYAML)
	writeFile(t, dir, "20-override.jsonl", `{"kind":"property","id":"qty","name":"Quantity","data_type":"long","scope":"order"}`+"\n")
	writeFile(t, dir, "README.md", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yaml"), 0o755))

	s, err := f.loader.LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Files)
	assert.Equal(t, 3, s.Properties)

	qty, _ := f.cat.Get("qty")
	assert.Equal(t, types.DataTypeLong, qty.DataType, "later files replace earlier definitions")
}

func TestLoadDirMissing(t *testing.T) {
	f := newFixture()
	s, err := f.loader.LoadDir(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Zero(t, s)
}

func TestLoadFileUnsupportedExtension(t *testing.T) {
	f := newFixture()
	path := writeFile(t, t.TempDir(), "defs.toml", "")
	_, err := f.loader.LoadFile(path)
	assert.Error(t, err)
}
