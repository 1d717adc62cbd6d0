package catalog

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/metakernel/pkg/types"
)

func prop(id, scope string, dt types.DataType) *types.PropertyDefinition {
	return &types.PropertyDefinition{ID: id, Name: id, DataType: dt, Scope: scope}
}

func TestRegisterAndGet(t *testing.T) {
	c := New()
	assert.True(t, c.Register(prop("price", "trading", types.DataTypeDecimal)))

	got, ok := c.Get("price")
	require.True(t, ok)
	assert.Equal(t, types.DataTypeDecimal, got.DataType)

	_, ok = c.Get("qty")
	assert.False(t, ok)
}

func TestRegisterIgnoresInvalid(t *testing.T) {
	c := New()
	assert.False(t, c.Register(nil))
	assert.False(t, c.Register(&types.PropertyDefinition{Name: "no id"}))
	assert.Equal(t, 0, c.Len())
}

func TestRegisterReplacesAndReindexesScope(t *testing.T) {
	c := New()
	c.Register(prop("name", "crm", types.DataTypeString))
	c.Register(prop("name", "", types.DataTypeText))

	got, _ := c.Get("name")
	assert.Equal(t, types.DataTypeText, got.DataType, "latest definition wins")
	assert.Empty(t, c.GetByScope("crm"), "old scope bucket must not keep the id")
	assert.Len(t, c.GetByScope(""), 1)

	stats := c.Stats()
	assert.Equal(t, 1, stats.TotalProperties)
	assert.Equal(t, 1, stats.ScopeCount)
}

func TestGetManyKeepsOrderAndDropsUnknown(t *testing.T) {
	c := New()
	c.Register(prop("a", "", types.DataTypeString))
	c.Register(prop("b", "", types.DataTypeString))

	got := c.GetMany([]string{"b", "missing", "a"})
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
}

func TestGetByScopeNeverNil(t *testing.T) {
	c := New()
	got := c.GetByScope("nothing")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGetByScopeRegistrationOrder(t *testing.T) {
	c := New()
	for _, id := range []string{"z", "m", "a"} {
		c.Register(prop(id, "s", types.DataTypeString))
	}
	got := c.GetByScope("s")
	ids := []string{got[0].ID, got[1].ID, got[2].ID}
	assert.Equal(t, []string{"z", "m", "a"}, ids)
}

func TestValidateReferences(t *testing.T) {
	c := New()
	c.Register(prop("a", "", types.DataTypeString))

	missing := c.ValidateReferences([]string{"a"})
	assert.NotNil(t, missing)
	assert.Empty(t, missing)

	assert.Equal(t, []string{"x", "y"}, c.ValidateReferences([]string{"x", "a", "y"}))
}

func TestStatsAndClear(t *testing.T) {
	c := New()
	c.Register(prop("a", "", types.DataTypeString))
	c.Register(prop("b", "trading", types.DataTypeString))
	c.Register(prop("c", "trading", types.DataTypeString))

	stats := c.Stats()
	assert.Equal(t, 3, stats.TotalProperties)
	assert.Equal(t, 2, stats.ScopeCount)
	assert.Equal(t, map[string]int{"": 1, "trading": 2}, stats.CountByScope)

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.All())
}

func TestConcurrentRegisterAndRead(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				id := fmt.Sprintf("p%d", j)
				c.Register(prop(id, fmt.Sprintf("s%d", i%2), types.DataTypeString))
				c.Get(id)
				c.GetByScope("s0")
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, c.Len())
}
