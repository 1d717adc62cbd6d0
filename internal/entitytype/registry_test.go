package entitytype

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/metakernel/pkg/types"
)

func TestLookupDefaultsToCustom(t *testing.T) {
	r := New()
	assert.Equal(t, types.EntityTypeCustom, r.Lookup("customThing"))
	_, ok := r.Mapped("customThing")
	assert.False(t, ok)
}

func TestRegisterLastWriteWins(t *testing.T) {
	r := New()
	r.Register("orders", types.EntityTypeSystem)
	r.Register("orders", types.EntityTypeMeta)
	assert.Equal(t, types.EntityTypeMeta, r.Lookup("orders"))
	assert.Equal(t, 1, r.Len())
}

func TestRegisterAllAndEntries(t *testing.T) {
	r := New()
	r.RegisterAll(map[string]types.EntityType{
		"zeta":  types.EntityTypeCustom,
		"alpha": types.EntityTypeSystem,
	})
	assert.Equal(t, []Entry{
		{Name: "alpha", Type: types.EntityTypeSystem},
		{Name: "zeta", Type: types.EntityTypeCustom},
	}, r.Entries())

	r.Clear()
	assert.Empty(t, r.Entries())
	assert.Equal(t, types.EntityTypeCustom, r.Lookup("alpha"))
}

func TestConcurrentRegisterAndLookup(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Register(fmt.Sprintf("e%d", j), types.EntityTypeMeta)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = r.Lookup(fmt.Sprintf("e%d", j))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, r.Len())
}
