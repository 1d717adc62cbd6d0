// Package catalog holds the shared property catalog: the single source of
// truth for property definitions, indexed by ID and by scope.
package catalog

import (
	"io"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/metakernel/pkg/types"
)

// Stats summarises the catalog contents.
type Stats struct {
	TotalProperties int            `json:"total_properties"`
	ScopeCount      int            `json:"scope_count"`
	CountByScope    map[string]int `json:"count_by_scope"`
}

type entry struct {
	def types.PropertyDefinition
	seq uint64
}

// Catalog is a concurrent registry of property definitions. Lookups always
// see the most recently registered definition for an ID.
type Catalog struct {
	mu      sync.RWMutex
	byID    map[string]entry
	byScope map[string]map[string]struct{}
	seq     uint64
	log     logrus.FieldLogger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger used for registration warnings.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates an empty catalog.
func New(opts ...Option) *Catalog {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	c := &Catalog{
		byID:    make(map[string]entry),
		byScope: make(map[string]map[string]struct{}),
		log:     discard,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register adds or replaces a property definition. A nil definition or an
// empty ID is ignored with a warning and Register returns false.
func (c *Catalog) Register(def *types.PropertyDefinition) bool {
	if def == nil || def.ID == "" {
		c.log.Warn("ignoring property definition without an id")
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	if prev, ok := c.byID[def.ID]; ok {
		c.log.WithField("property", def.ID).Debug("replacing property definition")
		c.unindex(prev.def)
	}
	c.byID[def.ID] = entry{def: *def, seq: c.seq}
	bucket, ok := c.byScope[def.Scope]
	if !ok {
		bucket = make(map[string]struct{})
		c.byScope[def.Scope] = bucket
	}
	bucket[def.ID] = struct{}{}
	return true
}

func (c *Catalog) unindex(def types.PropertyDefinition) {
	bucket := c.byScope[def.Scope]
	delete(bucket, def.ID)
	if len(bucket) == 0 {
		delete(c.byScope, def.Scope)
	}
}

// Get returns the definition registered for id.
func (c *Catalog) Get(id string) (types.PropertyDefinition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.byID[id]
	return e.def, ok
}

// GetMany returns the definitions for ids in the requested order. Unknown
// IDs are dropped.
func (c *Catalog) GetMany(ids []string) []types.PropertyDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]types.PropertyDefinition, 0, len(ids))
	for _, id := range ids {
		if e, ok := c.byID[id]; ok {
			out = append(out, e.def)
		}
	}
	return out
}

// GetByScope returns the definitions in scope, in registration order. The
// empty scope selects universal properties. The result is never nil.
func (c *Catalog) GetByScope(scope string) []types.PropertyDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	bucket := c.byScope[scope]
	entries := make([]entry, 0, len(bucket))
	for id := range bucket {
		entries = append(entries, c.byID[id])
	}
	return sorted(entries)
}

// ValidateReferences returns the IDs in ids that are not registered, in
// input order. A fully valid list yields an empty, non-nil slice.
func (c *Catalog) ValidateReferences(ids []string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	missing := []string{}
	for _, id := range ids {
		if _, ok := c.byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// All returns every definition in registration order.
func (c *Catalog) All() []types.PropertyDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entries := make([]entry, 0, len(c.byID))
	for _, e := range c.byID {
		entries = append(entries, e)
	}
	return sorted(entries)
}

// Len returns the number of registered definitions.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}

// Stats returns counts by scope.
func (c *Catalog) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := Stats{
		TotalProperties: len(c.byID),
		ScopeCount:      len(c.byScope),
		CountByScope:    make(map[string]int, len(c.byScope)),
	}
	for scope, bucket := range c.byScope {
		s.CountByScope[scope] = len(bucket)
	}
	return s
}

// Clear removes every definition.
func (c *Catalog) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID = make(map[string]entry)
	c.byScope = make(map[string]map[string]struct{})
}

func sorted(entries []entry) []types.PropertyDefinition {
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	out := make([]types.PropertyDefinition, len(entries))
	for i, e := range entries {
		out[i] = e.def
	}
	return out
}
