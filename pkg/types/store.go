package types

import (
	"context"
	"time"
)

// Store is the storage adapter contract. Each method receives the shape
// resolved for the execution and is a synchronous call from the kernel's
// point of view; timeouts and retries belong to the adapter.
type Store interface {
	// Create inserts a record. When id is empty the store assigns one.
	Create(ctx context.Context, shape EntityShape, id string, data *Payload) (Record, error)

	// Update merges data into every record matching filter and returns
	// the IDs of the records changed, in creation order.
	Update(ctx context.Context, shape EntityShape, data *Payload, filter Filter) ([]string, error)

	// Delete removes every record matching filter and returns the IDs of
	// the records removed.
	Delete(ctx context.Context, shape EntityShape, filter Filter) ([]string, error)

	// Query returns the records matching filter in creation order.
	Query(ctx context.Context, shape EntityShape, filter Filter) ([]Record, error)
}

// Record is a stored entity instance.
type Record struct {
	ID        string    `json:"id"`
	Entity    string    `json:"entity"`
	Data      *Payload  `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WriteResult reports the records an update or delete touched.
type WriteResult struct {
	Entity   string   `json:"entity"`
	Affected int      `json:"affected"`
	IDs      []string `json:"ids,omitempty"`
}

// NewWriteResult builds the result of a write that touched ids.
func NewWriteResult(entity string, ids []string) WriteResult {
	return WriteResult{Entity: entity, Affected: len(ids), IDs: ids}
}
