package sqlite

import (
	"encoding/json"
	"time"

	"github.com/mesh-intelligence/metakernel/pkg/types"
)

// timeLayout is how timestamps are stored in SQLite and JSONL.
const timeLayout = time.RFC3339Nano

// recordJSON is one line of records.jsonl.
type recordJSON struct {
	Entity    string          `json:"entity"`
	ID        string          `json:"id"`
	Data      json.RawMessage `json:"data"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

// row is a records row as read from SQLite.
type row struct {
	entity    string
	id        string
	data      []byte
	createdAt string
	updatedAt string
}

func (r row) record() (types.Record, error) {
	var data types.Payload
	if err := json.Unmarshal(r.data, &data); err != nil {
		return types.Record{}, err
	}
	rec := types.Record{ID: r.id, Entity: r.entity, Data: &data}
	rec.CreatedAt, _ = time.Parse(timeLayout, r.createdAt)
	rec.UpdatedAt, _ = time.Parse(timeLayout, r.updatedAt)
	return rec, nil
}

func (r row) line() (json.RawMessage, error) {
	return json.Marshal(recordJSON{
		Entity:    r.entity,
		ID:        r.id,
		Data:      json.RawMessage(r.data),
		CreatedAt: r.createdAt,
		UpdatedAt: r.updatedAt,
	})
}

func now() string {
	return time.Now().UTC().Format(timeLayout)
}
