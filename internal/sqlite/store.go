package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/metakernel/pkg/types"
)

// Create inserts a record. An empty id gets a UUID v7. Creating an ID that
// already exists for the entity fails.
func (b *Backend) Create(ctx context.Context, shape types.EntityShape, id string, data *types.Payload) (types.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.Record{}, types.ErrStoreDetached
	}
	if id == "" {
		id = generateUUID()
	}
	if data == nil {
		data = &types.Payload{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return types.Record{}, fmt.Errorf("encoding record: %w", err)
	}

	ts := now()
	err = b.write(ctx, "create", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO records (entity, record_id, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			shape.Entity, id, string(raw), ts, ts)
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE") {
				return fmt.Errorf("record %s/%s already exists", shape.Entity, id)
			}
			return fmt.Errorf("inserting record: %w", err)
		}
		return nil
	})
	if err != nil {
		return types.Record{}, err
	}
	return row{entity: shape.Entity, id: id, data: raw, createdAt: ts, updatedAt: ts}.record()
}

// Update merges data into every record of the entity matching filter.
func (b *Backend) Update(ctx context.Context, shape types.EntityShape, data *types.Payload, filter types.Filter) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	rows, err := b.matching(ctx, shape.Entity, filter)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []string{}, nil
	}

	ts := now()
	err = b.write(ctx, "update", func(tx *sql.Tx) error {
		for _, r := range rows {
			var doc types.Payload
			if err := json.Unmarshal(r.data, &doc); err != nil {
				return fmt.Errorf("decoding %s/%s: %w", r.entity, r.id, err)
			}
			data.Range(func(k string, v any) bool {
				doc.Set(k, v)
				return true
			})
			raw, err := json.Marshal(&doc)
			if err != nil {
				return fmt.Errorf("encoding %s/%s: %w", r.entity, r.id, err)
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE records SET data = ?, updated_at = ? WHERE entity = ? AND record_id = ?`,
				string(raw), ts, r.entity, r.id); err != nil {
				return fmt.Errorf("updating %s/%s: %w", r.entity, r.id, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids(rows), nil
}

// Delete removes every record of the entity matching filter.
func (b *Backend) Delete(ctx context.Context, shape types.EntityShape, filter types.Filter) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	rows, err := b.matching(ctx, shape.Entity, filter)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []string{}, nil
	}

	err = b.write(ctx, "delete", func(tx *sql.Tx) error {
		for _, r := range rows {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM records WHERE entity = ? AND record_id = ?`, r.entity, r.id); err != nil {
				return fmt.Errorf("deleting %s/%s: %w", r.entity, r.id, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids(rows), nil
}

// write runs fn in a transaction and commits only after the JSONL file
// reflects the transaction's view. A failed rewrite rolls the change back.
// The caller holds the write lock.
func (b *Backend) write(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning %s: %w", op, err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if b.config.Sync == types.SyncOnClose {
		b.dirty = true
	} else if err := b.persist(ctx, tx); err != nil {
		return fmt.Errorf("%s not applied: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s: %w", op, err)
	}
	return nil
}

func ids(rows []row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.id
	}
	return out
}

// Query returns the records of the entity matching filter in creation
// order. No match yields an empty, non-nil slice.
func (b *Backend) Query(ctx context.Context, shape types.EntityShape, filter types.Filter) ([]types.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	rows, err := b.matching(ctx, shape.Entity, filter)
	if err != nil {
		return nil, err
	}
	out := make([]types.Record, 0, len(rows))
	for _, r := range rows {
		rec, err := r.record()
		if err != nil {
			return nil, fmt.Errorf("decoding %s/%s: %w", r.entity, r.id, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Counts returns the number of records per entity.
func (b *Backend) Counts(ctx context.Context) (map[string]int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	rs, err := b.db.QueryContext(ctx, `SELECT entity, COUNT(*) FROM records GROUP BY entity`)
	if err != nil {
		return nil, fmt.Errorf("counting records: %w", err)
	}
	defer rs.Close()
	out := make(map[string]int)
	for rs.Next() {
		var entity string
		var n int
		if err := rs.Scan(&entity, &n); err != nil {
			return nil, err
		}
		out[entity] = n
	}
	return out, rs.Err()
}

func (b *Backend) matching(ctx context.Context, entity string, filter types.Filter) ([]row, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	rows, err := b.scan(ctx, b.db, entity)
	if err != nil {
		return nil, err
	}
	out := rows[:0]
	for _, r := range rows {
		if matches(r.id, r.data, filter) {
			out = append(out, r)
		}
	}
	return out, nil
}
