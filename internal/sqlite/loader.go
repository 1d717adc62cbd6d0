package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// loadRecords inserts the lines of records.jsonl into SQLite in one
// transaction, so the table is either fully loaded or empty. Lines that do
// not decode, lack an entity or ID, or repeat an earlier key are skipped.
func loadRecords(ctx context.Context, db *sql.DB, lines []json.RawMessage) (loaded int, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO records (entity, record_id, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing record insert: %w", err)
	}
	defer stmt.Close()

	for _, line := range lines {
		var rec recordJSON
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		if rec.Entity == "" || rec.ID == "" || !isObject(rec.Data) {
			continue
		}
		if rec.CreatedAt == "" {
			rec.CreatedAt = now()
		}
		if rec.UpdatedAt == "" {
			rec.UpdatedAt = rec.CreatedAt
		}
		res, err := stmt.ExecContext(ctx, rec.Entity, rec.ID, string(rec.Data), rec.CreatedAt, rec.UpdatedAt)
		if err != nil {
			return 0, fmt.Errorf("loading %s/%s: %w", rec.Entity, rec.ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			loaded++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing load transaction: %w", err)
	}
	return loaded, nil
}

func isObject(raw json.RawMessage) bool {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}
