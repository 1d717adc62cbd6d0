// Package sqlite implements types.Store on SQLite. A JSONL file in the data
// directory is the source of truth; SQLite is rebuilt from it on attach and
// serves every read.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/metakernel/pkg/types"
)

// dbFile is the SQLite file in the data directory. It is recreated on
// every attach.
const dbFile = "metakernel.db"

// Backend is the SQLite record store.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	dataDir  string
	db       *sql.DB
	dirty    bool
	log      logrus.FieldLogger
}

var _ types.Store = (*Backend)(nil)

// NewBackend creates a detached backend. Call Attach before use.
func NewBackend(log logrus.FieldLogger) *Backend {
	if log == nil {
		l := logrus.New()
		l.SetOutput(os.Stderr)
		l.SetLevel(logrus.WarnLevel)
		log = l
	}
	return &Backend{log: log}
}

// Attach opens the backend in config.DataDir: it creates the directory and
// the JSONL file if needed, migrates a fresh SQLite database, and loads
// every record from the JSONL file.
func (b *Backend) Attach(ctx context.Context, config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	jsonlPath := filepath.Join(dataDir, recordsFile)
	if err := ensureFile(jsonlPath); err != nil {
		return fmt.Errorf("initialising %s: %w", recordsFile, err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	_ = os.Remove(dbPath)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return err
	}
	lines, err := readJSONL(jsonlPath)
	if err != nil {
		db.Close()
		return err
	}
	loaded, err := loadRecords(ctx, db, lines)
	if err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}

	b.db = db
	b.config = config
	b.dataDir = dataDir
	b.dirty = false
	b.attached = true
	b.log.WithFields(logrus.Fields{"data_dir": dataDir, "records": loaded}).Debug("attached sqlite backend")
	return nil
}

// Detach flushes pending JSONL writes and closes the database. Detach is
// idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if b.dirty {
		if err := b.persist(context.Background(), b.db); err != nil {
			return fmt.Errorf("flush pending writes: %w", err)
		}
	}
	if err := b.db.Close(); err != nil {
		return err
	}
	b.db = nil
	b.attached = false
	return nil
}

// Attached reports whether the backend is attached.
func (b *Backend) Attached() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.attached
}

// DataDir returns the directory the backend is attached to.
func (b *Backend) DataDir() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dataDir
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// persist rewrites records.jsonl from what q sees. Inside a write
// transaction that is the uncommitted state.
func (b *Backend) persist(ctx context.Context, q querier) error {
	rows, err := b.scan(ctx, q, "")
	if err != nil {
		return err
	}
	lines := make([]json.RawMessage, 0, len(rows))
	for _, r := range rows {
		line, err := r.line()
		if err != nil {
			return fmt.Errorf("encoding %s/%s: %w", r.entity, r.id, err)
		}
		lines = append(lines, line)
	}
	if err := writeJSONL(filepath.Join(b.dataDir, recordsFile), lines); err != nil {
		return err
	}
	b.dirty = false
	return nil
}

// scan reads records in creation order. An empty entity reads all.
func (b *Backend) scan(ctx context.Context, q querier, entity string) ([]row, error) {
	query := `SELECT entity, record_id, data, created_at, updated_at FROM records`
	var args []any
	if entity != "" {
		query += ` WHERE entity = ?`
		args = append(args, entity)
	}
	query += ` ORDER BY rowid`

	rs, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rs.Close()

	var out []row
	for rs.Next() {
		var r row
		var data string
		if err := rs.Scan(&r.entity, &r.id, &data, &r.createdAt, &r.updatedAt); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		r.data = []byte(data)
		out = append(out, r)
	}
	return out, rs.Err()
}

// generateUUID returns a UUID v7, falling back to v4.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
