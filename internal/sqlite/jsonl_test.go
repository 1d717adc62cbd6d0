package sqlite

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadJSONLSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")
	content := "{\"a\":1}\n\nnot json\n{\"b\":2}\n{\"truncated\":\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	lines, err := readJSONL(path)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"a":1}`, string(lines[0]))
	assert.JSONEq(t, `{"b":2}`, string(lines[1]))
}

func TestReadJSONLMissingFile(t *testing.T) {
	lines, err := readJSONL(filepath.Join(t.TempDir(), "absent.jsonl"))
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestWriteJSONLReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "records.jsonl")
	require.NoError(t, writeJSONL(path, []json.RawMessage{json.RawMessage(`{"a":1}`)}))
	require.NoError(t, writeJSONL(path, []json.RawMessage{json.RawMessage(`{"b":2}`), json.RawMessage(`{"c":3}`)}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"b\":2}\n{\"c\":3}\n", string(raw))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestEnsureFileKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")
	require.NoError(t, ensureFile(path))
	require.NoError(t, os.WriteFile(path, []byte("{\"a\":1}\n"), 0o644))
	require.NoError(t, ensureFile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":1}\n", string(raw))
}
