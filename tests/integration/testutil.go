// Package integration runs the metakernel binary end to end against
// isolated config and data directories.
package integration

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// ordersDefinitions maps the orders entity to a model with a required
// symbol and quantity.
const ordersDefinitions = `properties:
  - {id: symbol, name: Symbol, data_type: string}
  - {id: qty, name: Quantity, data_type: integer}
  - {id: side, name: Side, data_type: string, nullable: true, scope: trading}
models:
  - id: base_order
    abstract: true
    referenced_properties: [symbol]
  - id: orders
    extends_model: base_order
    referenced_properties: [qty, side]
entity_types:
  orders: meta
`

var (
	// metakernelBin is the path to the built metakernel binary.
	metakernelBin string
	// buildErr captures any build error.
	buildErr error
)

// BuildError wraps a build error with output.
type BuildError struct {
	Err    error
	Output string
}

func (e *BuildError) Error() string {
	return e.Err.Error() + ": " + e.Output
}

// FindProjectRoot finds the project root by walking up and looking for go.mod.
func FindProjectRoot() (string, error) {
	// Start from the current working directory
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		goModPath := filepath.Join(dir, "go.mod")
		if _, err := os.Stat(goModPath); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// SetMetakernelBin sets the path to the metakernel binary (called from TestMain).
func SetMetakernelBin(path string) {
	metakernelBin = path
}

// SetBuildErr sets the build error (called from TestMain).
func SetBuildErr(err error) {
	buildErr = err
}

// TestEnv provides an isolated test environment with its own config and data directory.
type TestEnv struct {
	t       *testing.T
	TempDir string
	Config  string
	DataDir string
}

// NewTestEnv creates a new isolated test environment.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	if buildErr != nil {
		t.Fatalf("failed to build metakernel: %v", buildErr)
	}
	if metakernelBin == "" {
		t.Fatal("metakernel binary not built (metakernelBin is empty)")
	}

	tempDir := t.TempDir()
	dataDir := filepath.Join(tempDir, "data")
	configDir := filepath.Join(tempDir, "config")

	// Create config directory and write config.yaml
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	configContent := "backend: sqlite\ndata_dir: " + dataDir + "\n"
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	defsDir := filepath.Join(configDir, "definitions")
	if err := os.MkdirAll(defsDir, 0755); err != nil {
		t.Fatalf("failed to create definitions dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(defsDir, "orders.yaml"), []byte(ordersDefinitions), 0644); err != nil {
		t.Fatalf("failed to write definitions: %v", err)
	}

	return &TestEnv{
		t:       t,
		TempDir: tempDir,
		Config:  configDir,
		DataDir: dataDir,
	}
}

// CmdResult holds the result of a metakernel command execution.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// RunMetakernel executes the metakernel CLI with the given arguments.
// Returns stdout, stderr, and exit code.
func (e *TestEnv) RunMetakernel(args ...string) CmdResult {
	e.t.Helper()

	allArgs := append([]string{"--config-dir", e.Config, "--data-dir", e.DataDir}, args...)
	cmd := exec.Command(metakernelBin, allArgs...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			e.t.Fatalf("failed to run metakernel: %v", err)
		}
	}

	return CmdResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}
}

// MustRunMetakernel executes the metakernel CLI and fails the test if it returns non-zero.
func (e *TestEnv) MustRunMetakernel(args ...string) CmdResult {
	e.t.Helper()
	result := e.RunMetakernel(args...)
	if result.ExitCode != 0 {
		e.t.Fatalf("metakernel %v failed with exit code %d:\nstdout: %s\nstderr: %s",
			args, result.ExitCode, result.Stdout, result.Stderr)
	}
	return result
}

// ParseJSON parses JSON output into the target type.
func ParseJSON[T any](t *testing.T, jsonStr string) T {
	t.Helper()
	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		t.Fatalf("failed to parse JSON %q: %v", jsonStr, err)
	}
	return result
}

// Result mirrors the --json output of a data command.
type Result[T any] struct {
	Status string `json:"status"`
	Data   T      `json:"data"`
	Reason string `json:"reason"`
}

// Record is a stored record as printed by the CLI.
type Record struct {
	ID        string         `json:"id"`
	Entity    string         `json:"entity"`
	Data      map[string]any `json:"data"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at"`
}

// WriteResult is the outcome of an update or delete.
type WriteResult struct {
	Entity   string `json:"entity"`
	Affected int    `json:"affected"`
}

// ReadJSONLFile reads a JSONL file (one JSON object per line) and returns a slice.
func ReadJSONLFile[T any](t *testing.T, path string) []T {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open JSONL file %s: %v", path, err)
	}
	defer f.Close()

	var results []T
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var record T
		if err := json.Unmarshal(line, &record); err != nil {
			t.Fatalf("failed to parse JSONL line in %s: %v", path, err)
		}
		results = append(results, record)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("failed to scan JSONL file %s: %v", path, err)
	}
	return results
}
