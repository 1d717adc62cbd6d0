package types

import "errors"

// Config holds backend selection and runtime parameters for the kernel.
type Config struct {
	Backend        string `json:"backend" yaml:"backend" env:"METAKERNEL_BACKEND"`
	DataDir        string `json:"data_dir" yaml:"data_dir" env:"METAKERNEL_DATA_DIR"`
	DefinitionsDir string `json:"definitions_dir,omitempty" yaml:"definitions_dir,omitempty" env:"METAKERNEL_DEFINITIONS_DIR"`
	LogLevel       string `json:"log_level,omitempty" yaml:"log_level,omitempty" env:"METAKERNEL_LOG_LEVEL"`
	LogFormat      string `json:"log_format,omitempty" yaml:"log_format,omitempty" env:"METAKERNEL_LOG_FORMAT"`

	// Sync controls when the SQLite backend rewrites its JSONL file.
	// Empty means SyncImmediate.
	Sync string `json:"sync,omitempty" yaml:"sync,omitempty" env:"METAKERNEL_SYNC"`

	// PreHandlerKeywords overrides the keywords used to classify plugin
	// handlers as pre handlers. Empty means the built-in default.
	PreHandlerKeywords []string `json:"pre_handler_keywords,omitempty" yaml:"pre_handler_keywords,omitempty" env:"METAKERNEL_PRE_HANDLER_KEYWORDS" envSeparator:","`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
	BackendNone   = "none"
)

// Supported log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// JSONL sync strategies.
const (
	SyncImmediate = "immediate" // Rewrite after every write.
	SyncOnClose   = "on_close"  // Rewrite once on detach.
)

// Config validation errors.
var (
	ErrBackendEmpty     = errors.New("backend must not be empty")
	ErrBackendUnknown   = errors.New("unknown backend")
	ErrLogFormatUnknown = errors.New("unknown log format")
	ErrSyncUnknown      = errors.New("unknown sync strategy")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
	BackendNone:   true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	switch c.LogFormat {
	case "", LogFormatText, LogFormatJSON:
	default:
		return ErrLogFormatUnknown
	}
	switch c.Sync {
	case "", SyncImmediate, SyncOnClose:
	default:
		return ErrSyncUnknown
	}
	return nil
}
