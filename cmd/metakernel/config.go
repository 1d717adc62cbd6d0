package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/metakernel/internal/paths"
	"github.com/mesh-intelligence/metakernel/pkg/kernel"
	"github.com/mesh-intelligence/metakernel/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyBackend            = "backend"
	cfgKeyDataDir            = "data_dir"
	cfgKeyDefinitionsDir     = "definitions_dir"
	cfgKeyLogLevel           = "log_level"
	cfgKeyLogFormat          = "log_format"
	cfgKeySync               = "sync"
	cfgKeyPreHandlerKeywords = "pre_handler_keywords"

	defaultLogLevel = "warn"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# metakernel configuration

# Record store: sqlite or none
backend: sqlite

# Data directory (optional; overridable by --data-dir)
# data_dir:

# Definition files, *.yaml and *.jsonl (default: <config dir>/definitions)
# definitions_dir:

# JSONL sync: immediate or on_close
sync: immediate

# Logging: level is a logrus level, format is text or json
log_level: warn
log_format: text

# Handler names containing one of these keywords register as pre handlers
# pre_handler_keywords: [validation, permission, autofill, audit]
`

// loadConfig reads config.yaml from configDir, creating the directory and
// a default file on first run, then applies directory flags and METAKERNEL_*
// environment overrides. Directory precedence is flag > env > config.yaml
// > default.
func loadConfig(configDir string) (types.Config, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return types.Config{}, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return types.Config{}, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyLogFormat, types.LogFormatText)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return types.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := types.Config{
		Backend:            v.GetString(cfgKeyBackend),
		DataDir:            v.GetString(cfgKeyDataDir),
		DefinitionsDir:     v.GetString(cfgKeyDefinitionsDir),
		LogLevel:           v.GetString(cfgKeyLogLevel),
		LogFormat:          v.GetString(cfgKeyLogFormat),
		Sync:               v.GetString(cfgKeySync),
		PreHandlerKeywords: v.GetStringSlice(cfgKeyPreHandlerKeywords),
	}
	cfg, err := kernel.ApplyEnv(cfg)
	if err != nil {
		return types.Config{}, err
	}

	// The env override was applied above, so only the flag can still win.
	if cfg.DataDir, err = paths.ResolveDataDir(flagDataDir, cfg.DataDir); err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	if cfg.DefinitionsDir, err = paths.ResolveDefinitionsDir(flagDefinitionsDir, cfg.DefinitionsDir, configDir); err != nil {
		return types.Config{}, fmt.Errorf("resolve definitions dir: %w", err)
	}
	return cfg, cfg.Validate()
}

func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// ensureDefaultConfigFile creates config.yaml if it does not exist.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
