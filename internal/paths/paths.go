// Package paths resolves the configuration, data and definitions
// directories used by the metakernel CLI.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// appName is the directory name under the platform config and data roots.
const appName = "metakernel"

// CWD-relative directory names.
const (
	DefaultConfigDirName      = ".metakernel"
	DefaultDataDirName        = ".metakernel-db"
	DefaultDefinitionsDirName = "definitions"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir      = "METAKERNEL_CONFIG_DIR"
	EnvDataDir        = "METAKERNEL_DATA_DIR"
	EnvDefinitionsDir = "METAKERNEL_DEFINITIONS_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/metakernel (fallback ~/.config/metakernel)
// macOS:   ~/Library/Application Support/metakernel
// Windows: %APPDATA%/metakernel
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", appName), nil
	default:
		// macOS and Windows use os.UserConfigDir which returns
		// ~/Library/Application Support on macOS and %APPDATA% on Windows.
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appName), nil
	}
}

// DefaultDataDir returns the platform-specific default data directory.
//
// Linux:   $XDG_DATA_HOME/metakernel (fallback ~/.local/share/metakernel)
// macOS:   ~/Library/Application Support/metakernel
// Windows: %APPDATA%/metakernel
func DefaultDataDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", appName), nil
	default:
		// macOS and Windows: same as config dir.
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appName), nil
	}
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > METAKERNEL_CONFIG_DIR env > DefaultConfigDir().
//
// If flag is non-empty it wins. Otherwise the METAKERNEL_CONFIG_DIR environment
// variable is checked. If neither is set, the platform default is returned.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > configYAMLValue > METAKERNEL_DATA_DIR env > DefaultDataDir().
//
// With no override the data lives in $(CWD)/.metakernel-db.
func ResolveDataDir(flag, configYAMLValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// ResolveDefinitionsDir returns the directory holding definition files:
// flag > configYAMLValue > METAKERNEL_DEFINITIONS_DIR env > configDir/definitions.
// An empty result from an empty configDir means no definitions are loaded.
func ResolveDefinitionsDir(flag, configYAMLValue, configDir string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	if env := os.Getenv(EnvDefinitionsDir); env != "" {
		return filepath.Abs(env)
	}
	if configDir == "" {
		return "", nil
	}
	return filepath.Join(configDir, DefaultDefinitionsDirName), nil
}
