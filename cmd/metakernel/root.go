package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/metakernel/internal/paths"
	"github.com/mesh-intelligence/metakernel/pkg/kernel"
	"github.com/mesh-intelligence/metakernel/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir      string
	flagDataDir        string
	flagDefinitionsDir string
	flagLogLevel       string
	flagJSON           bool
)

// Set by PersistentPreRunE for every subcommand.
var (
	configDir string
	config    types.Config
	logger    *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "metakernel",
	Short: "Run data commands against metadata-defined entities",
	Long: `metakernel routes create, update, delete and query commands through a
pipeline of handlers and resolves each entity's shape from property, model
and component definitions.`,
	Version:       kernel.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		var err error
		configDir, err = paths.ResolveConfigDir(flagConfigDir)
		if err != nil {
			return fatal(exitSysError, "resolve config dir", err)
		}
		config, err = loadConfig(configDir)
		if err != nil {
			return fatal(exitSysError, "load config", err)
		}
		if flagLogLevel != "" {
			config.LogLevel = flagLogLevel
		}
		logger, err = newLogger(config.LogLevel, config.LogFormat)
		if err != nil {
			return fatal(exitUserError, "configure logging", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.metakernel-db)")
	rootCmd.PersistentFlags().StringVar(&flagDefinitionsDir, "definitions-dir", "", "definition files directory (default: <config-dir>/definitions)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (overrides config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(newDataCmd(types.CommandCreate))
	rootCmd.AddCommand(newDataCmd(types.CommandUpdate))
	rootCmd.AddCommand(newDataCmd(types.CommandDelete))
	rootCmd.AddCommand(newDataCmd(types.CommandQuery))
	rootCmd.AddCommand(modelCmd)
	rootCmd.AddCommand(catalogCmd)
}

// fatal prints a CLI error and exits with code.
func fatal(code int, what string, err error) error {
	fmt.Fprintf(os.Stderr, "%s: %s\n", what, err)
	os.Exit(code)
	return err
}
