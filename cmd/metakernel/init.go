package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration and storage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// PersistentPreRunE already created the config dir and config.yaml.
		k, err := openKernel(cmd.Context())
		if err != nil {
			return fatal(exitSysError, "init", err)
		}
		defer k.Close()

		stats := k.Catalog().Stats()
		fmt.Println("metakernel initialized")
		fmt.Println("  config:     ", configDir)
		fmt.Println("  data:       ", config.DataDir)
		fmt.Println("  definitions:", config.DefinitionsDir)
		fmt.Printf("  loaded:      %d properties, %d models, %d components\n",
			stats.TotalProperties, len(k.Models().Models()), len(k.Models().Components()))
		return nil
	},
}
