package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/metakernel/pkg/kernel"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the metakernel version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("metakernel", kernel.Version)
	},
}
