package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/metakernel/pkg/types"
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Inspect model definitions",
}

var modelResolveCmd = &cobra.Command{
	Use:   "resolve <model-id>",
	Short: "Print the effective properties of a model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := openKernel(cmd.Context())
		if err != nil {
			return fatal(exitSysError, "model resolve", err)
		}
		defer k.Close()

		props, err := k.Models().ResolveEffectiveProperties(args[0])
		if err != nil {
			code := exitSysError
			if errors.Is(err, types.ErrModelNotFound) || errors.Is(err, types.ErrInheritanceCycle) {
				code = exitUserError
			}
			k.Close()
			return fatal(code, "model resolve", err)
		}
		if flagJSON {
			out, err := json.MarshalIndent(props, "", "  ")
			if err != nil {
				k.Close()
				return fatal(exitSysError, "marshal JSON", err)
			}
			fmt.Println(string(out))
			return nil
		}
		for _, p := range props {
			nullable := ""
			if p.Nullable {
				nullable = " (nullable)"
			}
			fmt.Printf("%-24s %-10s%s\n", p.ID, p.DataType, nullable)
		}
		return nil
	},
}

var modelValidateCmd = &cobra.Command{
	Use:   "validate <model-id>",
	Short: "Check that a model's lineage and references resolve",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := openKernel(cmd.Context())
		if err != nil {
			return fatal(exitSysError, "model validate", err)
		}
		defer k.Close()

		v := k.Models().ValidateModel(args[0])
		if flagJSON {
			out, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				k.Close()
				return fatal(exitSysError, "marshal JSON", err)
			}
			fmt.Println(string(out))
		} else if v.Valid {
			fmt.Printf("%s %s\n", color.New(color.FgGreen).Sprint("VALID"), args[0])
		} else {
			fmt.Printf("%s %s: %s\n", color.New(color.FgRed).Sprint("INVALID"), args[0], v.Message)
		}
		if !v.Valid {
			k.Close()
			os.Exit(exitUserError)
		}
		return nil
	},
}

func init() {
	modelCmd.AddCommand(modelResolveCmd)
	modelCmd.AddCommand(modelValidateCmd)
}
