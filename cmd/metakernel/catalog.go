package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the property catalog",
}

var catalogStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print property counts by scope",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := openKernel(cmd.Context())
		if err != nil {
			return fatal(exitSysError, "catalog stats", err)
		}
		defer k.Close()

		stats := k.Catalog().Stats()
		if flagJSON {
			return printJSON(stats)
		}
		fmt.Printf("properties: %d\n", stats.TotalProperties)
		fmt.Printf("scopes:     %d\n", stats.ScopeCount)
		scopes := make([]string, 0, len(stats.CountByScope))
		for s := range stats.CountByScope {
			scopes = append(scopes, s)
		}
		sort.Strings(scopes)
		for _, s := range scopes {
			name := s
			if name == "" {
				name = "(universal)"
			}
			fmt.Printf("  %-20s %d\n", name, stats.CountByScope[s])
		}
		return nil
	},
}

var catalogScopeCmd = &cobra.Command{
	Use:   "scope [scope]",
	Short: "List the properties of a scope; no scope lists universal properties",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := openKernel(cmd.Context())
		if err != nil {
			return fatal(exitSysError, "catalog scope", err)
		}
		defer k.Close()

		scope := ""
		if len(args) == 1 {
			scope = args[0]
		}
		props := k.Catalog().GetByScope(scope)
		if flagJSON {
			return printJSON(props)
		}
		for _, p := range props {
			fmt.Printf("%-24s %-10s %s\n", p.ID, p.DataType, p.Name)
		}
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogStatsCmd)
	catalogCmd.AddCommand(catalogScopeCmd)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fatal(exitSysError, "marshal JSON", err)
	}
	fmt.Println(string(out))
	return nil
}
