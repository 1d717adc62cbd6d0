package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/metakernel/pkg/kernel"
	"github.com/mesh-intelligence/metakernel/pkg/types"
)

var dataCmdHelp = map[types.CommandType]string{
	types.CommandCreate: "Create a record of an entity",
	types.CommandUpdate: "Merge fields into the records matching a filter",
	types.CommandDelete: "Delete the records matching a filter",
	types.CommandQuery:  "List the records matching a filter",
}

// newDataCmd builds the create, update, delete and query commands. They
// share flags and differ only in the command type they execute.
func newDataCmd(cmdType types.CommandType) *cobra.Command {
	var (
		data   string
		filter string
		id     string
		all    bool
	)
	cmd := &cobra.Command{
		Use:   string(cmdType) + " <entity>",
		Short: dataCmdHelp[cmdType],
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := kernel.Request{Command: cmdType, Entity: args[0], ID: id}

			var err error
			if req.Data, err = parsePayload(data); err != nil {
				return fatal(exitUserError, string(cmdType), err)
			}
			if req.Filter, err = parseFilter(filter); err != nil {
				return fatal(exitUserError, string(cmdType), err)
			}
			lookupID := ""
			if id != "" && cmdType != types.CommandCreate {
				req.Filter = req.Filter.Where(types.RecordIDField, types.OpEq, id)
				req.ID = ""
				lookupID = id
			}
			if all {
				req.Kind = kernel.BulkContextKind
			}

			k, err := openKernel(cmd.Context())
			if err != nil {
				return fatal(exitSysError, string(cmdType), err)
			}
			defer k.Close()

			res, err := k.Run(cmd.Context(), req)
			if err != nil {
				k.Close()
				return fatal(exitCodeFor(err), string(cmdType), err)
			}
			if err := recordMissing(args[0], lookupID, res); err != nil {
				k.Close()
				return fatal(exitUserError, string(cmdType), err)
			}
			if err := printResult(cmdType, args[0], res); err != nil {
				k.Close()
				return fatal(exitSysError, string(cmdType), err)
			}
			if res.Status == types.StatusNotExecuted {
				k.Close()
				os.Exit(exitUserError)
			}
			return nil
		},
	}

	if cmdType == types.CommandCreate || cmdType == types.CommandUpdate {
		cmd.Flags().StringVar(&data, "data", "", "record fields as a JSON object")
	}
	if cmdType != types.CommandCreate {
		cmd.Flags().StringVar(&filter, "filter", "", `filter as {"field":value} or {"conditions":[{"field","op","value"}]}`)
	}
	cmd.Flags().StringVar(&id, "id", "", "record id")
	if cmdType == types.CommandUpdate || cmdType == types.CommandDelete {
		cmd.Flags().BoolVar(&all, "all", false, "allow the command to run without a filter")
	}
	return cmd
}

func printResult(cmdType types.CommandType, entity string, res types.Result) error {
	if flagJSON {
		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	if res.Status == types.StatusNotExecuted {
		fmt.Printf("%s %s\n", color.New(color.FgYellow).Sprint("NOT EXECUTED"), res.Reason)
		return nil
	}
	ok := color.New(color.FgGreen)
	switch v := res.Data.(type) {
	case types.Record:
		fmt.Printf("%s %s/%s\n", ok.Sprint("Created"), entity, v.ID)
	case types.WriteResult:
		verb := "Updated"
		if cmdType == types.CommandDelete {
			verb = "Deleted"
		}
		fmt.Printf("%s %d %s record(s)\n", ok.Sprint(verb), v.Affected, entity)
	case []types.Record:
		return printRecords(v)
	default:
		fmt.Println(ok.Sprint("Done"))
	}
	return nil
}

func printRecords(recs []types.Record) error {
	if len(recs) == 0 {
		fmt.Println(color.New(color.FgYellow).Sprint("(no records)"))
		return nil
	}
	width := 0
	for _, r := range recs {
		width = max(width, len(r.ID))
	}
	for _, r := range recs {
		raw, err := json.Marshal(r.Data)
		if err != nil {
			return err
		}
		id := r.ID + strings.Repeat(" ", width-len(r.ID))
		fmt.Printf("%s  %s\n", color.New(color.FgCyan).Sprint(id), raw)
	}
	return nil
}
