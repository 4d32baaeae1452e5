package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var contractsCmd = &cobra.Command{
	Use:   "contracts",
	Short: "List the registered section types",
	Args:  cobra.NoArgs,
	RunE:  listContracts,
}

var schemaCmd = &cobra.Command{
	Use:   "schema [section-type]",
	Short: "Print the JSON Schema of a section contract",
	Args:  cobra.ExactArgs(1),
	RunE:  printSchema,
}

func listContracts(cmd *cobra.Command, args []string) error {
	runtime, err := runtimeOrErr()
	if err != nil {
		return err
	}
	registry := runtime.Orchestrator.Contracts()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tLABEL\tCATEGORY\tDIAGNOSTICS")
	for _, typeID := range registry.List() {
		c, ok := registry.Get(typeID)
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", c.TypeID, c.Label(), c.Metadata.Category, len(c.Diagnostics()))
	}
	return w.Flush()
}

func printSchema(cmd *cobra.Command, args []string) error {
	runtime, err := runtimeOrErr()
	if err != nil {
		return err
	}
	c, err := runtime.Orchestrator.Contracts().Lookup(args[0])
	if err != nil {
		return err
	}
	return writeJSON(cmd, c.JSONSchema())
}

func writeJSON(cmd *cobra.Command, value any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
