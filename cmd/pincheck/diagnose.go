package main

import (
	"encoding/json"
	"fmt"
	"os"

	"blueprint/internal/api/models"
	"blueprint/internal/catalog"

	"github.com/spf13/cobra"
)

func diagnoseCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "diagnose <graph.json>",
		Short: "Check a saved graph against the node catalog and the type engine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var g models.Graph
			if err := json.Unmarshal(data, &g); err != nil {
				return fmt.Errorf("invalid graph %s: %w", args[0], err)
			}
			types, err := catalog.Load(file)
			if err != nil {
				return err
			}

			report := catalog.Diagnose(&g, catalog.NewRegistry(types))
			if jsonOutput {
				return printJSON(cmd, map[string]any{"report": report, "graph": g})
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%d nodes, %d connections kept, %d removed\n", len(g.Nodes), len(g.Connections), len(report.Removed))
			for _, n := range g.Nodes {
				for _, e := range n.Errors {
					fmt.Fprintf(w, "  %s %s: %s\n", bad.Sprint("error"), n.ID, e)
				}
				for _, warning := range n.Warnings {
					fmt.Fprintf(w, "  %s %s: %s\n", warn.Sprint("warning"), n.ID, warning)
				}
			}
			for _, v := range report.InvalidVariables {
				fmt.Fprintf(w, "  %s %s\n", warn.Sprint("dropped"), v)
			}
			if len(report.Removed) == 0 && len(report.UnknownNodes) == 0 && len(report.InvalidVariables) == 0 {
				fmt.Fprintln(w, good.Sprint("graph is consistent"))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "catalog", "c", "", "Catalog YAML file merged over the builtin types")
	return cmd
}
