package main

import (
	"fmt"

	"blueprint/internal/catalog"

	"github.com/spf13/cobra"
)

func catalogCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List node types of the builtin catalog merged with an optional file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			types, err := catalog.Load(file)
			if err != nil {
				return err
			}
			reg := catalog.NewRegistry(types)
			if jsonOutput {
				return printJSON(cmd, reg.List())
			}

			w := cmd.OutOrStdout()
			for _, category := range reg.Categories() {
				fmt.Fprintln(w, brand.Sprint(category))
				for _, t := range reg.ByCategory(category) {
					fmt.Fprintf(w, "  %-22s %d in, %d out\n", t.ID, len(t.InputPins), len(t.OutputPins))
				}
			}
			for _, id := range catalog.MissingAdapters(reg) {
				fmt.Fprintf(w, "%s adapter node type %q is missing\n", warn.Sprint("warning"), id)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Catalog YAML file merged over the builtin types")
	return cmd
}
