package main

import (
	"encoding/json"
	"fmt"
	"io"

	"blueprint/internal/pintype"
	"blueprint/pkg"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	good   = color.New(color.FgGreen)
	warn   = color.New(color.FgYellow)
	bad    = color.New(color.FgRed)
	subtle = color.New(color.FgHiBlack)
	brand  = color.New(color.FgHiCyan, color.Bold)
)

var jsonOutput bool

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "pincheck",
		Short:        "Inspect the blueprint pin type engine",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print machine readable JSON")

	root.AddCommand(
		checkCmd(),
		convertCmd(),
		typesCmd(),
		catalogCmd(),
		diagnoseCmd(),
	)
	return root
}

// verdictColor matches the tooltip colours of the editor
func verdictColor(v pintype.Verdict) *color.Color {
	switch v {
	case pintype.VerdictValid:
		return good
	case pintype.VerdictRequiresAdapter:
		return warn
	default:
		return bad
	}
}

// parseValue reads a JSON literal, falling back to the raw text. Values of
// textual types are always taken as typed.
func parseValue(raw string, from pintype.Type) any {
	switch from {
	case pintype.String, pintype.URL, pintype.Filepath, pintype.Date:
		return raw
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}

func printJSON(cmd *cobra.Command, v any) error {
	return pkg.PrettyPrint(cmd.OutOrStdout(), v)
}

func printTypes(w io.Writer, label string, types []pintype.Type) {
	fmt.Fprintf(w, "  %s ", brand.Sprintf("%-12s", label))
	for i, t := range types {
		if i > 0 {
			fmt.Fprint(w, ", ")
		}
		fmt.Fprint(w, t)
	}
	fmt.Fprintln(w)
}
