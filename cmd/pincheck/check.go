package main

import (
	"fmt"

	"blueprint/internal/pintype"

	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "check <from> <to>",
		Short: "Check whether an output pin type can feed an input pin type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to := pintype.Type(args[0]), pintype.Type(args[1])
			k := pintype.Kind(kind)
			switch k {
			case "":
				k = pintype.KindFor(from, to)
			case pintype.KindExecution, pintype.KindData:
			default:
				return fmt.Errorf("unknown connection kind %q", kind)
			}

			res := pintype.ValidateConnection(from, to, k)
			if jsonOutput {
				return printJSON(cmd, res)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s -> %s (%s): %s\n", from, to, k, verdictColor(res.Verdict()).Sprint(res.Verdict()))
			if res.CanAutoConvert {
				fmt.Fprintln(w, subtle.Sprint("  converted automatically"))
			}
			if res.ErrorMessage != "" {
				fmt.Fprintf(w, "  %s\n", res.ErrorMessage)
			}
			if res.SuggestedAdapter != "" {
				fmt.Fprintf(w, "  suggested adapter: %s\n", res.SuggestedAdapter)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "Connection kind (execution or data), inferred when empty")
	return cmd
}
