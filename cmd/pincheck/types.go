package main

import (
	"fmt"

	"blueprint/internal/api/handler/mapper"
	"blueprint/internal/pintype"

	"github.com/spf13/cobra"
)

func typesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types [type]",
		Short: "List pin types, or what one type connects and converts to",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if len(args) == 0 {
				if jsonOutput {
					return printJSON(cmd, mapper.ToPinTypes(pintype.Catalog))
				}
				for _, t := range pintype.Catalog {
					fmt.Fprintf(w, "  %-10s %s\n", t, subtle.Sprint(describe(t)))
				}
				return nil
			}

			t := pintype.Type(args[0])
			compatible := pintype.CompatibleTypes(t)
			if compatible == nil {
				return fmt.Errorf("unknown pin type %q", t)
			}
			convertible := pintype.ConvertibleTypes(t)
			if jsonOutput {
				return printJSON(cmd, map[string]any{"type": t, "compatible": compatible, "convertible": convertible})
			}
			printTypes(w, "connects to", compatible)
			printTypes(w, "converts to", convertible)
			return nil
		},
	}
}

func describe(t pintype.Type) string {
	switch {
	case !t.CarriesData():
		return "control flow"
	case t.IsMedia():
		return "media"
	case t.IsStructured():
		return "structured"
	default:
		return ""
	}
}
