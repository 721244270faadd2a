package main

import (
	"errors"
	"fmt"

	"blueprint/internal/pintype"

	"github.com/spf13/cobra"
)

func convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <from> <to> <value>",
		Short: "Convert a value between pin types",
		Long:  "Convert a value between pin types. Values of textual types are taken as typed, others are read as JSON when they parse.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to := pintype.Type(args[0]), pintype.Type(args[1])
			res := pintype.ConvertValue(parseValue(args[2], from), from, to)
			if jsonOutput {
				if err := printJSON(cmd, res); err != nil {
					return err
				}
			} else if res.Success {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %v\n", good.Sprint("ok"), res.Value)
			}
			if !res.Success {
				return errors.New(res.Error)
			}
			return nil
		},
	}
}
