package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/syssam/layergen/compiler/load"
	"github.com/syssam/layergen/dialect"
)

func newDialectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List the target dialects and source backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, bold("DIALECT")+"\t"+bold("EXTENSION"))
			for _, name := range load.Dialects {
				d, err := (&load.File{Dialect: name}).NewDialect()
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\n", green(name), d.Conventions().Extension)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%s %v\n", bold("backends:"), dialect.Backends)
			return nil
		},
	}
}
