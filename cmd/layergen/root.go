package main

import (
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// options are shared by every command.
type options struct {
	config  string
	verbose bool
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:   "layergen",
		Short: "Generate layered data-access code from database objects and Go types",
		Long: `layergen reads a run configuration naming database objects and Go types,
consolidates every selection that maps to the same output type, and writes
entity, data-access, mapping and service code in the configured dialect.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelInfo
			if o.verbose {
				level = slog.LevelDebug
			}
			o.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		},
	}
	cmd.PersistentFlags().StringVarP(&o.config, "config", "c", "layergen.yaml", "run configuration file (.yaml, .yml or .toml)")
	cmd.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "log every descriptor, query and file")
	cmd.AddCommand(
		newGenerateCmd(o),
		newIntrospectCmd(o),
		newWatchCmd(o),
		newDialectsCmd(),
	)
	return cmd
}
