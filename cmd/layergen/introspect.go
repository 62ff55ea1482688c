package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syssam/layergen/compiler/gen"
	"github.com/syssam/layergen/compiler/load"
	"github.com/syssam/layergen/dialect/sql"
)

func newIntrospectCmd(o *options) *cobra.Command {
	var (
		output  string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "introspect",
		Short: "Capture the catalog of the selected database objects into a snapshot",
		Long: `Introspect connects to the configured database and records the columns,
keys and parameters of every selected object. Later runs read the snapshot
instead of connecting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			f, err := load.Load(o.config)
			if err != nil {
				return err
			}
			if f.DSN == "" {
				return gen.NewConfigError("dsn", nil, "introspection needs a database connection")
			}
			if output == "" {
				output = f.Snapshot
			}
			if output == "" {
				return gen.NewConfigError("snapshot", nil, "no output file; set snapshot or pass --output")
			}
			ds, err := f.Descriptors()
			if err != nil {
				return err
			}
			drv, err := sql.Open(ctx, f.Backend, f.DSN)
			if err != nil {
				return err
			}
			defer drv.Close()
			stats := sql.NewStatsDriver(drv.DB(), sql.WithQueryLogger(o.logger))
			s, err := sql.Capture(ctx, sql.NewInspector(sql.NewDriver(f.Backend, stats)), f.Backend, ds, workers)
			if err != nil {
				return err
			}
			path := f.Path(output)
			if err := s.WriteFile(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d objects to %s (%s)\n",
				bold("captured"), len(s.Objects), path, stats.QueryStats().Stats())
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "snapshot file (defaults to the configured snapshot)")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent catalog queries (0 uses GOMAXPROCS)")
	return cmd
}
