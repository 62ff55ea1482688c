package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/syssam/layergen/compiler/gen"
	"github.com/syssam/layergen/compiler/load"
	"github.com/syssam/layergen/dialect/sql"
)

func newGenerateCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate code for every selection of the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := generate(cmd.Context(), o, cmd.OutOrStdout())
			return err
		},
	}
}

// generate runs one generation from the configuration file and prints a
// summary to out.
func generate(ctx context.Context, o *options, out io.Writer) (*gen.Result, error) {
	start := time.Now()
	f, err := load.Load(o.config)
	if err != nil {
		return nil, err
	}
	cfg, err := f.Config()
	if err != nil {
		return nil, err
	}
	d, err := f.NewDialect()
	if err != nil {
		return nil, err
	}
	ds, err := f.Descriptors()
	if err != nil {
		return nil, err
	}
	insp, closeFn, err := inspector(ctx, f, o.logger)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	scripts, err := sql.NewScriptSource(f.Backend)
	if err != nil {
		return nil, err
	}
	opts := []gen.GeneratorOption{
		gen.WithLogger(o.logger),
		gen.WithReflector(&load.PackageReflector{Dir: f.Dir, Packages: f.Packages()}),
		gen.WithScriptSource(scripts),
	}
	if insp != nil {
		opts = append(opts, gen.WithInspector(insp))
	}
	if s := f.UserSkeletons(); s != nil {
		opts = append(opts, gen.WithSkeletons(s))
	}
	if f.UpdateManifests {
		opts = append(opts, gen.WithManifestUpdater(manifestFile{}))
	}
	res, err := gen.NewGenerator(cfg, d, opts...).Generate(ctx, ds)
	if err != nil {
		return nil, err
	}
	summarize(out, cfg.OutputRoot, res, time.Since(start), o.verbose)
	return res, nil
}

// inspector returns the introspection source of the run: the database when
// a DSN is configured, else the snapshot, else none.
func inspector(ctx context.Context, f *load.File, logger *slog.Logger) (gen.Inspector, func(), error) {
	switch {
	case f.DSN != "":
		drv, err := sql.Open(ctx, f.Backend, f.DSN)
		if err != nil {
			return nil, nil, err
		}
		stats := sql.NewStatsDriver(drv.DB(), sql.WithQueryLogger(logger))
		return sql.NewInspector(sql.NewDriver(f.Backend, stats)), func() {
			logger.Debug("introspection finished", "stats", stats.QueryStats().Stats().String())
			_ = drv.Close()
		}, nil
	case f.Snapshot != "":
		s, err := sql.ReadSnapshot(f.Path(f.Snapshot))
		if err != nil {
			return nil, nil, fmt.Errorf("read snapshot: %w", err)
		}
		if s.Backend != f.Backend {
			return nil, nil, gen.NewConfigError("snapshot", s.Backend, fmt.Sprintf("captured from %s, run backend is %s", s.Backend, f.Backend))
		}
		return s, func() {}, nil
	default:
		return nil, func() {}, nil
	}
}

func summarize(out io.Writer, root string, res *gen.Result, took time.Duration, verbose bool) {
	if verbose {
		for _, a := range res.Artifacts {
			rel, err := filepath.Rel(root, a.Path)
			if err != nil {
				rel = a.Path
			}
			fmt.Fprintf(out, "  %s %s\n", green("wrote"), rel)
		}
	}
	fmt.Fprintf(out, "%s %d files (%d bytes) from %d descriptors in %s\n",
		bold("generated"), len(res.Artifacts), res.Metrics.TotalBytes, len(res.Order), took.Round(time.Millisecond))
	for project, entries := range res.Manifests {
		if len(entries) > 0 && verbose {
			fmt.Fprintf(out, "  %s %s (%d entries)\n", yellow("manifest"), project, len(entries))
		}
	}
}
