package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/syssam/layergen/compiler/load"
)

func newWatchCmd(o *options) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate whenever the configuration or a user skeleton changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return watch(cmd.Context(), o, cmd.OutOrStdout(), debounce)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", 200*time.Millisecond, "quiet period before regenerating")
	return cmd
}

// watch runs a generation, then a full regeneration after every change to
// the configuration file or the skeleton directory, until ctx is done.
// A failed run is reported and the watch goes on.
func watch(ctx context.Context, o *options, out io.Writer, debounce time.Duration) error {
	config, err := filepath.Abs(o.config)
	if err != nil {
		return err
	}
	f, err := load.Load(config)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	// Editors replace files on save; watching the directory survives that.
	if err := w.Add(f.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", f.Dir, err)
	}
	skeletons := f.Path(f.Skeletons)
	if skeletons != "" {
		if err := w.Add(skeletons); err != nil {
			return fmt.Errorf("watch %s: %w", skeletons, err)
		}
	}
	regenerate := func() {
		if _, err := generate(ctx, o, out); err != nil {
			fmt.Fprintf(out, "%s %v\n", yellow("generation failed:"), err)
		}
	}
	regenerate()
	fmt.Fprintf(out, "%s %s\n", bold("watching"), f.Dir)
	return watchLoop(ctx, w, debounce, func(path string) bool {
		return relevant(path, config, skeletons)
	}, regenerate)
}

// watchLoop calls run once per burst of relevant events, after debounce
// has passed without another one.
func watchLoop(ctx context.Context, w *fsnotify.Watcher, debounce time.Duration, match func(string) bool, run func()) error {
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Op == fsnotify.Chmod || !match(event.Name) {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch: %w", err)
		case <-timer.C:
			run()
		}
	}
}

// relevant reports whether a change to path affects generation.
func relevant(path, config, skeletons string) bool {
	path = filepath.Clean(path)
	if path == filepath.Clean(config) {
		return true
	}
	return skeletons != "" &&
		filepath.Dir(path) == filepath.Clean(skeletons) &&
		strings.HasSuffix(path, ".tmpl")
}
