// layergen generates layered entity, data-access and service code from
// database objects and Go types.
//
//	layergen generate -c layergen.yaml
//	layergen introspect -c layergen.yaml -o catalog.msgpack
//	layergen watch -c layergen.yaml
//	layergen dialects
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
