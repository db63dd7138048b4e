package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ggoodman/clnplugin-go/examples/hello"
	"github.com/ggoodman/clnplugin-go/plugin"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := plugin.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "hello-plugin: %v\n", err)
		os.Exit(1)
	}

	p := hello.New(plugin.WithConfig(cfg))
	if err := p.Serve(ctx); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "hello-plugin: %v\n", err)
		os.Exit(1)
	}
}
