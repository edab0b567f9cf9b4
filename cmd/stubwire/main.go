package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sophialabs/stubwire/internal/app"
)

func main() {
	cfg := app.DefaultConfig()
	flag.StringVar(&cfg.SeedDir, "seeds", cfg.SeedDir, "directory of endpoint seed files (optional)")
	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.StringVar(&cfg.PathPrefix, "prefix", cfg.PathPrefix, "API path prefix stripped before matching")
	flag.IntVar(&cfg.TraceSize, "trace-size", cfg.TraceSize, "number of dispatch trace entries to keep")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	flag.StringVar(&cfg.DefaultEngine, "default-engine", cfg.DefaultEngine, "default template engine (placeholder, jinja2, expr)")
	flag.Parse()

	a, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize: %v\n", err)
		os.Exit(1)
	}

	if err := a.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
