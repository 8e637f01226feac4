package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"

	"ContentRadar/internal/app"
	"ContentRadar/internal/config"
	"ContentRadar/internal/logging"
)

type options struct {
	Config  string `short:"c" long:"config" default:"config.yml" description:"Path to the YAML configuration file"`
	Hours   int    `long:"hours" description:"Override the fetch window in hours"`
	DataDir string `long:"data-dir" description:"Override the data directory for digests and run state"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			return
		}
		os.Exit(1)
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if opts.Hours > 0 {
		cfg.Filtering.TimeWindowHours = opts.Hours
	}
	if opts.DataDir != "" {
		cfg.Storage.DataDir = opts.DataDir
	}

	logger := logging.New(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	if err := application.Run(ctx); err != nil {
		logger.Error("application stopped", "error", err)
		application.Close()
		os.Exit(1)
	}
}
