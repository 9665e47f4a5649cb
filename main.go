// Package main provides the entry point for the live-sources snapshot generator.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/live-snapshots/internal/config"
	"github.com/yourusername/live-snapshots/internal/logging"
	"github.com/yourusername/live-snapshots/internal/report"
	"github.com/yourusername/live-snapshots/internal/snapshot"
	"github.com/yourusername/live-snapshots/internal/storage"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	// Load environment variables
	envErr := godotenv.Load()

	flags := flag.NewFlagSet("live-snapshots", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "config.yaml", "Path to configuration file (optional)")
	workdir := flags.String("dir", ".", "Directory to look for the base dataset in")
	dryRun := flags.Bool("dry-run", false, "Build snapshots but don't write them")
	date := flags.String("date", "", "Generate a single YYYY-MM-DD snapshot instead of the configured range")
	initConfig := flags.String("init-config", "", "Write the effective configuration to this path and exit")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "❌ Failed to load config: %v\n", err)
		return 1
	}

	logger := logging.New(cfg.Logging, stderr)
	if envErr != nil {
		logger.Debug("No .env file found, using system environment variables")
	}
	if cfg.Source == "" {
		logger.WithField("path", *configPath).Debug("No config file found, using defaults")
	}

	if *initConfig != "" {
		if err := cfg.SaveConfig(*initConfig); err != nil {
			logger.WithError(err).Error("Failed to write config")
			return 1
		}
		logger.WithField("path", *initConfig).Info("Config written")
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen, err := snapshot.Open(cfg.Snapshot, *workdir, logger)
	if err != nil {
		logFailure(logger, err)
		return 1
	}
	gen.SetDryRun(*dryRun)

	if *date != "" {
		result, err := gen.GenerateDate(ctx, *date)
		if err != nil {
			logFailure(logger, err)
			return 1
		}
		if err := report.Result(stdout, result); err != nil {
			logger.WithError(err).Warn("Could not print report")
		}
		return 0
	}

	summary, err := gen.Run(ctx)
	if summary != nil {
		if rerr := report.Summary(stdout, summary); rerr != nil {
			logger.WithError(rerr).Warn("Could not print report")
		}
	}
	if err != nil {
		logFailure(logger, err)
		return 1
	}

	return 0
}

func logFailure(logger logrus.FieldLogger, err error) {
	switch {
	case errors.Is(err, storage.ErrMissingInput):
		logger.WithError(err).Error("❌ Base dataset not found")
	case errors.Is(err, snapshot.ErrEmptyDataset):
		logger.WithError(err).Error("❌ No articles found in base dataset")
	case errors.Is(err, context.Canceled):
		logger.WithError(err).Error("❌ Interrupted, later dates were not generated")
	default:
		logger.WithError(err).Error("❌ Snapshot generation failed")
	}
}
