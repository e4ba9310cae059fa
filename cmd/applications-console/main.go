package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/noah-isme/olympiad-applications/internal/client"
	"github.com/noah-isme/olympiad-applications/internal/console"
	"github.com/noah-isme/olympiad-applications/internal/repository"
	"github.com/noah-isme/olympiad-applications/internal/service"
	"github.com/noah-isme/olympiad-applications/pkg/config"
	"github.com/noah-isme/olympiad-applications/pkg/logger"
)

const (
	sourceFixture = "fixture"
	sourceAPI     = "api"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var source string
	var apiURL string
	var noColor bool

	flagSet := pflag.NewFlagSet("applications-console", pflag.ContinueOnError)
	flagSet.StringVar(&source, "source", sourceFixture, "where applications come from: fixture or api")
	flagSet.StringVar(&apiURL, "api-url", cfg.Applications.APIURL, "base URL of the applications API (with --source=api)")
	flagSet.DurationVar(&cfg.Applications.FixtureDelay, "fixture-delay", cfg.Applications.FixtureDelay, "simulated load latency for the fixture source")
	flagSet.BoolVar(&noColor, "no-color", color.NoColor, "disable coloured status badges")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	logr, err := logger.NewConsole(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	var gateway service.ApplicationGateway
	switch source {
	case sourceFixture:
		gateway = repository.NewFixtureApplicationRepository(cfg.Applications.FixtureDelay, nil)
	case sourceAPI:
		gateway = client.New(apiURL, nil, cfg.Applications.APITimeout)
	default:
		return fmt.Errorf("unknown --source %q (want %s or %s)", source, sourceFixture, sourceAPI)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	board := service.NewApplicationBoard(gateway, logr)
	session := console.NewSession(board, console.NewRenderer(os.Stdout, !noColor), logr)
	if err := session.Run(ctx, os.Stdin); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
