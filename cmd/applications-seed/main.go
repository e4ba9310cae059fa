package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/noah-isme/olympiad-applications/internal/repository"
	"github.com/noah-isme/olympiad-applications/pkg/config"
	"github.com/noah-isme/olympiad-applications/pkg/database"
	"github.com/noah-isme/olympiad-applications/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var schemaOnly bool
	var timeout time.Duration

	flagSet := pflag.NewFlagSet("applications-seed", pflag.ContinueOnError)
	flagSet.BoolVar(&schemaOnly, "schema-only", false, "create the table without inserting fixture records")
	flagSet.DurationVar(&timeout, "timeout", 30*time.Second, "overall deadline for the seed run")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		return err
	}
	if schemaOnly {
		logr.Info("schema ready")
		return nil
	}

	repo := repository.NewApplicationRepository(db)
	fixtures := repository.FixtureApplications()
	for i := range fixtures {
		if err := repo.Upsert(ctx, &fixtures[i]); err != nil {
			return err
		}
	}
	if err := repo.SyncIDSequence(ctx); err != nil {
		return err
	}
	logr.Info("applications seeded", zap.Int("count", len(fixtures)), zap.String("database", cfg.Database.Name))
	return nil
}
