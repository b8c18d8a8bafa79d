package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/pflag"

	"pg-ectogen/internal/config"
	"pg-ectogen/internal/generator"
	"pg-ectogen/internal/introspection"
	"pg-ectogen/internal/logging"
	"pg-ectogen/internal/naming"
	"pg-ectogen/internal/render"
	"pg-ectogen/internal/schemafilter"
)

var (
	// Version is set at build time via -ldflags "-X main.Version=...".
	Version = "dev"
	Commit  = "none"
)

func main() {
	if err := run(); err != nil {
		slog.Error("generation error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	pflag.Bool("version", false, "Print version and exit")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if showVersion, _ := pflag.CommandLine.GetBool("version"); showVersion {
		fmt.Printf("ectogen %s (%s)\n", Version, Commit)
		return nil
	}

	validationResult := cfg.Validate()
	for _, warn := range validationResult.Warnings {
		slog.Warn("configuration warning",
			slog.String("field", warn.Field),
			slog.String("message", warn.Message),
			slog.String("hint", warn.Hint),
		)
	}
	if validationResult.HasErrors() {
		for _, err := range validationResult.Errors {
			slog.Error("configuration error",
				slog.String("field", err.Field),
				slog.String("message", err.Message),
				slog.String("hint", err.Hint),
			)
		}
		return fmt.Errorf("configuration validation failed")
	}

	logger := logging.NewLogger(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	slog.SetDefault(logger.Logger)

	runID := uuid.NewString()
	ctx := logging.WithRunIDContext(context.Background(), runID)
	ctx = logging.WithLogger(ctx, logger.WithRunID(runID))

	db, err := sql.Open("pgx", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = db.Close()
	}()

	pingCtx := ctx
	if cfg.Database.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("introspecting schema",
		slog.String("run_id", runID),
		slog.String("database", cfg.Database.Database),
		slog.String("schema", cfg.Database.Schema),
	)

	started := time.Now()
	schema, err := introspection.IntrospectSchema(ctx, db, cfg.Database.Schema)
	if err != nil {
		return fmt.Errorf("schema introspection failed: %w", err)
	}
	schemafilter.Apply(schema, cfg.SchemaFilters)
	if len(schema.Tables) == 0 {
		return fmt.Errorf("no tables to generate: schema %q is empty or fully filtered", cfg.Database.Schema)
	}

	namer := naming.New(cfg.Naming, logger.Logger)
	renderer := render.New(cfg.Syntax, cfg.TypeOverrides, os.Stderr)

	opts := generator.Options{
		Namer:     namer,
		Renderer:  renderer,
		Logger:    logger,
		AppName:   cfg.Output.App,
		OutputDir: cfg.Output.Dir,
	}
	if cfg.Output.Stdout {
		opts.Stdout = os.Stdout
	}

	result, err := generator.New(opts).Generate(ctx, schema)
	if err != nil {
		return err
	}

	logger.Info("generation complete",
		slog.String("run_id", runID),
		slog.Int("modules", len(result.Written)),
		slog.Int("join_tables", len(result.JoinTables)),
		slog.Int("skipped", len(result.Skipped)),
		slog.Duration("elapsed", time.Since(started)),
	)

	if len(result.Skipped) > 0 {
		return fmt.Errorf("generation finished with %d skipped entities", len(result.Skipped))
	}
	return nil
}
