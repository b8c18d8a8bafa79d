// Package generator turns an introspected PostgreSQL schema into Ecto schema
// modules: one file per table, with fields and deduplicated associations.
package generator

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"pg-ectogen/internal/declaration"
	"pg-ectogen/internal/introspection"
	"pg-ectogen/internal/jointable"
	"pg-ectogen/internal/logging"
	"pg-ectogen/internal/naming"
	"pg-ectogen/internal/render"
)

// Options configures a Generator.
type Options struct {
	Namer    *naming.Namer
	Renderer *render.Renderer
	Logger   *logging.Logger

	// AppName is the Elixir module namespace, e.g. "MyApp".
	AppName string
	// OutputDir is where generated .ex files are written.
	OutputDir string
	// Stdout, when set, receives all generated modules instead of files.
	Stdout io.Writer
}

// Generator produces Ecto schema source from an introspected schema.
type Generator struct {
	namer      *naming.Namer
	renderer   *render.Renderer
	classifier *jointable.Classifier
	logger     *logging.Logger

	appName   string
	outputDir string
	stdout    io.Writer
}

// Result summarizes a generation run.
type Result struct {
	// Written lists the generated file paths, or table names in stdout mode.
	Written []string
	// Skipped lists entities aborted because of render errors.
	Skipped []string
	// JoinTables lists tables consumed as many_to_many join tables.
	JoinTables []string
}

// New creates a Generator. Nil Namer, Renderer, and Logger fall back to
// defaults.
func New(opts Options) *Generator {
	if opts.Namer == nil {
		opts.Namer = naming.Default()
	}
	if opts.Renderer == nil {
		opts.Renderer = render.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logging.FromContext(context.Background())
	}
	return &Generator{
		namer:      opts.Namer,
		renderer:   opts.Renderer,
		classifier: jointable.New(opts.Logger.Logger),
		logger:     opts.Logger,
		appName:    opts.AppName,
		outputDir:  opts.OutputDir,
		stdout:     opts.Stdout,
	}
}

// entityModule holds one table's declarations between the build and write
// phases, so the schema-wide join pass can rename across entities before
// anything is rendered.
type entityModule struct {
	table  introspection.Table
	entity string
	fields []declaration.Declaration
	assocs []declaration.Declaration
}

// Generate builds and writes one schema module per table. Pure join tables
// surface as many_to_many declarations on their sides and get no module of
// their own. An entity whose declarations cannot be rendered is skipped with
// an error log; generation continues with the remaining tables.
func (g *Generator) Generate(ctx context.Context, schema *introspection.Schema) (*Result, error) {
	ctx, span := startSpan(ctx, "generator.generate",
		attribute.String("db.schema", schema.Name),
		attribute.Int("table.count", len(schema.Tables)),
	)
	defer span.End()

	logger := g.logger.WithRunID(logging.GetRunID(ctx))

	joins := g.classifier.Classify(schema)
	joinTableNames := make(map[string]bool, len(joins))
	result := &Result{}
	for _, j := range joins {
		joinTableNames[j.TableName] = true
		result.JoinTables = append(result.JoinTables, j.TableName)
		logger.Debug("skipping join table", "table", j.TableName)
	}

	if g.stdout == nil {
		if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
			err = fmt.Errorf("failed to create output directory %s: %w", g.outputDir, err)
			recordSpanError(span, err)
			return nil, err
		}
	}

	for _, m := range g.buildModules(schema, joins, joinTableNames) {
		source, err := g.renderer.Module(g.appName, m.entity, m.table.Name, append(m.fields, m.assocs...))
		if err != nil {
			logger.Error("skipping entity: failed to render module",
				"table", m.table.Name, "entity", m.entity, "error", err)
			result.Skipped = append(result.Skipped, m.entity)
			continue
		}

		if g.stdout != nil {
			if _, err := io.WriteString(g.stdout, source+"\n"); err != nil {
				err = fmt.Errorf("failed to write module for %s: %w", m.table.Name, err)
				recordSpanError(span, err)
				return nil, err
			}
			result.Written = append(result.Written, m.table.Name)
			continue
		}

		path := filepath.Join(g.outputDir, m.table.Name+".ex")
		if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
			err = fmt.Errorf("failed to write %s: %w", path, err)
			recordSpanError(span, err)
			return nil, err
		}
		logger.Info("generated schema module",
			"table", m.table.Name, "entity", m.entity, "path", path)
		result.Written = append(result.Written, path)
	}

	return result, nil
}

// buildModules assembles every entity's declarations: fields in column
// order, then associations deduplicated per entity. The join pass then runs
// once over the pooled association list of the whole schema, since
// many_to_many names must be unique schema-wide, and its renames are written
// back before each entity's associations are re-sorted by final name.
func (g *Generator) buildModules(schema *introspection.Schema, joins []jointable.JoinTable, joinTableNames map[string]bool) []entityModule {
	var modules []entityModule
	for _, table := range schema.Tables {
		if joinTableNames[table.Name] {
			continue
		}

		assocs := g.buildBelongsTo(table)
		assocs = append(assocs, g.buildReverseAssociations(table, schema, joinTableNames)...)
		assocs = append(assocs, g.buildManyToMany(table, joins)...)

		modules = append(modules, entityModule{
			table:  table,
			entity: g.namer.EntityName(table.Name),
			fields: g.buildFields(table),
			assocs: declaration.DeduplicateAssociations(assocs, g.namer),
		})
	}

	g.dedupeJoinNames(modules)
	return modules
}

// joinIdentity pins a many_to_many declaration across the rename pass. A
// join table produces exactly one declaration per target entity, so the
// pair stays unique schema-wide even after names change.
type joinIdentity struct {
	joinThrough string
	target      string
}

// dedupeJoinNames runs the join collision pass over every entity's
// associations at once and maps the resulting many_to_many names back to
// their entities. Only many_to_many declarations are ever renamed; the rest
// of the pooled list exists so collisions with them are detected.
func (g *Generator) dedupeJoinNames(modules []entityModule) {
	var pooled []declaration.Declaration
	for _, m := range modules {
		pooled = append(pooled, m.assocs...)
	}
	if len(pooled) == 0 {
		return
	}

	finalNames := make(map[joinIdentity]string)
	for _, d := range declaration.DeduplicateJoins(pooled, g.namer) {
		if d.Kind == declaration.ManyToMany {
			finalNames[joinIdentity{d.Options.JoinThrough, d.Target}] = d.Name
		}
	}

	for mi := range modules {
		assocs := modules[mi].assocs
		for i, d := range assocs {
			if d.Kind != declaration.ManyToMany {
				continue
			}
			if name, ok := finalNames[joinIdentity{d.Options.JoinThrough, d.Target}]; ok {
				assocs[i].Name = name
			}
		}
		sort.SliceStable(assocs, func(i, j int) bool {
			return assocs[i].Name < assocs[j].Name
		})
	}
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer("pg-ectogen/generator")
	ctx, span := tracer.Start(ctx, name)
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	return ctx, span
}

func recordSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
