// Package render turns relationship declarations into Ecto schema source
// text. Each declaration maps to one line; suppressed declarations map to
// the empty string.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"pg-ectogen/internal/declaration"
	"pg-ectogen/internal/ectotype"
)

// Renderer renders declarations using a configured keyword vocabulary.
type Renderer struct {
	syntax Syntax
	// typeOverrides extends the fixed type table with config-supplied
	// raw -> Ecto mappings. Read-only after construction.
	typeOverrides map[string]string
	// diagnostics is the operator-facing console stream for non-fatal
	// notices such as skipped vector columns.
	diagnostics io.Writer
}

// New creates a Renderer. A nil diagnostics writer defaults to stderr.
func New(syntax Syntax, typeOverrides map[string]string, diagnostics io.Writer) *Renderer {
	if diagnostics == nil {
		diagnostics = os.Stderr
	}
	return &Renderer{
		syntax:        syntax,
		typeOverrides: typeOverrides,
		diagnostics:   diagnostics,
	}
}

// Default returns a Renderer with Ecto syntax and stderr diagnostics.
func Default() *Renderer {
	return New(DefaultSyntax(), nil, nil)
}

// Line renders one declaration. It returns the empty string for suppressed
// declarations: id fields (implicit in generated schemas) and vector-typed
// fields, the latter with a diagnostic notice. Unknown kinds are an error;
// callers abort the enclosing entity.
func (r *Renderer) Line(entity string, d declaration.Declaration) (string, error) {
	keyword, err := r.syntax.keywordFor(d.Kind)
	if err != nil {
		return "", fmt.Errorf("entity %s, declaration %q: %w", entity, d.Name, err)
	}

	if d.Kind == declaration.Field {
		return r.fieldLine(entity, keyword, d), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s :%s, %s", keyword, d.Name, d.Target)
	if d.Options.ForeignKey != "" {
		fmt.Fprintf(&b, ", %s: :%s", r.syntax.ForeignKeyOption, d.Options.ForeignKey)
	}
	if d.Options.References != "" {
		fmt.Fprintf(&b, ", %s: :%s", r.syntax.ReferencesOption, d.Options.References)
	}
	if d.Kind == declaration.ManyToMany {
		if d.Options.JoinThrough != "" {
			fmt.Fprintf(&b, ", %s: %q", r.syntax.JoinThroughOption, d.Options.JoinThrough)
		}
		if len(d.Options.JoinKeys) > 0 {
			fmt.Fprintf(&b, ", %s: %s", r.syntax.JoinKeysOption, joinKeyList(d.Options.JoinKeys))
		}
	}
	return b.String(), nil
}

func (r *Renderer) fieldLine(entity, keyword string, d declaration.Declaration) string {
	// Identifier fields are implicit in generated schemas.
	if d.Name == "id" {
		return ""
	}

	if ectotype.IsVector(d.Options.Type) {
		fmt.Fprintf(r.diagnostics,
			"notice: %s.%s uses unsupported vector type %q; field omitted from generated schema\n",
			entity, d.Name, d.Options.Type)
		return ""
	}

	if len(d.Options.Values) > 0 {
		return fmt.Sprintf("%s :%s, Ecto.Enum, %s: %s",
			keyword, d.Name, r.syntax.ValuesOption, atomList(d.Options.Values))
	}

	return fmt.Sprintf("%s :%s, %s", keyword, d.Name, r.ectoType(d.Options.Type))
}

// ectoType resolves a raw column type: config overrides first, then the
// fixed table, then pass-through as an atom.
func (r *Renderer) ectoType(rawType string) string {
	if override, ok := r.typeOverrides[strings.ToLower(rawType)]; ok {
		return override
	}
	if mapped, ok := ectotype.Map(rawType); ok {
		return mapped
	}
	return ":" + rawType
}

// Module renders a complete schema module for one entity.
func (r *Renderer) Module(appName, entity, tableName string, decls []declaration.Declaration) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "defmodule %s.%s do\n", appName, entity)
	b.WriteString("  use Ecto.Schema\n\n")
	fmt.Fprintf(&b, "  schema %q do\n", tableName)

	for _, d := range decls {
		line, err := r.Line(entity, d)
		if err != nil {
			return "", err
		}
		if line == "" {
			continue
		}
		b.WriteString("    ")
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("  end\n")
	b.WriteString("end\n")
	return b.String(), nil
}

func atomList(values []string) string {
	atoms := make([]string, len(values))
	for i, v := range values {
		atoms[i] = ":" + v
	}
	return "[" + strings.Join(atoms, ", ") + "]"
}

func joinKeyList(keys []declaration.JoinKey) string {
	pairs := make([]string, len(keys))
	for i, k := range keys {
		referenced := k.ReferencedColumn
		if referenced == "" {
			referenced = "id"
		}
		pairs[i] = k.Column + ": :" + referenced
	}
	return "[" + strings.Join(pairs, ", ") + "]"
}
