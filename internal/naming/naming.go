package naming

import (
	"log/slog"
	"strings"

	"github.com/jinzhu/inflection"
)

// Namer provides all name transformation functions for converting SQL names
// to Ecto schema names. Generated field and association names stay
// snake_case (Ecto atoms); entity module names are PascalCase.
type Namer struct {
	config Config
	logger *slog.Logger
}

// New creates a Namer with the given configuration
func New(cfg Config, logger *slog.Logger) *Namer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Namer{
		config: cfg,
		logger: logger,
	}
}

// Default returns a Namer with default configuration
func Default() *Namer {
	return New(DefaultConfig(), nil)
}

// Pluralize returns the plural form of a word. Config overrides win over
// the inflection rules, which lets operators pin words the rules get wrong
// for their schema. Example: "tag" -> "tags".
func (n *Namer) Pluralize(word string) string {
	if override, ok := n.config.PluralOverrides[word]; ok {
		return override
	}
	return inflection.Plural(word)
}

// Singularize returns the singular form of a word, with the same override
// precedence as Pluralize. Example: "posts" -> "post".
func (n *Namer) Singularize(word string) string {
	if override, ok := n.config.SingularOverrides[word]; ok {
		return override
	}
	return inflection.Singular(word)
}

// EntityName converts a table name to an Ecto schema module name
// (singular PascalCase). Example: "blog_posts" -> "BlogPost".
func (n *Namer) EntityName(tableName string) string {
	return toPascalCase(n.Singularize(tableName))
}

// ForeignKeyPrefix strips common FK suffixes from a column name.
// Example: "author_id" -> "author", "created_by" -> "created_by".
func (n *Namer) ForeignKeyPrefix(fkColumn string) string {
	name := fkColumn
	for _, suffix := range []string{"_id", "_fk"} {
		if strings.HasSuffix(strings.ToLower(name), suffix) {
			name = name[:len(name)-len(suffix)]
			break
		}
	}
	return name
}

// AssociationAlias derives a readable association name from a foreign-key
// (or join-key) column and a base association name.
//
// A column carrying an FK suffix already names the association once the
// suffix is stripped, so the base is redundant:
// ("alt_comment_id", "comments") -> "alt_comments".
// A column without an FK suffix needs the base to stay meaningful:
// ("created_by", "users") -> "created_by_users",
// ("objects_by", "attachments") -> "objects_by_attachments".
func (n *Namer) AssociationAlias(column, base string) string {
	prefix := n.ForeignKeyPrefix(column)
	if prefix != column {
		return n.Pluralize(prefix)
	}
	return n.Pluralize(column + "_" + base)
}

// BelongsToName derives the belongs_to association name for an FK column.
// Example: "author_id" -> "author".
func (n *Namer) BelongsToName(fkColumn string) string {
	return n.ForeignKeyPrefix(fkColumn)
}

// HasManyName derives the has_many association name for a referencing table.
// Example: "comment" -> "comments", "comments" -> "comments".
func (n *Namer) HasManyName(sourceTable string) string {
	return n.Pluralize(sourceTable)
}

// HasOneName derives the has_one association name for a referencing table.
// Example: "profiles" -> "profile".
func (n *Namer) HasOneName(sourceTable string) string {
	return n.Singularize(sourceTable)
}

// DefaultForeignKey returns the Ecto default FK column for a referenced
// table. Example: "users" -> "user_id".
func (n *Namer) DefaultForeignKey(referencedTable string) string {
	return n.Singularize(referencedTable) + "_id"
}

// toPascalCase converts snake_case to PascalCase
func toPascalCase(s string) string {
	parts := strings.Split(s, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, "")
}
