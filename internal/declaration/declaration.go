// Package declaration defines the relationship declaration records emitted
// by schema generation and the deduplication pass that guarantees unique
// association names within an entity.
package declaration

// Kind identifies the declaration variant.
type Kind int

const (
	// Field is a plain column declaration.
	Field Kind = iota
	// BelongsTo is the owning side of a foreign key.
	BelongsTo
	// HasMany is the reverse side of a non-unique foreign key.
	HasMany
	// HasOne is the reverse side of a unique foreign key.
	HasOne
	// ManyToMany is a relationship through a join table.
	ManyToMany
)

// String returns the Ecto keyword for the kind.
func (k Kind) String() string {
	switch k {
	case Field:
		return "field"
	case BelongsTo:
		return "belongs_to"
	case HasMany:
		return "has_many"
	case HasOne:
		return "has_one"
	case ManyToMany:
		return "many_to_many"
	default:
		return "unknown"
	}
}

// JoinKey identifies one side of a join-table mapping: the FK column in the
// join table and the table and column it references.
type JoinKey struct {
	Column           string
	ReferencedTable  string
	ReferencedColumn string
}

// Options carries the optional declaration settings. Each option is only
// meaningful for certain kinds; zero values mean "not set".
type Options struct {
	// ForeignKey is the FK column name, set when the relationship's default
	// foreign key was overridden. Associations only.
	ForeignKey string
	// References is the referenced column, set when it is not the primary
	// key default. Rendering only.
	References string
	// JoinThrough is the join table name. ManyToMany only.
	JoinThrough string
	// JoinKeys holds the join-table column mappings, owning side first.
	// When present it has exactly two entries. ManyToMany only.
	JoinKeys []JoinKey
	// Values lists enum values. Fields only, rendering only.
	Values []string
	// Type is the raw column type. Fields only.
	Type string
}

// Declaration is one generated schema line: a field or an association.
// Name must be unique within its enclosing entity after deduplication.
type Declaration struct {
	Kind Kind
	// Name is the field/association identifier as it will appear in
	// generated code.
	Name string
	// Target is the related entity type name; empty for plain fields.
	Target string
	Options Options
}

// rename returns a copy of the declaration with a new name. Declarations
// are never renamed in place; every other option is preserved for rendering.
func (d Declaration) rename(name string) Declaration {
	d.Name = name
	return d
}
