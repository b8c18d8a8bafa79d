package generator

import (
	"pg-ectogen/internal/declaration"
	"pg-ectogen/internal/introspection"
	"pg-ectogen/internal/jointable"
)

// buildFields emits one field declaration per column, in column order.
// Columns consumed by a single-column foreign key are skipped: their
// belongs_to declaration defines the column implicitly, and declaring both
// is a compile error in the generated code.
func (g *Generator) buildFields(table introspection.Table) []declaration.Declaration {
	fkColumns := make(map[string]bool)
	for _, c := range introspection.ForeignKeyConstraints(table) {
		if !c.IsComposite() {
			fkColumns[c.Columns[0]] = true
		}
	}

	decls := make([]declaration.Declaration, 0, len(table.Columns))
	for _, col := range table.Columns {
		if fkColumns[col.Name] {
			continue
		}
		decls = append(decls, declaration.Declaration{
			Kind: declaration.Field,
			Name: col.Name,
			Options: declaration.Options{
				Type:   col.DataType,
				Values: col.EnumValues,
			},
		})
	}
	return decls
}

// buildBelongsTo emits a belongs_to declaration per single-column foreign
// key. The foreign_key option appears only when the column deviates from
// Ecto's "<name>_id" default, and references only when the remote column is
// not "id".
func (g *Generator) buildBelongsTo(table introspection.Table) []declaration.Declaration {
	var decls []declaration.Declaration
	for _, c := range introspection.ForeignKeyConstraints(table) {
		if c.IsComposite() {
			g.logger.Debug("skipping composite foreign key",
				"table", table.Name, "constraint", c.ConstraintName)
			continue
		}

		column := c.Columns[0]
		name := g.namer.BelongsToName(column)
		opts := declaration.Options{}
		if column != name+"_id" {
			opts.ForeignKey = column
		}
		if c.ReferencedColumn[0] != "id" {
			opts.References = c.ReferencedColumn[0]
		}
		decls = append(decls, declaration.Declaration{
			Kind:    declaration.BelongsTo,
			Name:    name,
			Target:  g.namer.EntityName(c.ReferencedTable),
			Options: opts,
		})
	}
	return decls
}

// buildReverseAssociations emits has_many/has_one declarations for every
// foreign key elsewhere in the schema that points at this table. A source
// column under a single-column unique index yields has_one; anything else
// yields has_many. Join tables are excluded here: their links surface as
// many_to_many instead.
func (g *Generator) buildReverseAssociations(table introspection.Table, schema *introspection.Schema, joinTableNames map[string]bool) []declaration.Declaration {
	var decls []declaration.Declaration
	for _, source := range schema.Tables {
		if source.IsView || joinTableNames[source.Name] {
			continue
		}
		for _, c := range introspection.ForeignKeyConstraints(source) {
			if c.IsComposite() || c.ReferencedTable != table.Name {
				continue
			}

			column := c.Columns[0]
			opts := declaration.Options{}
			if column != g.namer.DefaultForeignKey(table.Name) {
				opts.ForeignKey = column
			}

			kind := declaration.HasMany
			name := g.namer.HasManyName(source.Name)
			if introspection.HasUniqueIndexOn(source, column) {
				kind = declaration.HasOne
				name = g.namer.HasOneName(source.Name)
			}

			decls = append(decls, declaration.Declaration{
				Kind:    kind,
				Name:    name,
				Target:  g.namer.EntityName(source.Name),
				Options: opts,
			})
		}
	}
	return decls
}

// buildManyToMany emits a many_to_many declaration for each join table one
// of whose sides references this table. The join_keys option appears only
// when a key column deviates from Ecto's "<singular>_id" defaults, owning
// side first.
func (g *Generator) buildManyToMany(table introspection.Table, joins []jointable.JoinTable) []declaration.Declaration {
	var decls []declaration.Declaration
	for _, j := range joins {
		var own, other jointable.Side
		switch table.Name {
		case j.Sides[0].ReferencedTable:
			own, other = j.Sides[0], j.Sides[1]
		case j.Sides[1].ReferencedTable:
			own, other = j.Sides[1], j.Sides[0]
		default:
			continue
		}

		opts := declaration.Options{JoinThrough: j.TableName}
		if own.Column != g.namer.DefaultForeignKey(table.Name) ||
			other.Column != g.namer.DefaultForeignKey(other.ReferencedTable) {
			opts.JoinKeys = []declaration.JoinKey{
				{Column: own.Column, ReferencedTable: own.ReferencedTable, ReferencedColumn: own.ReferencedColumn},
				{Column: other.Column, ReferencedTable: other.ReferencedTable, ReferencedColumn: other.ReferencedColumn},
			}
		}

		decls = append(decls, declaration.Declaration{
			Kind:    declaration.ManyToMany,
			Name:    g.namer.HasManyName(other.ReferencedTable),
			Target:  g.namer.EntityName(other.ReferencedTable),
			Options: opts,
		})
	}
	return decls
}
