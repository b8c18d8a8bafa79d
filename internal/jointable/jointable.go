// Package jointable classifies pure join tables: tables whose only purpose is
// to link two other tables, and which should surface as many_to_many
// declarations instead of schema modules of their own.
package jointable

import (
	"log/slog"
	"sort"

	"pg-ectogen/internal/introspection"
)

// JoinTable describes a table classified as a pure join table. Sides are
// ordered by column name so classification output is deterministic.
type JoinTable struct {
	TableName string
	Sides     [2]Side
}

// Side is one end of a join table: the foreign key column and the table it
// points at.
type Side struct {
	Column           string
	ReferencedTable  string
	ReferencedColumn string
}

// Classifier applies the join table rules to an introspected schema.
type Classifier struct {
	logger *slog.Logger
}

// New creates a Classifier. A nil logger defaults to slog's default.
func New(logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{logger: logger}
}

// Classify returns the schema's pure join tables, in table order. A table
// qualifies when:
//
//   - it has exactly two single-column foreign keys,
//   - the two keys reference distinct tables that exist in the schema,
//   - both key columns are NOT NULL,
//   - both key columns are covered by the primary key or a unique index,
//   - it carries no payload columns beyond the keys, a surrogate id, and
//     insert timestamps.
func (c *Classifier) Classify(schema *introspection.Schema) []JoinTable {
	tableNames := make(map[string]bool, len(schema.Tables))
	for _, t := range schema.Tables {
		if !t.IsView {
			tableNames[t.Name] = true
		}
	}

	var joins []JoinTable
	for _, table := range schema.Tables {
		if table.IsView {
			continue
		}
		join, reason := c.classifyTable(table, tableNames)
		if reason != "" {
			c.logger.Debug("table is not a join table",
				slog.String("table", table.Name),
				slog.String("reason", reason))
			continue
		}
		joins = append(joins, join)
	}
	return joins
}

func (c *Classifier) classifyTable(table introspection.Table, tableNames map[string]bool) (JoinTable, string) {
	constraints := introspection.ForeignKeyConstraints(table)
	if len(constraints) != 2 {
		return JoinTable{}, "does not have exactly two foreign keys"
	}

	sides := make([]Side, 0, 2)
	for _, constraint := range constraints {
		if constraint.IsComposite() {
			return JoinTable{}, "composite foreign key"
		}
		if !tableNames[constraint.ReferencedTable] {
			return JoinTable{}, "references a table outside the schema"
		}
		column, ok := introspection.ColumnByName(table, constraint.Columns[0])
		if !ok || column.IsNullable {
			return JoinTable{}, "foreign key column is nullable"
		}
		sides = append(sides, Side{
			Column:           constraint.Columns[0],
			ReferencedTable:  constraint.ReferencedTable,
			ReferencedColumn: constraint.ReferencedColumn[0],
		})
	}

	if sides[0].ReferencedTable == sides[1].ReferencedTable {
		return JoinTable{}, "both foreign keys reference the same table"
	}

	if !uniquelyCovered(table, sides[0].Column, sides[1].Column) {
		return JoinTable{}, "key pair is not covered by a primary key or unique index"
	}

	for _, col := range table.Columns {
		if !isStructuralColumn(col, sides) {
			return JoinTable{}, "carries payload column " + col.Name
		}
	}

	sort.Slice(sides, func(i, j int) bool { return sides[i].Column < sides[j].Column })
	return JoinTable{TableName: table.Name, Sides: [2]Side{sides[0], sides[1]}}, ""
}

// uniquelyCovered reports whether some unique index or the primary key covers
// exactly the two key columns, in either order.
func uniquelyCovered(table introspection.Table, a, b string) bool {
	if covers(introspection.PrimaryKeyColumns(table), a, b) {
		return true
	}
	for _, index := range table.Indexes {
		if index.Unique && covers(index.Columns, a, b) {
			return true
		}
	}
	return false
}

func covers(columns []string, a, b string) bool {
	if len(columns) != 2 {
		return false
	}
	return (columns[0] == a && columns[1] == b) || (columns[0] == b && columns[1] == a)
}

// isStructuralColumn reports whether a column is allowed in a pure join
// table: one of the key columns, a surrogate primary key, or a timestamp
// maintained by the application.
func isStructuralColumn(col introspection.Column, sides []Side) bool {
	for _, side := range sides {
		if col.Name == side.Column {
			return true
		}
	}
	if col.IsPrimaryKey {
		return true
	}
	switch col.Name {
	case "inserted_at", "created_at", "updated_at":
		return true
	}
	return false
}
