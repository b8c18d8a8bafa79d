package introspection

import "sort"

// ForeignKeyConstraint groups the columns that belong to one foreign key
// constraint, ordered by ordinal position. Composite foreign keys carry more
// than one column.
type ForeignKeyConstraint struct {
	ConstraintName   string
	ReferencedTable  string
	Columns          []string
	ReferencedColumn []string
}

// IsComposite reports whether the constraint spans multiple columns.
func (c ForeignKeyConstraint) IsComposite() bool {
	return len(c.Columns) > 1
}

// ForeignKeyConstraints groups a table's raw foreign key rows by constraint
// name. Constraints are returned in lexical order of constraint name so
// repeated runs over the same schema produce identical output.
func ForeignKeyConstraints(table Table) []ForeignKeyConstraint {
	byName := make(map[string]*ForeignKeyConstraint)
	for _, fk := range table.ForeignKeys {
		constraint, ok := byName[fk.ConstraintName]
		if !ok {
			constraint = &ForeignKeyConstraint{
				ConstraintName:  fk.ConstraintName,
				ReferencedTable: fk.ReferencedTable,
			}
			byName[fk.ConstraintName] = constraint
		}
		constraint.Columns = append(constraint.Columns, fk.ColumnName)
		constraint.ReferencedColumn = append(constraint.ReferencedColumn, fk.ReferencedColumn)
	}

	constraints := make([]ForeignKeyConstraint, 0, len(byName))
	for _, c := range byName {
		constraints = append(constraints, *c)
	}
	sort.SliceStable(constraints, func(i, j int) bool {
		return constraints[i].ConstraintName < constraints[j].ConstraintName
	})
	return constraints
}

// HasUniqueIndexOn reports whether the table has a unique index covering
// exactly the given column. Single-column unique coverage is what turns a
// reverse belongs_to into has_one rather than has_many.
func HasUniqueIndexOn(table Table, column string) bool {
	for _, index := range table.Indexes {
		if index.Unique && len(index.Columns) == 1 && index.Columns[0] == column {
			return true
		}
	}
	return false
}

// PrimaryKeyColumns returns the table's primary key columns in declaration
// order.
func PrimaryKeyColumns(table Table) []string {
	var pks []string
	for _, col := range table.Columns {
		if col.IsPrimaryKey {
			pks = append(pks, col.Name)
		}
	}
	return pks
}

// ColumnByName looks a column up by name.
func ColumnByName(table Table, name string) (Column, bool) {
	for _, col := range table.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}
