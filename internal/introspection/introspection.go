// Package introspection discovers database schema metadata from PostgreSQL's
// information_schema and catalogs. It extracts tables, columns, indexes, and
// foreign keys for use in Ecto schema generation.
package introspection

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Column represents a database column
type Column struct {
	Name string
	// DataType is the raw PostgreSQL type name (udt_name), e.g. "int4",
	// "timestamptz", "jsonb", "vector".
	DataType      string
	IsNullable    bool
	IsPrimaryKey  bool
	IsIdentity    bool
	HasDefault    bool
	ColumnDefault string
	// EnumValues holds the labels of a USER-DEFINED enum type, in
	// declaration order.
	EnumValues []string
}

// Index represents a database index with ordered columns.
type Index struct {
	Name    string
	Unique  bool
	Columns []string
}

// ForeignKey represents a foreign key constraint on a column
type ForeignKey struct {
	ColumnName       string // e.g., "author_id"
	ReferencedTable  string // e.g., "users"
	ReferencedColumn string // e.g., "id"
	ConstraintName   string // e.g., "posts_author_id_fkey"
	OrdinalPosition  int    // Column position within the FK constraint
}

// Table represents a database table
type Table struct {
	Name        string
	IsView      bool
	Columns     []Column
	ForeignKeys []ForeignKey
	Indexes     []Index
}

// Schema represents the introspected database schema
type Schema struct {
	Name   string
	Tables []Table
}

// Queryer provides query access for schema introspection.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// IntrospectSchema queries PostgreSQL's information_schema to discover
// tables, columns, keys, and indexes for one schema (usually "public").
func IntrospectSchema(ctx context.Context, db Queryer, schemaName string) (*Schema, error) {
	ctx, span := startSpan(ctx, "introspection.build_schema",
		attribute.String("db.schema", schemaName),
	)
	defer span.End()

	schema := &Schema{
		Name:   schemaName,
		Tables: []Table{},
	}

	tables, err := getTables(ctx, db, schemaName)
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("failed to get tables: %w", err)
	}

	for _, tableInfo := range tables {
		columns, err := getColumns(ctx, db, schemaName, tableInfo.Name)
		if err != nil {
			recordSpanError(span, err)
			return nil, fmt.Errorf("failed to get columns for %s: %w", tableInfo.Name, err)
		}

		var primaryKeys []string
		var foreignKeys []ForeignKey
		var indexes []Index
		if !tableInfo.IsView {
			primaryKeys, err = getPrimaryKeys(ctx, db, schemaName, tableInfo.Name)
			if err != nil {
				recordSpanError(span, err)
				return nil, fmt.Errorf("failed to get primary keys for table %s: %w", tableInfo.Name, err)
			}

			foreignKeys, err = getForeignKeys(ctx, db, schemaName, tableInfo.Name)
			if err != nil {
				recordSpanError(span, err)
				return nil, fmt.Errorf("failed to get foreign keys for table %s: %w", tableInfo.Name, err)
			}

			indexes, err = getIndexes(ctx, db, schemaName, tableInfo.Name)
			if err != nil {
				recordSpanError(span, err)
				return nil, fmt.Errorf("failed to get indexes for table %s: %w", tableInfo.Name, err)
			}
		}

		// Mark primary key columns
		for i := range columns {
			for _, pk := range primaryKeys {
				if columns[i].Name == pk {
					columns[i].IsPrimaryKey = true
					break
				}
			}
		}

		schema.Tables = append(schema.Tables, Table{
			Name:        tableInfo.Name,
			IsView:      tableInfo.IsView,
			Columns:     columns,
			ForeignKeys: foreignKeys,
			Indexes:     indexes,
		})
	}

	return schema, nil
}

type tableInfo struct {
	Name   string
	IsView bool
}

func getTables(ctx context.Context, db Queryer, schemaName string) ([]tableInfo, error) {
	ctx, span := startSpan(ctx, "introspection.get_tables",
		attribute.String("db.schema", schemaName),
	)
	defer span.End()

	query := `
		SELECT table_name, table_type
		FROM information_schema.tables
		WHERE table_schema = $1
		AND table_type IN ('BASE TABLE', 'VIEW')
		ORDER BY table_name
	`

	rows, err := db.QueryContext(ctx, query, schemaName)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var tables []tableInfo
	for rows.Next() {
		var tableName string
		var tableType string
		if err := rows.Scan(&tableName, &tableType); err != nil {
			recordSpanError(span, err)
			return nil, err
		}
		tables = append(tables, tableInfo{
			Name:   tableName,
			IsView: strings.EqualFold(tableType, "VIEW"),
		})
	}

	if err := rows.Err(); err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	return tables, nil
}

func getColumns(ctx context.Context, db Queryer, schemaName, tableName string) ([]Column, error) {
	ctx, span := startSpan(ctx, "introspection.get_columns",
		attribute.String("db.schema", schemaName),
		attribute.String("db.table", tableName),
	)
	defer span.End()

	query := `
		SELECT
			column_name,
			udt_name,
			data_type,
			is_nullable,
			column_default,
			is_identity
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`

	rows, err := db.QueryContext(ctx, query, schemaName, tableName)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var columns []Column
	var enumCandidates []int
	for rows.Next() {
		var col Column
		var dataType string
		var isNullable string
		var isIdentity string
		var columnDefault sql.NullString
		if err := rows.Scan(&col.Name, &col.DataType, &dataType, &isNullable, &columnDefault, &isIdentity); err != nil {
			recordSpanError(span, err)
			return nil, err
		}
		col.IsNullable = strings.EqualFold(isNullable, "YES")
		col.IsIdentity = strings.EqualFold(isIdentity, "YES")
		if columnDefault.Valid {
			col.ColumnDefault = columnDefault.String
			col.HasDefault = true
		}
		if strings.EqualFold(dataType, "USER-DEFINED") {
			enumCandidates = append(enumCandidates, len(columns))
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	// Enum labels live in pg_enum; loading them after the column scan keeps
	// one result set open at a time.
	for _, idx := range enumCandidates {
		values, err := getEnumValues(ctx, db, schemaName, columns[idx].DataType)
		if err != nil {
			recordSpanError(span, err)
			return nil, err
		}
		columns[idx].EnumValues = values
	}

	return columns, nil
}

func getPrimaryKeys(ctx context.Context, db Queryer, schemaName, tableName string) ([]string, error) {
	ctx, span := startSpan(ctx, "introspection.get_primary_keys",
		attribute.String("db.schema", schemaName),
		attribute.String("db.table", tableName),
	)
	defer span.End()

	query := `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON kcu.constraint_name = tc.constraint_name
			AND kcu.table_schema = tc.table_schema
		WHERE tc.table_schema = $1
			AND tc.table_name = $2
			AND tc.constraint_type = 'PRIMARY KEY'
		ORDER BY kcu.ordinal_position
	`

	rows, err := db.QueryContext(ctx, query, schemaName, tableName)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var primaryKeys []string
	for rows.Next() {
		var columnName string
		if err := rows.Scan(&columnName); err != nil {
			recordSpanError(span, err)
			return nil, err
		}
		primaryKeys = append(primaryKeys, columnName)
	}

	if err := rows.Err(); err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	return primaryKeys, nil
}

func getForeignKeys(ctx context.Context, db Queryer, schemaName, tableName string) ([]ForeignKey, error) {
	ctx, span := startSpan(ctx, "introspection.get_foreign_keys",
		attribute.String("db.schema", schemaName),
		attribute.String("db.table", tableName),
	)
	defer span.End()

	// conkey and confkey are parallel arrays, so unnesting them together
	// keeps each local column paired with the referenced column at the same
	// position. information_schema.constraint_column_usage loses that pairing
	// for multi-column constraints.
	query := `
		SELECT
			a.attname AS column_name,
			rc.relname AS referenced_table,
			ra.attname AS referenced_column,
			con.conname AS constraint_name,
			k.ord
		FROM pg_constraint con
		JOIN pg_class c ON c.oid = con.conrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		JOIN pg_class rc ON rc.oid = con.confrelid
		JOIN unnest(con.conkey, con.confkey) WITH ORDINALITY AS k(attnum, fattnum, ord) ON true
		JOIN pg_attribute a ON a.attrelid = con.conrelid AND a.attnum = k.attnum
		JOIN pg_attribute ra ON ra.attrelid = con.confrelid AND ra.attnum = k.fattnum
		WHERE n.nspname = $1 AND c.relname = $2 AND con.contype = 'f'
		ORDER BY con.conname, k.ord
	`

	rows, err := db.QueryContext(ctx, query, schemaName, tableName)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var foreignKeys []ForeignKey
	for rows.Next() {
		var fk ForeignKey
		if err := rows.Scan(&fk.ColumnName, &fk.ReferencedTable,
			&fk.ReferencedColumn, &fk.ConstraintName, &fk.OrdinalPosition); err != nil {
			recordSpanError(span, err)
			return nil, err
		}
		foreignKeys = append(foreignKeys, fk)
	}

	if err := rows.Err(); err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	return foreignKeys, nil
}

func getIndexes(ctx context.Context, db Queryer, schemaName, tableName string) ([]Index, error) {
	ctx, span := startSpan(ctx, "introspection.get_indexes",
		attribute.String("db.schema", schemaName),
		attribute.String("db.table", tableName),
	)
	defer span.End()

	query := `
		SELECT
			ic.relname AS index_name,
			ix.indisunique,
			a.attname AS column_name
		FROM pg_index ix
		JOIN pg_class c ON c.oid = ix.indrelid
		JOIN pg_class ic ON ic.oid = ix.indexrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		JOIN unnest(ix.indkey) WITH ORDINALITY AS k(attnum, ord) ON true
		JOIN pg_attribute a ON a.attrelid = c.oid AND a.attnum = k.attnum
		WHERE n.nspname = $1 AND c.relname = $2
		ORDER BY ic.relname, k.ord
	`

	rows, err := db.QueryContext(ctx, query, schemaName, tableName)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var orderedNames []string
	indexByName := make(map[string]*Index)
	for rows.Next() {
		var indexName string
		var unique bool
		var columnName string
		if err := rows.Scan(&indexName, &unique, &columnName); err != nil {
			recordSpanError(span, err)
			return nil, err
		}

		index, ok := indexByName[indexName]
		if !ok {
			index = &Index{
				Name:   indexName,
				Unique: unique,
			}
			indexByName[indexName] = index
			orderedNames = append(orderedNames, indexName)
		}
		index.Columns = append(index.Columns, columnName)
	}
	if err := rows.Err(); err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	indexes := make([]Index, 0, len(indexByName))
	for _, name := range orderedNames {
		indexes = append(indexes, *indexByName[name])
	}
	return indexes, nil
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer("pg-ectogen/introspection")
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
