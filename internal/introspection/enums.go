package introspection

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
)

// getEnumValues loads the labels of a USER-DEFINED enum type in declaration
// order. information_schema exposes enum columns only by type name, so the
// labels come from pg_enum directly.
func getEnumValues(ctx context.Context, db Queryer, schemaName, typeName string) ([]string, error) {
	ctx, span := startSpan(ctx, "introspection.get_enum_values",
		attribute.String("db.schema", schemaName),
		attribute.String("db.type", typeName),
	)
	defer span.End()

	query := `
		SELECT e.enumlabel
		FROM pg_type t
		JOIN pg_enum e ON e.enumtypid = t.oid
		JOIN pg_namespace n ON n.oid = t.typnamespace
		WHERE n.nspname = $1 AND t.typname = $2
		ORDER BY e.enumsortorder
	`

	rows, err := db.QueryContext(ctx, query, schemaName, typeName)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var values []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			recordSpanError(span, err)
			return nil, err
		}
		values = append(values, label)
	}

	if err := rows.Err(); err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	return values, nil
}
