package config

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"pg-ectogen/internal/schemafilter"
)

// ValidationError represents a configuration validation error with context.
type ValidationError struct {
	Field   string
	Message string
	Hint    string
}

func (e ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (hint: %s)", e.Field, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Field   string
	Message string
	Hint    string
}

// ValidationResult contains the results of configuration validation.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Error returns a combined error message if there are validation errors.
func (r *ValidationResult) Error() string {
	if !r.HasErrors() {
		return ""
	}
	var msgs []string
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration for errors and returns validation results.
// It returns both errors (fatal) and warnings (non-fatal issues).
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{}

	c.Database.validate(result)
	c.Output.validate(result)
	c.Logging.validate(result)
	validateSchemaFilters(result, c.SchemaFilters)
	validateTypeOverrides(result, c.TypeOverrides)
	c.validateSyntax(result)

	return result
}

func validateSchemaFilters(result *ValidationResult, filters schemafilter.Config) {
	validateGlobList(result, "schema_filters.allow_tables", filters.AllowTables)
	validateGlobList(result, "schema_filters.deny_tables", filters.DenyTables)
	validatePatternMap(result, "schema_filters.allow_columns", filters.AllowColumns)
	validatePatternMap(result, "schema_filters.deny_columns", filters.DenyColumns)
}

func validateTypeOverrides(result *ValidationResult, overrides map[string]string) {
	for rawType, ectoType := range overrides {
		if strings.TrimSpace(rawType) == "" {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "type_overrides",
				Message: "raw type name cannot be empty",
			})
			continue
		}
		if strings.TrimSpace(ectoType) == "" {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "type_overrides",
				Message: fmt.Sprintf("override for type %q cannot be empty", rawType),
			})
		}
	}
}

func validatePatternMap(result *ValidationResult, field string, patternMap map[string][]string) {
	for tablePattern, columnPatterns := range patternMap {
		if strings.TrimSpace(tablePattern) == "" {
			result.Errors = append(result.Errors, ValidationError{
				Field:   field,
				Message: "table pattern cannot be empty",
			})
			continue
		}
		if _, err := path.Match(strings.ToLower(tablePattern), "sample"); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("invalid table glob pattern %q: %v", tablePattern, err),
			})
		}
		for _, columnPattern := range columnPatterns {
			if strings.TrimSpace(columnPattern) == "" {
				result.Errors = append(result.Errors, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("column pattern for table pattern %q cannot be empty", tablePattern),
				})
				continue
			}
			if _, err := path.Match(strings.ToLower(columnPattern), "sample"); err != nil {
				result.Errors = append(result.Errors, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("invalid column glob pattern %q for table pattern %q: %v", columnPattern, tablePattern, err),
				})
			}
		}
	}
}

func validateGlobList(result *ValidationResult, field string, patterns []string) {
	for _, pattern := range patterns {
		if strings.TrimSpace(pattern) == "" {
			result.Errors = append(result.Errors, ValidationError{
				Field:   field,
				Message: "glob pattern cannot be empty",
			})
			continue
		}
		if _, err := path.Match(strings.ToLower(pattern), "sample"); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("invalid glob pattern %q: %v", pattern, err),
			})
		}
	}
}

func (d *DatabaseConfig) validate(result *ValidationResult) {
	// Port range validation (only if not using connection string)
	if d.ConnectionString == "" && (d.Port < 1 || d.Port > 65535) {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "database.port",
			Message: fmt.Sprintf("port %d is out of valid range (1-65535)", d.Port),
		})
	}

	validSSLModes := map[string]bool{
		"": true, "disable": true, "allow": true, "prefer": true,
		"require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[d.SSLMode] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "database.sslmode",
			Message: fmt.Sprintf("invalid sslmode %q", d.SSLMode),
			Hint:    "valid values are: disable, allow, prefer, require, verify-ca, verify-full",
		})
	}
	if d.SSLMode == "disable" {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "database.sslmode",
			Message: "sslmode disable sends credentials in plaintext",
			Hint:    "use require or stronger in production",
		})
	}

	if strings.TrimSpace(d.Schema) == "" {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "database.schema",
			Message: "schema cannot be empty",
			Hint:    "set database.schema, usually \"public\"",
		})
	}

	if d.ConnectTimeout < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "database.connect_timeout",
			Message: "connect_timeout cannot be negative",
		})
	}

	effectiveDatabase, err := d.EffectiveDatabaseName()
	if err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "database.database",
			Message: err.Error(),
			Hint:    "set database.database or include a /database in database.dsn",
		})
		return
	}

	// Keep runtime behavior deterministic for callers that consume Database.Database.
	d.Database = effectiveDatabase
}

var elixirModulePattern = regexp.MustCompile(`^[A-Z][A-Za-z0-9_]*(\.[A-Z][A-Za-z0-9_]*)*$`)

func (o *OutputConfig) validate(result *ValidationResult) {
	if !o.Stdout && strings.TrimSpace(o.Dir) == "" {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "output.dir",
			Message: "output directory cannot be empty",
			Hint:    "set output.dir or enable output.stdout",
		})
	}

	if !elixirModulePattern.MatchString(o.App) {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "output.app",
			Message: fmt.Sprintf("app namespace %q is not a valid Elixir module name", o.App),
			Hint:    "use a PascalCase namespace such as MyApp or MyApp.Schemas",
		})
	}
}

func (l *LoggingConfig) validate(result *ValidationResult) {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[l.Level] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid log level %q", l.Level),
			Hint:    "valid values are: debug, info, warn, error",
		})
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[l.Format] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid log format %q", l.Format),
			Hint:    "valid values are: json, text",
		})
	}
}

func (c *Config) validateSyntax(result *ValidationResult) {
	keywords := map[string]string{
		"syntax.field_keyword":        c.Syntax.FieldKeyword,
		"syntax.belongs_to_keyword":   c.Syntax.BelongsToKeyword,
		"syntax.has_many_keyword":     c.Syntax.HasManyKeyword,
		"syntax.has_one_keyword":      c.Syntax.HasOneKeyword,
		"syntax.many_to_many_keyword": c.Syntax.ManyToManyKeyword,
		"syntax.foreign_key_option":   c.Syntax.ForeignKeyOption,
		"syntax.references_option":    c.Syntax.ReferencesOption,
		"syntax.join_through_option":  c.Syntax.JoinThroughOption,
		"syntax.join_keys_option":     c.Syntax.JoinKeysOption,
		"syntax.values_option":        c.Syntax.ValuesOption,
	}
	for field, keyword := range keywords {
		if strings.TrimSpace(keyword) == "" {
			result.Errors = append(result.Errors, ValidationError{
				Field:   field,
				Message: "declaration keyword cannot be empty",
			})
		}
	}
}
