// Package naming provides centralized naming logic for deriving Ecto schema
// names from SQL schema names, including pluralization and foreign-key based
// association aliases.
package naming

// Config carries the operator-supplied inflection overrides. Both maps are
// consulted before the inflection rules, so a schema with irregular table
// names ("people", "data") still derives stable entity and association names.
type Config struct {
	// PluralOverrides maps a singular word to its plural,
	// e.g. {"person": "people"}.
	PluralOverrides map[string]string `mapstructure:"plural_overrides"`

	// SingularOverrides maps a plural word to its singular,
	// e.g. {"data": "datum"}.
	SingularOverrides map[string]string `mapstructure:"singular_overrides"`
}

// DefaultConfig returns a Config with no overrides.
func DefaultConfig() Config {
	return Config{
		PluralOverrides:   make(map[string]string),
		SingularOverrides: make(map[string]string),
	}
}
