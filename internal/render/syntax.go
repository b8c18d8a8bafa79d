package render

import (
	"fmt"

	"pg-ectogen/internal/declaration"
)

// Syntax supplies the declaration keyword vocabulary. The punctuation and
// keywords belong to the target ORM's declaration syntax, so they arrive
// through configuration rather than being hard-coded in the generation core.
type Syntax struct {
	FieldKeyword      string `mapstructure:"field_keyword"`
	BelongsToKeyword  string `mapstructure:"belongs_to_keyword"`
	HasManyKeyword    string `mapstructure:"has_many_keyword"`
	HasOneKeyword     string `mapstructure:"has_one_keyword"`
	ManyToManyKeyword string `mapstructure:"many_to_many_keyword"`

	ForeignKeyOption  string `mapstructure:"foreign_key_option"`
	ReferencesOption  string `mapstructure:"references_option"`
	JoinThroughOption string `mapstructure:"join_through_option"`
	JoinKeysOption    string `mapstructure:"join_keys_option"`
	ValuesOption      string `mapstructure:"values_option"`
}

// DefaultSyntax returns the Ecto declaration vocabulary.
func DefaultSyntax() Syntax {
	return Syntax{
		FieldKeyword:      "field",
		BelongsToKeyword:  "belongs_to",
		HasManyKeyword:    "has_many",
		HasOneKeyword:     "has_one",
		ManyToManyKeyword: "many_to_many",
		ForeignKeyOption:  "foreign_key",
		ReferencesOption:  "references",
		JoinThroughOption: "join_through",
		JoinKeysOption:    "join_keys",
		ValuesOption:      "values",
	}
}

// keywordFor resolves the declaration keyword for a kind. An unknown kind is
// an upstream modeling bug: generation for the enclosing entity must abort.
func (s Syntax) keywordFor(kind declaration.Kind) (string, error) {
	switch kind {
	case declaration.Field:
		return s.FieldKeyword, nil
	case declaration.BelongsTo:
		return s.BelongsToKeyword, nil
	case declaration.HasMany:
		return s.HasManyKeyword, nil
	case declaration.HasOne:
		return s.HasOneKeyword, nil
	case declaration.ManyToMany:
		return s.ManyToManyKeyword, nil
	default:
		return "", fmt.Errorf("unknown declaration kind %d", int(kind))
	}
}
