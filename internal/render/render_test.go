package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pg-ectogen/internal/declaration"
)

func TestLineFields(t *testing.T) {
	tests := []struct {
		name     string
		decl     declaration.Declaration
		expected string
	}{
		{
			name:     "mapped type",
			decl:     declaration.Declaration{Kind: declaration.Field, Name: "title", Options: declaration.Options{Type: "text"}},
			expected: "field :title, :string",
		},
		{
			name:     "uuid type",
			decl:     declaration.Declaration{Kind: declaration.Field, Name: "token", Options: declaration.Options{Type: "uuid"}},
			expected: "field :token, Ecto.UUID",
		},
		{
			name:     "unknown type passes through",
			decl:     declaration.Declaration{Kind: declaration.Field, Name: "score", Options: declaration.Options{Type: "numeric"}},
			expected: "field :score, :numeric",
		},
		{
			name:     "id field suppressed",
			decl:     declaration.Declaration{Kind: declaration.Field, Name: "id", Options: declaration.Options{Type: "int4"}},
			expected: "",
		},
		{
			name: "enum values",
			decl: declaration.Declaration{Kind: declaration.Field, Name: "status",
				Options: declaration.Options{Type: "object_status", Values: []string{"active", "archived"}}},
			expected: "field :status, Ecto.Enum, values: [:active, :archived]",
		},
	}

	r := Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, err := r.Line("Object", tt.decl)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, line)
		})
	}
}

func TestLineVectorFieldDiagnostic(t *testing.T) {
	var diag bytes.Buffer
	r := New(DefaultSyntax(), nil, &diag)

	line, err := r.Line("Document", declaration.Declaration{
		Kind: declaration.Field, Name: "embedding", Options: declaration.Options{Type: "vector(1536)"},
	})

	require.NoError(t, err)
	assert.Empty(t, line)
	assert.Contains(t, diag.String(), "Document.embedding")
	assert.Contains(t, diag.String(), "vector")
}

func TestLineAssociations(t *testing.T) {
	tests := []struct {
		name     string
		decl     declaration.Declaration
		expected string
	}{
		{
			name:     "belongs_to default fk",
			decl:     declaration.Declaration{Kind: declaration.BelongsTo, Name: "user", Target: "User"},
			expected: "belongs_to :user, User",
		},
		{
			name: "belongs_to with overridden fk and references",
			decl: declaration.Declaration{Kind: declaration.BelongsTo, Name: "author", Target: "User",
				Options: declaration.Options{ForeignKey: "created_by", References: "uid"}},
			expected: "belongs_to :author, User, foreign_key: :created_by, references: :uid",
		},
		{
			name: "has_many with fk",
			decl: declaration.Declaration{Kind: declaration.HasMany, Name: "alt_comments", Target: "Comment",
				Options: declaration.Options{ForeignKey: "alt_comment_id"}},
			expected: "has_many :alt_comments, Comment, foreign_key: :alt_comment_id",
		},
		{
			name:     "has_one",
			decl:     declaration.Declaration{Kind: declaration.HasOne, Name: "profile", Target: "Profile"},
			expected: "has_one :profile, Profile",
		},
		{
			name: "many_to_many with join table",
			decl: declaration.Declaration{Kind: declaration.ManyToMany, Name: "tags", Target: "Tag",
				Options: declaration.Options{JoinThrough: "post_tags"}},
			expected: `many_to_many :tags, Tag, join_through: "post_tags"`,
		},
		{
			name: "many_to_many with join keys",
			decl: declaration.Declaration{Kind: declaration.ManyToMany, Name: "users", Target: "User",
				Options: declaration.Options{
					JoinThrough: "objects",
					JoinKeys: []declaration.JoinKey{
						{Column: "created_by", ReferencedTable: "users", ReferencedColumn: "id"},
						{Column: "object_id", ReferencedTable: "objects", ReferencedColumn: "id"},
					},
				}},
			expected: `many_to_many :users, User, join_through: "objects", join_keys: [created_by: :id, object_id: :id]`,
		},
		{
			name: "many_to_many join keys referencing non-id columns",
			decl: declaration.Declaration{Kind: declaration.ManyToMany, Name: "folders", Target: "Folder",
				Options: declaration.Options{
					JoinThrough: "document_folders",
					JoinKeys: []declaration.JoinKey{
						{Column: "document_uid", ReferencedTable: "documents", ReferencedColumn: "uid"},
						{Column: "folder_uid", ReferencedTable: "folders", ReferencedColumn: "uid"},
					},
				}},
			expected: `many_to_many :folders, Folder, join_through: "document_folders", join_keys: [document_uid: :uid, folder_uid: :uid]`,
		},
	}

	r := Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, err := r.Line("Post", tt.decl)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, line)
		})
	}
}

func TestLineUnknownKind(t *testing.T) {
	r := Default()

	_, err := r.Line("Post", declaration.Declaration{Kind: declaration.Kind(42), Name: "broken"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown declaration kind")
}

func TestTypeOverridesWinOverFixedTable(t *testing.T) {
	r := New(DefaultSyntax(), map[string]string{"timestamptz": ":utc_datetime_usec", "citext": ":string"}, nil)

	line, err := r.Line("Event", declaration.Declaration{
		Kind: declaration.Field, Name: "occurred_at", Options: declaration.Options{Type: "timestamptz"},
	})
	require.NoError(t, err)
	assert.Equal(t, "field :occurred_at, :utc_datetime_usec", line)

	line, err = r.Line("Event", declaration.Declaration{
		Kind: declaration.Field, Name: "label", Options: declaration.Options{Type: "citext"},
	})
	require.NoError(t, err)
	assert.Equal(t, "field :label, :string", line)
}

func TestModule(t *testing.T) {
	var diag bytes.Buffer
	r := New(DefaultSyntax(), nil, &diag)

	decls := []declaration.Declaration{
		{Kind: declaration.Field, Name: "id", Options: declaration.Options{Type: "int4"}},
		{Kind: declaration.Field, Name: "title", Options: declaration.Options{Type: "text"}},
		{Kind: declaration.Field, Name: "embedding", Options: declaration.Options{Type: "vector(3)"}},
		{Kind: declaration.BelongsTo, Name: "author", Target: "User", Options: declaration.Options{ForeignKey: "author_id"}},
		{Kind: declaration.HasMany, Name: "comments", Target: "Comment"},
	}

	source, err := r.Module("MyApp", "Post", "posts", decls)
	require.NoError(t, err)

	expected := `defmodule MyApp.Post do
  use Ecto.Schema

  schema "posts" do
    field :title, :string
    belongs_to :author, User, foreign_key: :author_id
    has_many :comments, Comment
  end
end
`
	assert.Equal(t, expected, source)
	assert.Contains(t, diag.String(), "Post.embedding")
}

func TestModuleUnknownKindAbortsEntity(t *testing.T) {
	r := Default()

	_, err := r.Module("MyApp", "Post", "posts", []declaration.Declaration{
		{Kind: declaration.Field, Name: "title", Options: declaration.Options{Type: "text"}},
		{Kind: declaration.Kind(9), Name: "broken"},
	})

	require.Error(t, err)
}
