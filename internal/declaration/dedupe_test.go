package declaration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pg-ectogen/internal/naming"
)

func TestDeduplicateAssociationsUniqueNamesPassThrough(t *testing.T) {
	namer := naming.Default()
	input := []Declaration{
		{Kind: HasMany, Name: "posts", Target: "Post"},
		{Kind: BelongsTo, Name: "author", Target: "User", Options: Options{ForeignKey: "author_id"}},
		{Kind: Field, Name: "title", Options: Options{Type: "text"}},
	}

	result := DeduplicateAssociations(input, namer)

	require.Len(t, result, 3)
	// Only re-ordered by sort, nothing renamed.
	assert.Equal(t, "author", result[0].Name)
	assert.Equal(t, "posts", result[1].Name)
	assert.Equal(t, "title", result[2].Name)
	assert.Equal(t, "author_id", result[0].Options.ForeignKey)
}

func TestDeduplicateAssociationsDoesNotMutateInput(t *testing.T) {
	namer := naming.Default()
	input := []Declaration{
		{Kind: HasMany, Name: "comments", Target: "Comment", Options: Options{ForeignKey: "alt_comment_id"}},
		{Kind: HasMany, Name: "comments", Target: "Comment"},
	}

	_ = DeduplicateAssociations(input, namer)

	assert.Equal(t, "comments", input[0].Name)
	assert.Equal(t, "comments", input[1].Name)
}

func TestDeduplicateAssociationsForeignKeyCollision(t *testing.T) {
	namer := naming.Default()
	input := []Declaration{
		{Kind: HasMany, Name: "comments", Target: "Comment"},
		{Kind: HasMany, Name: "foos", Target: "Foo"},
		{Kind: HasMany, Name: "comments", Target: "Comment", Options: Options{ForeignKey: "alt_comment_id"}},
	}

	result := DeduplicateAssociations(input, namer)

	require.Len(t, result, 3)
	assert.Equal(t, Declaration{Kind: HasMany, Name: "alt_comments", Target: "Comment", Options: Options{ForeignKey: "alt_comment_id"}}, result[0])
	assert.Equal(t, Declaration{Kind: HasMany, Name: "comments", Target: "Comment"}, result[1])
	assert.Equal(t, Declaration{Kind: HasMany, Name: "foos", Target: "Foo"}, result[2])
}

func TestDeduplicateAssociationsJoinTableForeignKeys(t *testing.T) {
	namer := naming.Default()
	input := []Declaration{
		{Kind: ManyToMany, Name: "users", Target: "User", Options: Options{ForeignKey: "archived_by", JoinThrough: "objects"}},
		{Kind: ManyToMany, Name: "users", Target: "User", Options: Options{ForeignKey: "created_by", JoinThrough: "objects"}},
	}

	result := DeduplicateAssociations(input, namer)

	require.Len(t, result, 2)
	assert.Equal(t, "archived_by_users", result[0].Name)
	assert.Equal(t, "created_by_users", result[1].Name)
	// Every other option is preserved for rendering.
	assert.Equal(t, "objects", result[0].Options.JoinThrough)
	assert.Equal(t, "objects", result[1].Options.JoinThrough)
}

func TestDeduplicateAssociationsWithoutForeignKeyLeavesCollision(t *testing.T) {
	namer := naming.Default()
	input := []Declaration{
		{Kind: HasMany, Name: "comments", Target: "Comment"},
		{Kind: HasMany, Name: "comments", Target: "Comment"},
	}

	result := DeduplicateAssociations(input, namer)

	// Accepted limitation: no FK metadata, nothing to rename with.
	require.Len(t, result, 2)
	assert.Equal(t, "comments", result[0].Name)
	assert.Equal(t, "comments", result[1].Name)
}

func TestDeduplicateJoinsByJoinTable(t *testing.T) {
	namer := naming.Default()
	input := []Declaration{
		{Kind: ManyToMany, Name: "objects", Target: "Object", Options: Options{JoinThrough: "attachments"}},
		{Kind: ManyToMany, Name: "objects", Target: "Object", Options: Options{JoinThrough: "object_activity_events"}},
	}

	result := DeduplicateJoins(input, namer)

	require.Len(t, result, 2)
	assert.Equal(t, "objects_by_attachments", result[0].Name)
	assert.Equal(t, "objects_by_object_activity_events", result[1].Name)
}

func TestDeduplicateJoinsFallsBackToJoinKeys(t *testing.T) {
	namer := naming.Default()
	input := []Declaration{
		{Kind: ManyToMany, Name: "users", Target: "User", Options: Options{
			JoinKeys: []JoinKey{{Column: "created_by_id", ReferencedTable: "users"}, {Column: "object_id", ReferencedTable: "objects"}},
		}},
		{Kind: ManyToMany, Name: "users", Target: "User", Options: Options{
			JoinKeys: []JoinKey{{Column: "archived_by_id", ReferencedTable: "users"}, {Column: "object_id", ReferencedTable: "objects"}},
		}},
	}

	result := DeduplicateJoins(input, namer)

	require.Len(t, result, 2)
	assert.Equal(t, "users_by_archived_by", result[0].Name)
	assert.Equal(t, "users_by_created_by", result[1].Name)
}

func TestDeduplicateJoinsExemptsHasMany(t *testing.T) {
	namer := naming.Default()
	input := []Declaration{
		{Kind: HasMany, Name: "tags", Target: "Tag"},
		{Kind: HasMany, Name: "tags", Target: "Tag"},
	}

	result := DeduplicateJoins(input, namer)

	require.Len(t, result, 2)
	assert.Equal(t, "tags", result[0].Name)
	assert.Equal(t, "tags", result[1].Name)
}

func TestDeduplicateJoinsResidualCollisionUnchanged(t *testing.T) {
	namer := naming.Default()
	input := []Declaration{
		{Kind: ManyToMany, Name: "users", Target: "User"},
		{Kind: ManyToMany, Name: "users", Target: "User"},
	}

	result := DeduplicateJoins(input, namer)

	// No join table and no join keys: the collision survives, documented.
	require.Len(t, result, 2)
	assert.Equal(t, "users", result[0].Name)
	assert.Equal(t, "users", result[1].Name)
}

func TestDeduplicateJoinsCompositionLaw(t *testing.T) {
	namer := naming.Default()
	input := []Declaration{
		{Kind: ManyToMany, Name: "objects", Target: "Object", Options: Options{JoinThrough: "attachments"}},
		{Kind: ManyToMany, Name: "objects", Target: "Object", Options: Options{
			JoinKeys: []JoinKey{{Column: "owner_id", ReferencedTable: "users"}, {Column: "object_id", ReferencedTable: "objects"}},
		}},
		{Kind: ManyToMany, Name: "groups", Target: "Group"},
	}

	composed := deduplicateJoinAssociations(deduplicateJoinAssociations(input, namer, 1), namer, 2)
	assert.Equal(t, composed, DeduplicateJoins(input, namer))
}

func TestDeduplicateJoinsPassOneResolvesBeforePassTwo(t *testing.T) {
	namer := naming.Default()
	input := []Declaration{
		{Kind: ManyToMany, Name: "objects", Target: "Object", Options: Options{
			JoinThrough: "attachments",
			JoinKeys:    []JoinKey{{Column: "left_id", ReferencedTable: "lefts"}, {Column: "object_id", ReferencedTable: "objects"}},
		}},
		{Kind: ManyToMany, Name: "objects", Target: "Object", Options: Options{
			JoinThrough: "links",
			JoinKeys:    []JoinKey{{Column: "right_id", ReferencedTable: "rights"}, {Column: "object_id", ReferencedTable: "objects"}},
		}},
	}

	result := DeduplicateJoins(input, namer)

	// Pass 1 resolved both via join tables; pass 2 saw no residual collision
	// and left the join-key fallback untouched.
	require.Len(t, result, 2)
	assert.Equal(t, "objects_by_attachments", result[0].Name)
	assert.Equal(t, "objects_by_links", result[1].Name)
}

func TestOwningJoinKeyContract(t *testing.T) {
	namer := naming.Default()
	input := []Declaration{
		{Kind: ManyToMany, Name: "users", Target: "User", Options: Options{
			JoinKeys: []JoinKey{{Column: "only_one", ReferencedTable: "users"}},
		}},
		{Kind: ManyToMany, Name: "users", Target: "User"},
	}

	assert.Panics(t, func() {
		DeduplicateJoins(input, namer)
	})
}
