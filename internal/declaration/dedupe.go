package declaration

import (
	"fmt"
	"sort"

	"pg-ectogen/internal/naming"
)

// DeduplicateAssociations renames colliding declarations using their
// overridden foreign key. The input is stable-sorted by name first; that
// order decides which duplicate keeps the unqualified name when only some
// duplicates can be renamed. The output is sorted by resulting name, so
// repeated runs over the same schema emit identical code.
//
// Colliding declarations without a foreign key override keep their name.
// With three or more collisions and missing FK metadata the output can
// still carry duplicates; the generated code's compiler is the detector
// for that case, deliberately.
func DeduplicateAssociations(decls []Declaration, namer *naming.Namer) []Declaration {
	sorted := sortedByName(decls)
	colliding := collidingNames(sorted)

	out := make([]Declaration, 0, len(sorted))
	for _, d := range sorted {
		if colliding[d.Name] && d.Options.ForeignKey != "" {
			out = append(out, d.rename(namer.AssociationAlias(d.Options.ForeignKey, d.Name)))
			continue
		}
		out = append(out, d)
	}
	return sortedByName(out)
}

// DeduplicateJoins resolves name collisions between many_to_many
// declarations in two passes: join-table names first (the more specific
// disambiguator), then the owning-side join-key column for whatever still
// collides.
func DeduplicateJoins(decls []Declaration, namer *naming.Namer) []Declaration {
	return deduplicateJoinAssociations(deduplicateJoinAssociations(decls, namer, 1), namer, 2)
}

// deduplicateJoinAssociations runs one collision-resolution pass over
// possibly-renamed input. Pass 1 renames colliding declarations that carry
// a join table. Pass 2 recomputes collisions (a pass-1 rename removes a
// resolved collision from consideration) and falls back to the owning-side
// join-key column; has_many declarations are exempt and pass through
// unchanged regardless of collision.
func deduplicateJoinAssociations(decls []Declaration, namer *naming.Namer, attempt int) []Declaration {
	sorted := sortedByName(decls)
	colliding := collidingNames(sorted)

	out := make([]Declaration, 0, len(sorted))
	for _, d := range sorted {
		if !colliding[d.Name] {
			out = append(out, d)
			continue
		}
		switch attempt {
		case 1:
			if d.Options.JoinThrough != "" {
				out = append(out, d.rename(namer.AssociationAlias(d.Name+"_by", d.Options.JoinThrough)))
				continue
			}
		case 2:
			if d.Kind == HasMany {
				out = append(out, d)
				continue
			}
			if len(d.Options.JoinKeys) > 0 {
				out = append(out, d.rename(d.Name+"_by_"+namer.ForeignKeyPrefix(owningJoinKey(d).Column)))
				continue
			}
		}
		out = append(out, d)
	}
	return sortedByName(out)
}

// owningJoinKey returns the owning-side join key. Callers guarantee that
// JoinKeys, when present, has exactly two entries; anything else is an
// upstream modeling bug and generation must not paper over it.
func owningJoinKey(d Declaration) JoinKey {
	if len(d.Options.JoinKeys) != 2 {
		panic(fmt.Sprintf("declaration %q: join_keys must have exactly two entries, got %d",
			d.Name, len(d.Options.JoinKeys)))
	}
	return d.Options.JoinKeys[0]
}

func sortedByName(decls []Declaration) []Declaration {
	sorted := append([]Declaration(nil), decls...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

func collidingNames(decls []Declaration) map[string]bool {
	counts := make(map[string]int, len(decls))
	for _, d := range decls {
		counts[d.Name]++
	}
	colliding := make(map[string]bool)
	for name, count := range counts {
		if count > 1 {
			colliding[name] = true
		}
	}
	return colliding
}
