package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/catalog-server/internal/domain"
)

func titles(entries []domain.CatalogEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Title
	}
	return out
}

func catalogOf(titles ...string) []domain.CatalogEntry {
	out := make([]domain.CatalogEntry, len(titles))
	for i, t := range titles {
		out[i] = domain.CatalogEntry{Title: t, Author: "a", Available: true}
	}
	return out
}

func TestRank_PrefersClosestLength(t *testing.T) {
	catalog := catalogOf("The Great Gatsby", "1984")

	got := Rank("the", catalog)

	require.Len(t, got, 1)
	assert.Equal(t, "The Great Gatsby", got[0].Title)
	assert.Equal(t, 13, Heuristic("The Great Gatsby", "the"))
}

func TestRank_CaseInsensitive(t *testing.T) {
	catalog := catalogOf("Moby Dick", "Dick Tracy Returns")

	got := Rank("MOBY", catalog)

	assert.Equal(t, []string{"Moby Dick"}, titles(got))
}

func TestRank_EmptyQueryReturnsShortestTitle(t *testing.T) {
	catalog := catalogOf("The Great Gatsby", "Moby Dick", "1984", "To Kill a Mockingbird")

	got := Rank("", catalog)

	assert.Equal(t, []string{"1984"}, titles(got))
}

func TestRank_NoMatchReturnsEmpty(t *testing.T) {
	got := Rank("xyz-no-match", domain.DefaultCatalog())

	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRank_EmptyCatalog(t *testing.T) {
	got := Rank("anything", nil)

	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRank_TieKeepsCatalogOrder(t *testing.T) {
	catalog := catalogOf("Dune Two", "Dune One", "Dune")

	got := Rank("dune t", catalog)
	assert.Equal(t, []string{"Dune Two"}, titles(got))

	// "Dune Two" and "Dune One" are both 4 longer than "dune"; "Dune" wins outright.
	got = Rank("dune", catalog)
	assert.Equal(t, []string{"Dune"}, titles(got))

	got = Rank("dune ", catalogOf("Dune Two", "Dune One"))
	assert.Equal(t, []string{"Dune Two"}, titles(got))
}

func TestRank_ExactLengthMatch(t *testing.T) {
	catalog := catalogOf("Emma and More", "Emma")

	got := Rank("emma", catalog)

	assert.Equal(t, []string{"Emma"}, titles(got))
	assert.Zero(t, Heuristic("Emma", "emma"))
}

func TestRank_ResultIsMinimalAmongMatches(t *testing.T) {
	catalog := catalogOf(
		"A Tale of Two Cities",
		"Cities of Salt",
		"Invisible Cities",
		"The City & the City",
		"Cities",
	)
	queries := []string{"", "c", "cit", "cities", "of", "salt", "ties", "zzz", "THE"}

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			got := Rank(q, catalog)
			require.LessOrEqual(t, len(got), 1)

			var matches []domain.CatalogEntry
			for _, e := range catalog {
				if Matches(e.Title, q) {
					matches = append(matches, e)
				}
			}
			if len(matches) == 0 {
				assert.Empty(t, got)
				return
			}

			require.Len(t, got, 1)
			assert.True(t, Matches(got[0].Title, q))
			want := matches[0]
			for _, m := range matches[1:] {
				if Heuristic(m.Title, q) < Heuristic(want.Title, q) {
					want = m
				}
			}
			assert.Equal(t, want.Title, got[0].Title)
		})
	}
}

func TestHeuristic_CountsUTF16Units(t *testing.T) {
	// U+1F4DA is a surrogate pair; é is one unit.
	assert.Equal(t, 2, utf16Len("\U0001F4DA"))
	assert.Equal(t, 4, utf16Len("café"))
	assert.Equal(t, 3, Heuristic("\U0001F4DA Books", "books"))
}
