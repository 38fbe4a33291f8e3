package ranking

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/catalog-server/internal/domain"
)

func TestRecommend_GenreAndAuthorMatch(t *testing.T) {
	catalog := []domain.CatalogEntry{
		{Title: "1984", Genre: "Dystopian", Author: "George Orwell", Available: true},
		{Title: "Gatsby", Genre: "Classic", Author: "F. Scott Fitzgerald", Available: true},
	}
	prefs := domain.Preferences{Genre: "Dystopian", Author: "George Orwell"}

	scored := RecommendScored(prefs, catalog, domain.UserInventory{})

	require.Len(t, scored, 1)
	assert.Equal(t, "1984", scored[0].Entry.Title)
	assert.InDelta(t, 4.0, scored[0].Similarity, 1e-9)
	assert.Equal(t, []string{"1984"}, titles(Recommend(prefs, catalog, domain.UserInventory{})))
}

func TestPopularity_CountsBothStatuses(t *testing.T) {
	inv := domain.UserInventory{
		"alice": {{Title: "Moby Dick", Status: domain.StatusBorrowed}, {Title: "1984", Status: domain.StatusReserved}},
		"bob":   {{Title: "1984", Status: domain.StatusBorrowed}},
	}

	counts := Popularity(inv)

	assert.Equal(t, 2, counts["1984"])
	assert.Equal(t, 1, counts["Moby Dick"])
	assert.Zero(t, counts["Emma"])
}

func TestRecommend_PopularityIsFractional(t *testing.T) {
	catalog := []domain.CatalogEntry{
		{Title: "Moby Dick", Genre: "Adventure", Author: "Herman Melville"},
		{Title: "1984", Genre: "Dystopian", Author: "George Orwell"},
		{Title: "Emma", Genre: "Romance", Author: "Jane Austen"},
	}
	inv := domain.UserInventory{
		"alice": {{Title: "Moby Dick", Status: domain.StatusBorrowed}},
		"bob":   {{Title: "1984", Status: domain.StatusReserved}, {Title: "1984", Status: domain.StatusBorrowed}},
	}

	scored := RecommendScored(domain.Preferences{Genre: "Sci-Fi"}, catalog, inv)

	require.Len(t, scored, 2)
	assert.Equal(t, "1984", scored[0].Entry.Title)
	assert.InDelta(t, 0.4, scored[0].Similarity, 1e-9)
	assert.Equal(t, "Moby Dick", scored[1].Entry.Title)
	assert.InDelta(t, 0.2, scored[1].Similarity, 1e-9)
}

func TestRecommend_ExcludesZeroAndCapsAtFive(t *testing.T) {
	var catalog []domain.CatalogEntry
	for i := range 8 {
		catalog = append(catalog, domain.CatalogEntry{
			Title:  fmt.Sprintf("Book %d", i),
			Genre:  "Mystery",
			Author: fmt.Sprintf("Author %d", i),
		})
	}
	catalog = append(catalog, domain.CatalogEntry{Title: "Unrelated", Genre: "Poetry", Author: "Nobody"})
	// Book 6 also matches the author, so it outranks the rest.
	prefs := domain.Preferences{Genre: "Mystery", Author: "Author 6"}

	got := Recommend(prefs, catalog, nil)

	assert.Equal(t, []string{"Book 6", "Book 0", "Book 1", "Book 2", "Book 3"}, titles(got))
	assert.NotContains(t, titles(got), "Unrelated")
}

func TestRecommend_SortedByDescendingSimilarity(t *testing.T) {
	catalog := []domain.CatalogEntry{
		{Title: "A", Genre: "G"},
		{Title: "B", Genre: "G", Author: "X"},
		{Title: "C"},
		{Title: "D", Author: "X"},
	}
	inv := domain.UserInventory{"u": {{Title: "C"}, {Title: "D"}}}

	scored := RecommendScored(domain.Preferences{Genre: "G", Author: "X"}, catalog, inv)

	require.Len(t, scored, 4)
	for i := 1; i < len(scored); i++ {
		assert.GreaterOrEqual(t, scored[i-1].Similarity, scored[i].Similarity)
	}
	assert.Equal(t, "B", scored[0].Entry.Title)
	assert.Equal(t, "C", scored[3].Entry.Title)
}

func TestRecommend_EmptyPreferencesMatchNothing(t *testing.T) {
	catalog := []domain.CatalogEntry{{Title: "No Genre", Author: ""}}

	got := Recommend(domain.Preferences{}, catalog, domain.UserInventory{})

	assert.Empty(t, got)
}

func TestScore(t *testing.T) {
	entry := domain.CatalogEntry{Title: "1984", Genre: "Dystopian", Author: "George Orwell"}

	assert.InDelta(t, 4.6, Score(domain.Preferences{Genre: "Dystopian", Author: "George Orwell"}, entry, 3), 1e-9)
	assert.InDelta(t, 2.0, Score(domain.Preferences{Genre: "Dystopian"}, entry, 0), 1e-9)
	assert.InDelta(t, 0.0, Score(domain.Preferences{Genre: "dystopian"}, entry, 0), 1e-9)
}

func TestScore_UnsetPreferenceNeverMatchesUnsetField(t *testing.T) {
	untagged := domain.CatalogEntry{Title: "Moby Dick"}

	assert.Zero(t, Score(domain.Preferences{}, untagged, 0))
	assert.Zero(t, Score(domain.Preferences{Author: "Herman Melville"}, untagged, 0))
	assert.InDelta(t, 0.4, Score(domain.Preferences{}, untagged, 2), 1e-9)
}
