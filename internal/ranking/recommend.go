package ranking

import (
	"slices"

	"github.com/listenupapp/catalog-server/internal/domain"
)

const (
	// MaxRecommendations caps the size of a recommendation list.
	MaxRecommendations = 5

	genreWeight      = 2.0
	authorWeight     = 2.0
	popularityWeight = 5.0
)

// Scored is a catalog entry with its similarity to a user's preferences.
type Scored struct {
	Entry      domain.CatalogEntry `json:"entry"`
	Similarity float64             `json:"similarity"`
}

// Popularity counts inventory records per title across all users. Borrowed
// and Reserved records both count.
func Popularity(inventory domain.UserInventory) map[string]int {
	counts := make(map[string]int)
	for _, records := range inventory {
		for _, rec := range records {
			counts[rec.Title]++
		}
	}
	return counts
}

// Score returns the similarity of entry to prefs given how often its title
// appears in inventories. Genre and author must match exactly, with one
// departure from plain equality: an unset preference never matches, even
// against an entry whose genre or author is also unset.
func Score(prefs domain.Preferences, entry domain.CatalogEntry, popularity int) float64 {
	var similarity float64
	if prefs.Genre != "" && entry.Genre == prefs.Genre {
		similarity += genreWeight
	}
	if prefs.Author != "" && entry.Author == prefs.Author {
		similarity += authorWeight
	}
	return similarity + float64(popularity)/popularityWeight
}

// RecommendScored returns up to MaxRecommendations entries with positive
// similarity, most similar first. Equal scores keep catalog order.
func RecommendScored(prefs domain.Preferences, catalog []domain.CatalogEntry, inventory domain.UserInventory) []Scored {
	popularity := Popularity(inventory)

	type candidate struct {
		Scored
		total float64
	}
	candidates := make([]candidate, 0, len(catalog))
	for _, entry := range catalog {
		similarity := Score(prefs, entry, popularity[entry.Title])
		if similarity <= 0 {
			continue
		}
		candidates = append(candidates, candidate{
			Scored: Scored{Entry: entry, Similarity: similarity},
			total:  stepCost + 1/similarity,
		})
	}

	slices.SortStableFunc(candidates, func(a, b candidate) int {
		switch {
		case a.total < b.total:
			return -1
		case a.total > b.total:
			return 1
		}
		return 0
	})

	if len(candidates) > MaxRecommendations {
		candidates = candidates[:MaxRecommendations]
	}
	out := make([]Scored, len(candidates))
	for i, c := range candidates {
		out[i] = c.Scored
	}
	return out
}

// Recommend is RecommendScored without the scores.
func Recommend(prefs domain.Preferences, catalog []domain.CatalogEntry, inventory domain.UserInventory) []domain.CatalogEntry {
	scored := RecommendScored(prefs, catalog, inventory)
	out := make([]domain.CatalogEntry, len(scored))
	for i, s := range scored {
		out[i] = s.Entry
	}
	return out
}
