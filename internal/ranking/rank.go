// Package ranking selects catalog entries for a search query and scores
// entries for recommendation. Everything here is pure: callers pass the
// catalog and inventory snapshot they loaded and get new slices back.
package ranking

import (
	"strings"
	"unicode/utf16"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/listenupapp/catalog-server/internal/domain"
)

// stepCost is the fixed cost charged to every candidate.
const stepCost = 1

// Rank returns the single catalog entry whose title contains query
// (case-insensitively) and whose title length is closest to the query's.
// Ties go to the entry that appears first in catalog. The result is empty,
// never nil, when nothing matches.
func Rank(query string, catalog []domain.CatalogEntry) []domain.CatalogEntry {
	best := -1
	bestScore := 0
	for i := range catalog {
		if !Matches(catalog[i].Title, query) {
			continue
		}
		score := stepCost + Heuristic(catalog[i].Title, query)
		if best < 0 || score < bestScore {
			best, bestScore = i, score
		}
	}

	if best < 0 {
		return []domain.CatalogEntry{}
	}
	return []domain.CatalogEntry{catalog[best]}
}

// Matches reports whether title contains query, ignoring case.
func Matches(title, query string) bool {
	fold := cases.Lower(language.Und)
	return strings.Contains(fold.String(title), fold.String(query))
}

// Heuristic is the length difference between title and query, counted in
// UTF-16 code units.
func Heuristic(title, query string) int {
	return lengthGap(utf16Len(title), utf16Len(query))
}

func lengthGap(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
