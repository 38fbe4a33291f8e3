package search

import (
	"strings"

	"github.com/listenupapp/catalog-server/internal/domain"
)

// document is the indexed form of a catalog entry.
type document struct {
	Title     string
	Author    string
	Genre     string
	Available bool
	Position  int
}

func newDocument(entry domain.CatalogEntry, position int) document {
	return document{
		Title:     entry.Title,
		Author:    entry.Author,
		Genre:     entry.Genre,
		Available: entry.Available,
		Position:  position,
	}
}

// ID is the document key. Titles are unique within the catalog.
func (d document) ID() string {
	return d.Title
}

// toMap converts to the field names used in the mapping.
func (d document) toMap() map[string]any {
	return map[string]any{
		"title":       d.Title,
		"author":      d.Author,
		"genre":       d.Genre,
		"genre_exact": strings.ToLower(d.Genre),
		"available":   d.Available,
		"position":    float64(d.Position),
	}
}
