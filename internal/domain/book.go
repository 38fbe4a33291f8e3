// Package domain contains the core entities of the library catalog.
package domain

import "strings"

// CatalogEntry is a book in the catalog. Title is the unique key.
type CatalogEntry struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	Genre     string `json:"genre,omitempty"`
	Available bool   `json:"available"`
}

// Catalog is the ordered set of entries. Order is significant: removal is by
// index and ranking ties resolve to the earliest entry.
type Catalog []CatalogEntry

// DefaultCatalog returns the built-in catalog used when nothing is stored or
// the stored blob cannot be decoded.
func DefaultCatalog() Catalog {
	return Catalog{
		{Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", Genre: "Classic", Available: true},
		{Title: "1984", Author: "George Orwell", Genre: "Dystopian", Available: true},
		{Title: "To Kill a Mockingbird", Author: "Harper Lee", Genre: "Classic", Available: false},
		{Title: "Moby Dick", Author: "Herman Melville", Genre: "Adventure", Available: true},
	}
}

// IndexOf returns the position of the entry with the given title, or -1.
func (c Catalog) IndexOf(title string) int {
	for i := range c {
		if c[i].Title == title {
			return i
		}
	}
	return -1
}

// FindAvailable returns the index of the first entry with the title that can
// be borrowed, or -1.
func (c Catalog) FindAvailable(title string) int {
	for i := range c {
		if c[i].Title == title && c[i].Available {
			return i
		}
	}
	return -1
}

// FindUnavailable returns the index of the first entry with the title that is
// currently out, or -1.
func (c Catalog) FindUnavailable(title string) int {
	for i := range c {
		if c[i].Title == title && !c[i].Available {
			return i
		}
	}
	return -1
}

// Normalize trims the free-text fields of a new entry.
func (e *CatalogEntry) Normalize() {
	e.Title = strings.TrimSpace(e.Title)
	e.Author = strings.TrimSpace(e.Author)
	e.Genre = strings.TrimSpace(e.Genre)
}
