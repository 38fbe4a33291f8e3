// Package search provides a full-text "discover" index over the catalog.
// It complements ranking.Rank, which remains the single-result title search.
package search

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/listenupapp/catalog-server/internal/domain"
)

// CatalogIndex is an in-memory Bleve index of catalog entries, keyed by title.
//
// Thread safety: all public methods are safe for concurrent use.
type CatalogIndex struct {
	mu     sync.RWMutex
	index  bleve.Index
	logger *slog.Logger
}

// NewCatalogIndex creates an empty index.
func NewCatalogIndex(logger *slog.Logger) (*CatalogIndex, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &CatalogIndex{index: index, logger: logger}, nil
}

// Close releases the index.
func (c *CatalogIndex) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index.Close()
}

// Rebuild replaces the indexed documents with catalog.
func (c *CatalogIndex) Rebuild(catalog domain.Catalog) error {
	fresh, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	batch := fresh.NewBatch()
	for i, entry := range catalog {
		doc := newDocument(entry, i)
		if err := batch.Index(doc.ID(), doc.toMap()); err != nil {
			fresh.Close()
			return fmt.Errorf("batch index %q: %w", entry.Title, err)
		}
	}
	if err := fresh.Batch(batch); err != nil {
		fresh.Close()
		return fmt.Errorf("commit batch: %w", err)
	}

	c.mu.Lock()
	old := c.index
	c.index = fresh
	c.mu.Unlock()

	if err := old.Close(); err != nil {
		c.logger.Warn("failed to close previous search index", "error", err)
	}
	c.logger.Debug("catalog index rebuilt", "documents", len(catalog))
	return nil
}

// DocumentCount returns the number of indexed entries.
func (c *CatalogIndex) DocumentCount() (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index.DocCount()
}
