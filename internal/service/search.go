package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/listenupapp/catalog-server/internal/domain"
	domainerrors "github.com/listenupapp/catalog-server/internal/errors"
	"github.com/listenupapp/catalog-server/internal/metrics"
	"github.com/listenupapp/catalog-server/internal/ranking"
	"github.com/listenupapp/catalog-server/internal/search"
	"github.com/listenupapp/catalog-server/internal/store"
)

// maxQueryLength bounds search and discover queries, in characters.
const maxQueryLength = 256

// SearchService answers catalog searches.
type SearchService struct {
	store   *store.Store
	index   *search.CatalogIndex
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewSearchService creates a SearchService. index may be nil, in which case
// Discover is unavailable.
func NewSearchService(st *store.Store, index *search.CatalogIndex, m *metrics.Metrics, logger *slog.Logger) *SearchService {
	return &SearchService{
		store:   st,
		index:   index,
		metrics: m,
		logger:  orDiscard(logger),
	}
}

// Rank returns the single closest title match for query, or an empty slice.
func (s *SearchService) Rank(ctx context.Context, query string) ([]domain.CatalogEntry, error) {
	if utf8.RuneCountInString(query) > maxQueryLength {
		return nil, domainerrors.Validation(fmt.Sprintf("query must not exceed %d characters", maxQueryLength))
	}

	lib, err := s.store.Library(ctx)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "load library")
	}

	results := ranking.Rank(query, lib.Catalog)
	s.metrics.RecordSearch(len(results) > 0)
	s.logger.Debug("catalog searched",
		slog.String("query", query),
		slog.Int("results", len(results)))
	return results, nil
}

// Discover runs a relevance-ranked full-text search.
func (s *SearchService) Discover(ctx context.Context, params search.DiscoverParams) (*search.Result, error) {
	if s.index == nil {
		return nil, domainerrors.Internal("discover index is not available")
	}
	params.Query = strings.TrimSpace(params.Query)
	if utf8.RuneCountInString(params.Query) > maxQueryLength {
		return nil, domainerrors.Validation(fmt.Sprintf("query must not exceed %d characters", maxQueryLength))
	}

	result, err := s.index.Discover(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	s.metrics.RecordDiscover(len(result.Hits))
	return result, nil
}
