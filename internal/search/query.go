package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// DiscoverParams configures a discover query.
type DiscoverParams struct {
	Query         string
	Genre         string // Exact genre filter, case-insensitive
	AvailableOnly bool
	Limit         int
}

// DefaultLimit is used when DiscoverParams.Limit is not positive.
const DefaultLimit = 20

// Hit is one scored catalog entry.
type Hit struct {
	Title      string            `json:"title"`
	Author     string            `json:"author"`
	Genre      string            `json:"genre,omitempty"`
	Available  bool              `json:"available"`
	Score      float64           `json:"score"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Result is the response of Discover.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
}

// Discover runs a relevance-ranked search over title, author and genre.
func (c *CatalogIndex) Discover(ctx context.Context, params DiscoverParams) (*Result, error) {
	if params.Limit <= 0 {
		params.Limit = DefaultLimit
	}

	req := bleve.NewSearchRequestOptions(buildQuery(params), params.Limit, 0, false)
	req.SortBy([]string{"-_score", "position"})
	req.Highlight = bleve.NewHighlight()
	req.Highlight.AddField("title")
	req.Highlight.AddField("author")
	req.Fields = []string{"title", "author", "genre", "available"}

	c.mu.RLock()
	res, err := c.index.SearchInContext(ctx, req)
	c.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}
	for _, h := range res.Hits {
		hit := Hit{Title: h.ID, Score: h.Score}
		if a, ok := h.Fields["author"].(string); ok {
			hit.Author = a
		}
		if g, ok := h.Fields["genre"].(string); ok {
			hit.Genre = g
		}
		if av, ok := h.Fields["available"].(bool); ok {
			hit.Available = av
		}
		if len(h.Fragments) > 0 {
			hit.Highlights = make(map[string]string)
			for field, fragments := range h.Fragments {
				if len(fragments) > 0 {
					hit.Highlights[field] = fragments[0]
				}
			}
		}
		result.Hits = append(result.Hits, hit)
	}
	return result, nil
}

func buildQuery(params DiscoverParams) query.Query {
	var queries []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		titleMatch := bleve.NewMatchQuery(q)
		titleMatch.SetField("title")
		titleMatch.SetBoost(3.0)

		authorMatch := bleve.NewMatchQuery(q)
		authorMatch.SetField("author")
		authorMatch.SetBoost(2.0)

		genreMatch := bleve.NewMatchQuery(q)
		genreMatch.SetField("genre")

		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(q))
		fuzzy.SetField("title")
		fuzzy.SetFuzziness(1)
		fuzzy.SetBoost(0.8)

		textQueries := []query.Query{titleMatch, authorMatch, genreMatch, fuzzy}
		if len(q) >= 2 {
			prefix := bleve.NewPrefixQuery(strings.ToLower(q))
			prefix.SetField("title")
			prefix.SetBoost(0.5)
			textQueries = append(textQueries, prefix)
		}
		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if params.Genre != "" {
		gq := bleve.NewTermQuery(strings.ToLower(params.Genre))
		gq.SetField("genre_exact")
		queries = append(queries, gq)
	}

	if params.AvailableOnly {
		bq := bleve.NewBoolFieldQuery(true)
		bq.SetField("available")
		queries = append(queries, bq)
	}

	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}
