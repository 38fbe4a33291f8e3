package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/catalog-server/internal/domain"
)

func newTestIndex(t *testing.T, catalog domain.Catalog) *CatalogIndex {
	t.Helper()
	idx, err := NewCatalogIndex(nil)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	require.NoError(t, idx.Rebuild(catalog))
	return idx
}

func hitTitles(res *Result) []string {
	out := make([]string, len(res.Hits))
	for i, h := range res.Hits {
		out[i] = h.Title
	}
	return out
}

func TestRebuild_CountsDocuments(t *testing.T) {
	idx := newTestIndex(t, domain.DefaultCatalog())

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), count)

	require.NoError(t, idx.Rebuild(domain.DefaultCatalog()[:2]))
	count, err = idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestDiscover_MatchesAuthor(t *testing.T) {
	idx := newTestIndex(t, domain.DefaultCatalog())

	res, err := idx.Discover(context.Background(), DiscoverParams{Query: "orwell"})
	require.NoError(t, err)

	require.NotEmpty(t, res.Hits)
	assert.Equal(t, "1984", res.Hits[0].Title)
	assert.Equal(t, "George Orwell", res.Hits[0].Author)
	assert.True(t, res.Hits[0].Available)
}

func TestDiscover_StemmedTitle(t *testing.T) {
	idx := newTestIndex(t, domain.DefaultCatalog())

	res, err := idx.Discover(context.Background(), DiscoverParams{Query: "mockingbirds"})
	require.NoError(t, err)

	assert.Contains(t, hitTitles(res), "To Kill a Mockingbird")
}

func TestDiscover_Filters(t *testing.T) {
	idx := newTestIndex(t, domain.DefaultCatalog())
	ctx := context.Background()

	res, err := idx.Discover(ctx, DiscoverParams{Genre: "classic"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"The Great Gatsby", "To Kill a Mockingbird"}, hitTitles(res))

	res, err = idx.Discover(ctx, DiscoverParams{Genre: "Classic", AvailableOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"The Great Gatsby"}, hitTitles(res))
}

func TestDiscover_EmptyQueryMatchesAllInCatalogOrder(t *testing.T) {
	idx := newTestIndex(t, domain.DefaultCatalog())

	res, err := idx.Discover(context.Background(), DiscoverParams{})
	require.NoError(t, err)

	assert.Equal(t, uint64(4), res.Total)
	assert.Equal(t, []string{"The Great Gatsby", "1984", "To Kill a Mockingbird", "Moby Dick"}, hitTitles(res))
}

func TestDiscover_NoMatch(t *testing.T) {
	idx := newTestIndex(t, domain.DefaultCatalog())

	res, err := idx.Discover(context.Background(), DiscoverParams{Query: "xyzzy"})
	require.NoError(t, err)

	assert.NotNil(t, res.Hits)
	assert.Empty(t, res.Hits)
}
