package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/listenupapp/catalog-server/internal/logger"
	"github.com/listenupapp/catalog-server/internal/metrics"
	"github.com/listenupapp/catalog-server/internal/search"
	"github.com/listenupapp/catalog-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.CatalogIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the in-memory Bleve index behind discover.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewCatalogIndex(log.Component("search"))
	if err != nil {
		return nil, err
	}
	return &SearchIndexHandle{CatalogIndex: index}, nil
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(storeHandle.Store, indexHandle.CatalogIndex, m, log.Component("search")), nil
}

// BuildSearchIndex indexes the stored catalog. The index lives in memory, so
// this runs on every start.
func BuildSearchIndex(i do.Injector) error {
	library := do.MustInvoke[*service.LibraryService](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := library.Reindex(context.Background()); err != nil {
		return err
	}

	docCount, _ := indexHandle.DocumentCount()
	log.Info("Search index built", "documents", docCount)
	return nil
}
