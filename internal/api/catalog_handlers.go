package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/search"
	"github.com/listenupapp/catalog-server/internal/service"
)

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCatalog",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog",
		Summary:     "List catalog",
		Description: "Returns every catalog entry in catalog order",
		Tags:        []string{"Catalog"},
		Security:    bearerSecurity,
	}, s.handleListCatalog)

	huma.Register(s.api, huma.Operation{
		OperationID:   "addBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/catalog",
		Summary:       "Add book",
		Description:   "Appends an available book to the catalog (admin only)",
		Tags:          []string{"Catalog"},
		DefaultStatus: http.StatusCreated,
		Security:      bearerSecurity,
	}, s.handleAddBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/catalog/{index}",
		Summary:     "Remove book",
		Description: "Removes the entry at a catalog position (admin only)",
		Tags:        []string{"Catalog"},
		Security:    bearerSecurity,
	}, s.handleRemoveBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchCatalog",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/search",
		Summary:     "Search catalog",
		Description: "Returns the single title that best matches the query, or nothing",
		Tags:        []string{"Catalog"},
		Security:    bearerSecurity,
	}, s.handleSearchCatalog)

	huma.Register(s.api, huma.Operation{
		OperationID: "discoverCatalog",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/discover",
		Summary:     "Discover books",
		Description: "Full-text search over title, author and genre with relevance scores",
		Tags:        []string{"Catalog"},
		Security:    bearerSecurity,
	}, s.handleDiscoverCatalog)

	huma.Register(s.api, huma.Operation{
		OperationID: "borrowBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/catalog/borrow",
		Summary:     "Borrow book",
		Description: "Checks out an available copy of a title",
		Tags:        []string{"Catalog"},
		Security:    bearerSecurity,
	}, s.handleBorrowBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "reserveBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/catalog/reserve",
		Summary:     "Reserve book",
		Description: "Places a hold on a title that is currently out",
		Tags:        []string{"Catalog"},
		Security:    bearerSecurity,
	}, s.handleReserveBook)
}

// === DTOs ===

// CatalogResponse lists catalog entries.
type CatalogResponse struct {
	Books []domain.CatalogEntry `json:"books" doc:"Catalog entries in catalog order"`
}

// CatalogOutput wraps the catalog response for Huma.
type CatalogOutput struct {
	Body CatalogResponse
}

// AddBookRequest is the request body for adding a book.
type AddBookRequest struct {
	Title  string `json:"title" maxLength:"256" doc:"Unique title"`
	Author string `json:"author" maxLength:"256" doc:"Author"`
	Genre  string `json:"genre,omitempty" maxLength:"64" doc:"Genre"`
}

// AddBookInput wraps the add book request for Huma.
type AddBookInput struct {
	Body AddBookRequest
}

// BookResponse is a catalog entry with its position.
type BookResponse struct {
	Index int                 `json:"index" doc:"Position in the catalog"`
	Book  domain.CatalogEntry `json:"book" doc:"Catalog entry"`
}

// BookOutput wraps a single book for Huma.
type BookOutput struct {
	Body BookResponse
}

// RemoveBookInput identifies a catalog position.
type RemoveBookInput struct {
	Index int `path:"index" doc:"Catalog position, starting at 0"`
}

// SearchInput contains the search query.
type SearchInput struct {
	Query string `query:"q" maxLength:"256" doc:"Case-insensitive substring of the title"`
}

// SearchResponse holds at most one entry.
type SearchResponse struct {
	Query   string                `json:"query" doc:"Query as received"`
	Results []domain.CatalogEntry `json:"results" doc:"Best match, or empty"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body SearchResponse
}

// DiscoverInput contains discover parameters.
type DiscoverInput struct {
	Query         string `query:"q" maxLength:"256" doc:"Free-text query"`
	Genre         string `query:"genre" doc:"Exact genre filter"`
	AvailableOnly bool   `query:"available" doc:"Only books that can be borrowed"`
	Limit         int    `query:"limit" minimum:"0" maximum:"100" doc:"Maximum hits (default 20)"`
}

// DiscoverOutput wraps the discover result for Huma.
type DiscoverOutput struct {
	Body *search.Result
}

// TitleRequest names a title to borrow or reserve.
type TitleRequest struct {
	Title string `json:"title" minLength:"1" maxLength:"256" doc:"Exact title"`
}

// TitleInput wraps the title request for Huma.
type TitleInput struct {
	Body TitleRequest
}

// RecordOutput wraps the created inventory record for Huma.
type RecordOutput struct {
	Body domain.InventoryRecord
}

// === Handlers ===

func (s *Server) handleListCatalog(ctx context.Context, _ *struct{}) (*CatalogOutput, error) {
	if _, err := RequireUser(ctx); err != nil {
		return nil, err
	}

	catalog, err := s.services.Library.ListCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return &CatalogOutput{Body: CatalogResponse{Books: catalog}}, nil
}

func (s *Server) handleAddBook(ctx context.Context, input *AddBookInput) (*BookOutput, error) {
	if _, err := RequireAdmin(ctx); err != nil {
		return nil, err
	}

	entry, index, err := s.services.Library.AddBook(ctx, service.AddBookRequest{
		Title:  input.Body.Title,
		Author: input.Body.Author,
		Genre:  input.Body.Genre,
	})
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: BookResponse{Index: index, Book: entry}}, nil
}

func (s *Server) handleRemoveBook(ctx context.Context, input *RemoveBookInput) (*BookOutput, error) {
	if _, err := RequireAdmin(ctx); err != nil {
		return nil, err
	}

	removed, err := s.services.Library.RemoveBook(ctx, input.Index)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: BookResponse{Index: input.Index, Book: removed}}, nil
}

func (s *Server) handleSearchCatalog(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	if _, err := RequireUser(ctx); err != nil {
		return nil, err
	}

	results, err := s.services.Search.Rank(ctx, input.Query)
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: SearchResponse{Query: input.Query, Results: results}}, nil
}

func (s *Server) handleDiscoverCatalog(ctx context.Context, input *DiscoverInput) (*DiscoverOutput, error) {
	if _, err := RequireUser(ctx); err != nil {
		return nil, err
	}

	result, err := s.services.Search.Discover(ctx, search.DiscoverParams{
		Query:         input.Query,
		Genre:         input.Genre,
		AvailableOnly: input.AvailableOnly,
		Limit:         input.Limit,
	})
	if err != nil {
		return nil, err
	}
	return &DiscoverOutput{Body: result}, nil
}

func (s *Server) handleBorrowBook(ctx context.Context, input *TitleInput) (*RecordOutput, error) {
	username, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	rec, err := s.services.Library.BorrowBook(ctx, username, input.Body.Title)
	if err != nil {
		return nil, err
	}
	return &RecordOutput{Body: rec}, nil
}

func (s *Server) handleReserveBook(ctx context.Context, input *TitleInput) (*RecordOutput, error) {
	username, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	rec, err := s.services.Library.ReserveBook(ctx, username, input.Body.Title)
	if err != nil {
		return nil, err
	}
	return &RecordOutput{Body: rec}, nil
}
