package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/listenupapp/catalog-server/internal/domain"
	domainerrors "github.com/listenupapp/catalog-server/internal/errors"
	"github.com/listenupapp/catalog-server/internal/id"
	"github.com/listenupapp/catalog-server/internal/metrics"
	"github.com/listenupapp/catalog-server/internal/search"
	"github.com/listenupapp/catalog-server/internal/sse"
	"github.com/listenupapp/catalog-server/internal/store"
	"github.com/listenupapp/catalog-server/internal/validation"
)

// LibraryService manages the catalog and the borrow and reserve workflows.
type LibraryService struct {
	store     *store.Store
	index     *search.CatalogIndex
	validator *validation.Validator
	emitter   Emitter
	metrics   *metrics.Metrics
	logger    *slog.Logger

	loanPeriod time.Duration
	now        clock

	// mu serialises load, mutate, persist cycles.
	mu sync.Mutex
}

// NewLibraryService creates a LibraryService. A non-positive loanPeriod uses
// domain.DefaultLoanPeriod. index and m may be nil.
func NewLibraryService(
	st *store.Store,
	index *search.CatalogIndex,
	v *validation.Validator,
	emitter Emitter,
	m *metrics.Metrics,
	loanPeriod time.Duration,
	logger *slog.Logger,
) *LibraryService {
	if loanPeriod <= 0 {
		loanPeriod = domain.DefaultLoanPeriod
	}
	return &LibraryService{
		store:      st,
		index:      index,
		validator:  v,
		emitter:    orNoop(emitter),
		metrics:    m,
		logger:     orDiscard(logger),
		loanPeriod: loanPeriod,
		now:        time.Now,
	}
}

// AddBookRequest is the payload of AddBook.
type AddBookRequest struct {
	Title  string `json:"title" validate:"required,booktext,max=256"`
	Author string `json:"author" validate:"required,booktext,max=256"`
	Genre  string `json:"genre,omitempty" validate:"omitempty,booktext,max=64"`
}

// ListCatalog returns the catalog in stored order.
func (s *LibraryService) ListCatalog(ctx context.Context) (domain.Catalog, error) {
	lib, err := s.store.Library(ctx)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "load library")
	}
	return lib.Catalog, nil
}

// AddBook appends a new, available entry to the catalog and returns it with
// its index. Titles are unique.
func (s *LibraryService) AddBook(ctx context.Context, req AddBookRequest) (domain.CatalogEntry, int, error) {
	entry := domain.CatalogEntry{Title: req.Title, Author: req.Author, Genre: req.Genre, Available: true}
	entry.Normalize()
	req = AddBookRequest{Title: entry.Title, Author: entry.Author, Genre: entry.Genre}
	if err := s.validator.Validate(req); err != nil {
		return domain.CatalogEntry{}, 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		index   int
		catalog domain.Catalog
	)
	err := s.store.UpdateLibrary(ctx, func(lib *store.Library) error {
		if lib.Catalog.IndexOf(entry.Title) >= 0 {
			return domainerrors.AlreadyExistsf("%q is already in the catalog", entry.Title)
		}
		lib.Catalog = append(lib.Catalog, entry)
		index = len(lib.Catalog) - 1
		catalog = lib.Catalog
		return nil
	})
	if err != nil {
		return domain.CatalogEntry{}, 0, err
	}

	s.logger.Info("book added",
		slog.String("title", entry.Title),
		slog.String("author", entry.Author),
		slog.Int("index", index))
	s.catalogChanged(catalog)
	s.emitter.Emit(sse.NewBookAddedEvent(index, entry))
	return entry, index, nil
}

// RemoveBook deletes the entry at index. Later entries shift down by one.
func (s *LibraryService) RemoveBook(ctx context.Context, index int) (domain.CatalogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		removed domain.CatalogEntry
		catalog domain.Catalog
	)
	err := s.store.UpdateLibrary(ctx, func(lib *store.Library) error {
		if index < 0 || index >= len(lib.Catalog) {
			return domainerrors.OutOfRange(index, len(lib.Catalog))
		}
		removed = lib.Catalog[index]
		lib.Catalog = slices.Delete(lib.Catalog, index, index+1)
		catalog = lib.Catalog
		return nil
	})
	if err != nil {
		return domain.CatalogEntry{}, err
	}

	s.logger.Info("book removed", slog.String("title", removed.Title), slog.Int("index", index))
	s.catalogChanged(catalog)
	s.emitter.Emit(sse.NewBookRemovedEvent(index, removed))
	return removed, nil
}

// BorrowBook checks out the first available entry titled title for username.
// The entry becomes unavailable and a Borrowed record due after the loan
// period is appended to the user's inventory.
func (s *LibraryService) BorrowBook(ctx context.Context, username, title string) (domain.InventoryRecord, error) {
	recordID, err := id.NewRecordID()
	if err != nil {
		return domain.InventoryRecord{}, fmt.Errorf("generate record ID: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		rec     domain.InventoryRecord
		catalog domain.Catalog
	)
	err = s.store.UpdateLibrary(ctx, func(lib *store.Library) error {
		i := lib.Catalog.FindAvailable(title)
		if i < 0 {
			return domainerrors.Unavailable(title)
		}
		lib.Catalog[i].Available = false
		rec = domain.NewBorrowRecord(recordID, title, s.now(), s.loanPeriod)
		lib.Inventory.Append(username, rec)
		catalog = lib.Catalog
		return nil
	})
	if err != nil {
		s.metrics.RecordBorrow(outcomeOf(err))
		if domainerrors.Is(err, domainerrors.ErrUnavailable) {
			s.logger.Info("borrow refused",
				slog.String("username", username),
				slog.String("title", title))
		}
		return domain.InventoryRecord{}, err
	}

	s.metrics.RecordBorrow(metrics.OutcomeOK)
	s.logger.Info("book borrowed",
		slog.String("username", username),
		slog.String("title", title),
		slog.Time("return_date", *rec.ReturnDate))
	s.catalogChanged(catalog)
	s.emitter.Emit(sse.NewInventoryEvent(username, rec))
	return rec, nil
}

// ReserveBook places a hold on title for username. Only titles that are in
// the catalog and currently unavailable can be reserved.
func (s *LibraryService) ReserveBook(ctx context.Context, username, title string) (domain.InventoryRecord, error) {
	recordID, err := id.NewRecordID()
	if err != nil {
		return domain.InventoryRecord{}, fmt.Errorf("generate record ID: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var rec domain.InventoryRecord
	err = s.store.UpdateLibrary(ctx, func(lib *store.Library) error {
		if lib.Catalog.FindAvailable(title) >= 0 {
			return domainerrors.Available(title)
		}
		if lib.Catalog.FindUnavailable(title) < 0 {
			return domainerrors.NotFoundf("%q is not in the catalog", title)
		}
		rec = domain.NewReserveRecord(recordID, title, s.now())
		lib.Inventory.Append(username, rec)
		return nil
	})
	if err != nil {
		s.metrics.RecordReserve(outcomeOf(err))
		return domain.InventoryRecord{}, err
	}

	s.metrics.RecordReserve(metrics.OutcomeOK)
	s.logger.Info("book reserved",
		slog.String("username", username),
		slog.String("title", title))
	s.emitter.Emit(sse.NewInventoryEvent(username, rec))
	return rec, nil
}

// Inventory returns username's records in the order they were made.
func (s *LibraryService) Inventory(ctx context.Context, username string) ([]domain.InventoryRecord, error) {
	lib, err := s.store.Library(ctx)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "load library")
	}
	recs := lib.Inventory[username]
	if recs == nil {
		recs = []domain.InventoryRecord{}
	}
	return recs, nil
}

// BorrowedLedger returns every Borrowed record across users, ordered by
// username and then by the order the records were made.
func (s *LibraryService) BorrowedLedger(ctx context.Context) ([]domain.BorrowedEntry, error) {
	lib, err := s.store.Library(ctx)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "load library")
	}

	usernames := make([]string, 0, len(lib.Inventory))
	for username := range lib.Inventory {
		usernames = append(usernames, username)
	}
	slices.SortFunc(usernames, cmp.Compare[string])

	ledger := []domain.BorrowedEntry{}
	for _, username := range usernames {
		for _, rec := range lib.Inventory[username] {
			if rec.Status == domain.StatusBorrowed {
				ledger = append(ledger, domain.BorrowedEntry{Username: username, Record: rec})
			}
		}
	}
	return ledger, nil
}

// Reindex rebuilds the discover index from the stored catalog.
func (s *LibraryService) Reindex(ctx context.Context) error {
	catalog, err := s.ListCatalog(ctx)
	if err != nil {
		return err
	}
	s.catalogChanged(catalog)
	return nil
}

// catalogChanged refreshes the discover index and the size gauge. Index
// failures are logged; the committed change stands.
func (s *LibraryService) catalogChanged(catalog domain.Catalog) {
	s.metrics.SetCatalogSize(len(catalog))
	if s.index == nil {
		return
	}
	if err := s.index.Rebuild(catalog); err != nil {
		s.logger.Error("failed to rebuild search index", slog.String("error", err.Error()))
	}
}

func outcomeOf(err error) string {
	switch {
	case domainerrors.Is(err, domainerrors.ErrUnavailable):
		return metrics.OutcomeUnavailable
	case domainerrors.Is(err, domainerrors.ErrAvailable):
		return metrics.OutcomeAvailable
	case domainerrors.Is(err, domainerrors.ErrNotFound):
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeError
	}
}
