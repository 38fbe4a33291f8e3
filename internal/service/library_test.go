package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/catalog-server/internal/domain"
	domainerrors "github.com/listenupapp/catalog-server/internal/errors"
	"github.com/listenupapp/catalog-server/internal/metrics"
	"github.com/listenupapp/catalog-server/internal/sse"
	"github.com/listenupapp/catalog-server/internal/store"
)

func TestLibraryService_ListCatalog_Default(t *testing.T) {
	env := setupTestEnv(t)

	catalog, err := env.library.ListCatalog(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCatalog(), catalog)
}

func TestLibraryService_BorrowThenBorrowAgain(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	rec, err := env.library.BorrowBook(ctx, "student", "1984")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBorrowed, rec.Status)
	require.NotNil(t, rec.BorrowedOn)
	require.NotNil(t, rec.ReturnDate)
	assert.Equal(t, testNow, *rec.BorrowedOn)
	assert.Equal(t, testNow.Add(7*24*time.Hour), *rec.ReturnDate)
	assert.NotEmpty(t, rec.ID)

	catalog, err := env.library.ListCatalog(ctx)
	require.NoError(t, err)
	assert.False(t, catalog[1].Available)

	_, err = env.library.BorrowBook(ctx, "student", "1984")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnavailable))
	assert.Equal(t, `"1984" is currently unavailable.`, err.Error())

	inv, err := env.library.Inventory(ctx, "student")
	require.NoError(t, err)
	assert.Len(t, inv, 1)

	assert.InDelta(t, 1, testutil.ToFloat64(env.metrics.BorrowsTotal.WithLabelValues(metrics.OutcomeOK)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(env.metrics.BorrowsTotal.WithLabelValues(metrics.OutcomeUnavailable)), 0)
	assert.Equal(t, []sse.EventType{sse.EventBorrowed}, env.emitter.types())
}

func TestLibraryService_BorrowUnknownTitle(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.library.BorrowBook(context.Background(), "student", "Dune")

	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnavailable))
}

func TestLibraryService_BorrowUsesLoanPeriod(t *testing.T) {
	env := setupTestEnv(t)
	env.library.loanPeriod = 14 * 24 * time.Hour

	rec, err := env.library.BorrowBook(context.Background(), "student", "Moby Dick")

	require.NoError(t, err)
	assert.Equal(t, testNow.Add(14*24*time.Hour), *rec.ReturnDate)
}

func TestLibraryService_ReserveBook(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	t.Run("unavailable title is reserved", func(t *testing.T) {
		rec, err := env.library.ReserveBook(ctx, "student", "To Kill a Mockingbird")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusReserved, rec.Status)
		require.NotNil(t, rec.ReservedOn)
		assert.Nil(t, rec.ReturnDate)

		catalog, err := env.library.ListCatalog(ctx)
		require.NoError(t, err)
		assert.False(t, catalog[2].Available)
	})

	t.Run("available title is refused", func(t *testing.T) {
		_, err := env.library.ReserveBook(ctx, "student", "Moby Dick")
		require.Error(t, err)
		assert.True(t, domainerrors.Is(err, domainerrors.ErrAvailable))
		assert.Equal(t, `"Moby Dick" is available. You can borrow it.`, err.Error())
	})

	t.Run("unknown title is not found", func(t *testing.T) {
		_, err := env.library.ReserveBook(ctx, "student", "Dune")
		assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
	})

	inv, err := env.library.Inventory(ctx, "student")
	require.NoError(t, err)
	assert.Len(t, inv, 1)
}

func TestLibraryService_AddBook(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	entry, index, err := env.library.AddBook(ctx, AddBookRequest{Title: "  Dune ", Author: "Frank Herbert", Genre: "Science Fiction"})
	require.NoError(t, err)
	assert.Equal(t, 4, index)
	assert.Equal(t, "Dune", entry.Title)
	assert.True(t, entry.Available)

	catalog, err := env.library.ListCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, catalog, 5)
	assert.Equal(t, entry, catalog[4])

	count, err := env.index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), count)
	assert.Equal(t, []sse.EventType{sse.EventBookAdded}, env.emitter.types())
}

func TestLibraryService_AddBook_Duplicate(t *testing.T) {
	env := setupTestEnv(t)

	_, _, err := env.library.AddBook(context.Background(), AddBookRequest{Title: "1984", Author: "George Orwell"})

	assert.True(t, domainerrors.Is(err, domainerrors.ErrAlreadyExists))
}

func TestLibraryService_AddBook_Validation(t *testing.T) {
	env := setupTestEnv(t)

	_, _, err := env.library.AddBook(context.Background(), AddBookRequest{Title: "   ", Author: "Anon"})

	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestLibraryService_RemoveBook(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	removed, err := env.library.RemoveBook(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "1984", removed.Title)

	catalog, err := env.library.ListCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, catalog, 3)
	assert.Equal(t, "To Kill a Mockingbird", catalog[1].Title)
	assert.Equal(t, []sse.EventType{sse.EventBookRemoved}, env.emitter.types())
}

func TestLibraryService_RemoveBook_OutOfRange(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	for _, index := range []int{-1, 4, 100} {
		_, err := env.library.RemoveBook(ctx, index)
		assert.True(t, domainerrors.Is(err, domainerrors.ErrOutOfRange), "index %d", index)
	}

	catalog, err := env.library.ListCatalog(ctx)
	require.NoError(t, err)
	assert.Len(t, catalog, 4)
}

func TestLibraryService_BorrowedLedger(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.library.BorrowBook(ctx, "zoe", "Moby Dick")
	require.NoError(t, err)
	_, err = env.library.BorrowBook(ctx, "adam", "1984")
	require.NoError(t, err)
	_, err = env.library.ReserveBook(ctx, "adam", "Moby Dick")
	require.NoError(t, err)
	_, err = env.library.BorrowBook(ctx, "adam", "The Great Gatsby")
	require.NoError(t, err)

	ledger, err := env.library.BorrowedLedger(ctx)
	require.NoError(t, err)

	got := make([]string, len(ledger))
	for i, e := range ledger {
		got[i] = e.Username + ":" + e.Record.Title
	}
	assert.Equal(t, []string{"adam:1984", "adam:The Great Gatsby", "zoe:Moby Dick"}, got)
}

func TestLibraryService_UsesStoredCatalog(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.store.UpdateLibrary(ctx, func(lib *store.Library) error {
		lib.Catalog = domain.Catalog{{Title: "Only", Author: "One", Available: true}}
		return nil
	}))
	raw, err := env.store.Raw(ctx, store.KeyBooks)
	require.NoError(t, err)
	require.Contains(t, string(raw), "Only")

	_, err = env.library.BorrowBook(ctx, "student", "Only")
	require.NoError(t, err)

	inv, err := env.library.Inventory(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, inv)
	assert.NotNil(t, inv)
}

func TestLibraryService_StoreFailureIsInternal(t *testing.T) {
	diskErr := errors.New("disk unavailable")
	st := store.New(failingKV{err: diskErr}, nil)
	svc := NewLibraryService(st, nil, nil, nil, nil, 0, nil)

	_, err := svc.ListCatalog(context.Background())

	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInternal))
	assert.ErrorIs(t, err, diskErr)

	var domainErr *domainerrors.Error
	require.True(t, domainerrors.As(err, &domainErr))
	assert.Equal(t, "load library", domainErr.Message)
}
