package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/listenupapp/catalog-server/internal/auth"
	"github.com/listenupapp/catalog-server/internal/metrics"
	"github.com/listenupapp/catalog-server/internal/ratelimit"
	"github.com/listenupapp/catalog-server/internal/search"
	"github.com/listenupapp/catalog-server/internal/sse"
	"github.com/listenupapp/catalog-server/internal/store"
	"github.com/listenupapp/catalog-server/internal/validation"
)

var testNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

// recordingEmitter captures emitted events.
type recordingEmitter struct {
	mu     sync.Mutex
	events []sse.Event
}

func (r *recordingEmitter) Emit(e sse.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingEmitter) types() []sse.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sse.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

// failingKV fails every transaction with err.
type failingKV struct {
	err error
}

func (f failingKV) View(context.Context, func(store.Txn) error) error   { return f.err }
func (f failingKV) Update(context.Context, func(store.Txn) error) error { return f.err }
func (f failingKV) Close() error                                        { return nil }

type testEnv struct {
	kv            store.KV
	store         *store.Store
	index         *search.CatalogIndex
	metrics       *metrics.Metrics
	emitter       *recordingEmitter
	tokens        *auth.TokenService
	library       *LibraryService
	search        *SearchService
	recommend     *RecommendService
	auth          *AuthService
	notifications *NotificationService
}

// setupTestEnv creates every service over a temporary Badger store.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	kv, err := store.OpenBadger(t.TempDir())
	require.NoError(t, err)
	st := store.New(kv, nil)
	t.Cleanup(func() { _ = st.Close() })

	index, err := search.NewCatalogIndex(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	tokens, err := auth.NewTokenService(make([]byte, 32), time.Hour)
	require.NoError(t, err)

	limiter := ratelimit.PerMinute(60, 3, 0)
	t.Cleanup(limiter.Stop)

	hasher := auth.NewHasher(auth.HashParams{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	v := validation.New()
	m := metrics.New()
	emitter := &recordingEmitter{}

	env := &testEnv{
		kv:            kv,
		store:         st,
		index:         index,
		metrics:       m,
		emitter:       emitter,
		tokens:        tokens,
		library:       NewLibraryService(st, index, v, emitter, m, 0, nil),
		search:        NewSearchService(st, index, m, nil),
		recommend:     NewRecommendService(st, v, m, nil),
		auth:          NewAuthService(st, hasher, tokens, limiter, v, m, nil),
		notifications: NewNotificationService(st, emitter, m, nil),
	}
	env.library.now = func() time.Time { return testNow }
	env.auth.now = func() time.Time { return testNow }
	return env
}
