package scheduler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd_RejectsBadSpec(t *testing.T) {
	s := New(nil)

	err := s.Add("sweep", "not a cron spec", func(context.Context) error { return nil })

	assert.Error(t, err)
}

func TestAdd_ReplacesExisting(t *testing.T) {
	s := New(nil)
	noop := func(context.Context) error { return nil }

	require.NoError(t, s.Add("sweep", "@hourly", noop))
	require.NoError(t, s.Add("sweep", "@daily", noop))

	assert.Len(t, s.cron.Entries(), 1)
}

func TestNext(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Add("sweep", "@hourly", func(context.Context) error { return nil }))
	s.Start()
	defer func() { require.NoError(t, s.Stop(context.Background())) }()

	next, ok := s.Next("sweep")
	require.True(t, ok)
	assert.True(t, next.After(time.Now()))

	_, ok = s.Next("missing")
	assert.False(t, ok)
}

func TestRunNow(t *testing.T) {
	s := New(nil)
	var calls atomic.Int32
	require.NoError(t, s.Add("sweep", "@hourly", func(ctx context.Context) error {
		calls.Add(1)
		return ctx.Err()
	}))
	require.NoError(t, s.Add("failing", "@hourly", func(context.Context) error { return errors.New("boom") }))

	assert.True(t, s.RunNow("sweep"))
	assert.True(t, s.RunNow("failing"))
	assert.False(t, s.RunNow("missing"))

	require.NoError(t, s.Stop(context.Background()))
	assert.Equal(t, int32(1), calls.Load())
}

func TestRunNow_SkippedWhileRunning(t *testing.T) {
	var logs syncBuffer
	s := New(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))

	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	require.NoError(t, s.Add("sweep", "@hourly", func(context.Context) error {
		calls.Add(1)
		close(started)
		<-release
		return nil
	}))

	require.True(t, s.RunNow("sweep"))
	<-started
	require.True(t, s.RunNow("sweep"))
	require.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "cron: skip")
	}, time.Second, 5*time.Millisecond)

	close(release)
	require.NoError(t, s.Stop(context.Background()))
	assert.Equal(t, int32(1), calls.Load())
}

func TestStop_WaitsForRunNow(t *testing.T) {
	s := New(nil)
	var finished atomic.Bool
	require.NoError(t, s.Add("sweep", "@hourly", func(context.Context) error {
		time.Sleep(20 * time.Millisecond)
		finished.Store(true)
		return nil
	}))
	s.Start()

	require.True(t, s.RunNow("sweep"))
	require.NoError(t, s.Stop(context.Background()))

	assert.True(t, finished.Load())
}

func TestStop_RefusesLaterRuns(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Add("sweep", "@hourly", func(context.Context) error { return nil }))
	s.Start()

	require.NoError(t, s.Stop(context.Background()))

	assert.False(t, s.RunNow("sweep"))
}

func TestStop_CancelsRunningJob(t *testing.T) {
	s := New(nil)
	var seen atomic.Value
	require.NoError(t, s.Add("sweep", "@hourly", func(ctx context.Context) error {
		<-ctx.Done()
		seen.Store(ctx.Err())
		return nil
	}))

	require.True(t, s.RunNow("sweep"))
	require.NoError(t, s.Stop(context.Background()))

	assert.ErrorIs(t, seen.Load().(error), context.Canceled)
}

// syncBuffer is a bytes.Buffer safe for concurrent log writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
