package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/sse"
	"github.com/listenupapp/catalog-server/internal/store"
)

func TestNotificationService_SweepOverdue(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	rec, err := env.library.BorrowBook(ctx, "student", "1984")
	require.NoError(t, err)
	_, err = env.library.ReserveBook(ctx, "student", "To Kill a Mockingbird")
	require.NoError(t, err)

	t.Run("nothing is due yet", func(t *testing.T) {
		env.notifications.now = func() time.Time { return testNow.Add(24 * time.Hour) }
		n, err := env.notifications.SweepOverdue(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("overdue loan is notified once", func(t *testing.T) {
		env.notifications.now = func() time.Time { return testNow.Add(8 * 24 * time.Hour) }

		n, err := env.notifications.SweepOverdue(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		n, err = env.notifications.SweepOverdue(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	notes, err := env.notifications.Notifications(ctx, "student")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, domain.NotificationOverdue, notes[0].Kind)
	assert.Equal(t, rec.ID, notes[0].RecordID)
	assert.Equal(t, "1984", notes[0].Title)
	assert.Contains(t, env.emitter.types(), sse.EventOverdue)
}

func TestNotificationService_Notifications_Empty(t *testing.T) {
	env := setupTestEnv(t)

	notes, err := env.notifications.Notifications(context.Background(), "nobody")

	require.NoError(t, err)
	assert.NotNil(t, notes)
	assert.Empty(t, notes)
}

func TestNotificationService_SweepOverdue_RecordsWithoutID(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	blob := `{"legacy":[
		{"title":"Moby Dick","status":"Borrowed","borrowedOn":"2025-02-01T10:00:00.000Z","returnDate":"2025-02-08T10:00:00.000Z"},
		{"title":"Moby Dick","status":"Borrowed","borrowedOn":"2025-02-03T10:00:00.000Z","returnDate":"2025-02-10T10:00:00.000Z"},
		{"title":"1984","status":"Reserved","reservedOn":"2025-02-01T10:00:00.000Z"}
	]}`
	require.NoError(t, env.kv.Update(ctx, func(txn store.Txn) error {
		return txn.Set(store.KeyUserInventory, []byte(blob))
	}))
	env.notifications.now = func() time.Time { return testNow }

	n, err := env.notifications.SweepOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = env.notifications.SweepOverdue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	notes, err := env.notifications.Notifications(ctx, "legacy")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "Moby Dick@2025-02-01T10:00:00Z", notes[0].RecordID)
	assert.Equal(t, "Moby Dick@2025-02-03T10:00:00Z", notes[1].RecordID)
}
