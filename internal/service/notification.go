package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/id"
	"github.com/listenupapp/catalog-server/internal/metrics"
	"github.com/listenupapp/catalog-server/internal/sse"
	"github.com/listenupapp/catalog-server/internal/store"
)

// NotificationService raises and lists user notifications.
type NotificationService struct {
	store   *store.Store
	emitter Emitter
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     clock
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(st *store.Store, emitter Emitter, m *metrics.Metrics, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		store:   st,
		emitter: orNoop(emitter),
		metrics: m,
		logger:  orDiscard(logger),
		now:     time.Now,
	}
}

type pendingEvent struct {
	username     string
	notification domain.Notification
}

// SweepOverdue adds one overdue notification for every Borrowed record past
// its return date that has not been notified yet. It returns how many were
// created.
func (s *NotificationService) SweepOverdue(ctx context.Context) (int, error) {
	now := s.now()

	var created []pendingEvent
	err := s.store.UpdateNotifications(ctx, func(inventory domain.UserInventory, notes domain.Notifications) error {
		created = created[:0]
		for username, records := range inventory {
			for _, rec := range records {
				if !rec.IsOverdue(now) {
					continue
				}
				if notes.HasRecord(username, domain.NotificationOverdue, rec.Key()) {
					continue
				}
				noteID, err := id.Generate(id.PrefixNotification)
				if err != nil {
					return fmt.Errorf("generate notification ID: %w", err)
				}
				n := domain.Notification{
					ID:        noteID,
					Kind:      domain.NotificationOverdue,
					RecordID:  rec.Key(),
					Title:     rec.Title,
					Message:   fmt.Sprintf("%q was due on %s.", rec.Title, rec.ReturnDate.Format(time.DateOnly)),
					CreatedAt: now,
				}
				notes[username] = append(notes[username], n)
				created = append(created, pendingEvent{username: username, notification: n})
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("sweep overdue: %w", err)
	}

	for _, p := range created {
		s.emitter.Emit(sse.NewOverdueEvent(p.username, p.notification))
	}
	s.metrics.RecordOverdue(len(created))
	if len(created) > 0 {
		s.logger.Info("overdue notifications created", slog.Int("count", len(created)))
	}
	return len(created), nil
}

// Notifications returns username's notifications, oldest first.
func (s *NotificationService) Notifications(ctx context.Context, username string) ([]domain.Notification, error) {
	notes, err := s.store.Notifications(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load notifications: %w", err)
	}
	return notes, nil
}
