// Package sse streams catalog changes to connected clients as Server-Sent Events.
package sse

import (
	"time"

	"github.com/listenupapp/catalog-server/internal/domain"
)

// EventType names an SSE event.
type EventType string

const (
	// EventBookAdded is sent to everyone when a book joins the catalog.
	EventBookAdded EventType = "catalog.book_added"
	// EventBookRemoved is sent to everyone when a book leaves the catalog.
	EventBookRemoved EventType = "catalog.book_removed"

	// Owner and admins only.
	EventBorrowed EventType = "inventory.borrowed"
	EventReserved EventType = "inventory.reserved"
	EventOverdue  EventType = "notification.overdue"

	// EventHeartbeat keeps idle connections open.
	EventHeartbeat EventType = "heartbeat"
)

// Event is one message on the stream. Username, when set, restricts delivery
// to that user and to admins.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Username  string    `json:"-"`
}

// CatalogEventData is the payload of catalog events.
type CatalogEventData struct {
	Index int                 `json:"index"`
	Entry domain.CatalogEntry `json:"entry"`
}

// InventoryEventData is the payload of inventory events.
type InventoryEventData struct {
	Username string                 `json:"username"`
	Record   domain.InventoryRecord `json:"record"`
}

// NotificationEventData is the payload of notification events.
type NotificationEventData struct {
	Username     string              `json:"username"`
	Notification domain.Notification `json:"notification"`
}

// NewBookAddedEvent announces a new catalog entry at index.
func NewBookAddedEvent(index int, entry domain.CatalogEntry) Event {
	return Event{Type: EventBookAdded, Timestamp: time.Now(), Data: CatalogEventData{Index: index, Entry: entry}}
}

// NewBookRemovedEvent announces the removal of the entry that was at index.
func NewBookRemovedEvent(index int, entry domain.CatalogEntry) Event {
	return Event{Type: EventBookRemoved, Timestamp: time.Now(), Data: CatalogEventData{Index: index, Entry: entry}}
}

// NewInventoryEvent announces a borrow or reserve by username.
func NewInventoryEvent(username string, rec domain.InventoryRecord) Event {
	t := EventBorrowed
	if rec.Status == domain.StatusReserved {
		t = EventReserved
	}
	return Event{
		Type:      t,
		Timestamp: time.Now(),
		Data:      InventoryEventData{Username: username, Record: rec},
		Username:  username,
	}
}

// NewOverdueEvent announces an overdue notification for username.
func NewOverdueEvent(username string, n domain.Notification) Event {
	return Event{
		Type:      EventOverdue,
		Timestamp: time.Now(),
		Data:      NotificationEventData{Username: username, Notification: n},
		Username:  username,
	}
}

// NewHeartbeatEvent creates a keepalive event.
func NewHeartbeatEvent() Event {
	return Event{Type: EventHeartbeat, Timestamp: time.Now(), Data: struct{}{}}
}
