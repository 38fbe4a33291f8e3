package domain

import "time"

// NotificationKind classifies a notification.
type NotificationKind string

// NotificationOverdue is raised once for a borrowed book past its return date.
const NotificationOverdue NotificationKind = "overdue"

// Notification is a message for a user.
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	RecordID  string           `json:"record_id,omitempty"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"created_at"`
}

// Notifications maps a username to that user's notifications, oldest first.
type Notifications map[string][]Notification

// HasRecord reports whether username already has a notification of kind for
// the inventory record.
func (n Notifications) HasRecord(username string, kind NotificationKind, recordID string) bool {
	for _, existing := range n[username] {
		if existing.Kind == kind && existing.RecordID == recordID {
			return true
		}
	}
	return false
}
