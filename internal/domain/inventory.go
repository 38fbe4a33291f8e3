package domain

import "time"

// DefaultLoanPeriod is how long a borrowed book may be kept unless
// configured otherwise.
const DefaultLoanPeriod = 7 * 24 * time.Hour

// InventoryStatus is the kind of an inventory record.
type InventoryStatus string

const (
	// StatusBorrowed marks a checked-out book.
	StatusBorrowed InventoryStatus = "Borrowed"
	// StatusReserved marks a hold placed on an unavailable book.
	StatusReserved InventoryStatus = "Reserved"
)

// InventoryRecord is one borrow or reserve event. Records are appended to a
// user's history and never mutated afterwards.
type InventoryRecord struct {
	ID         string          `json:"id,omitempty"`
	Title      string          `json:"title"`
	Status     InventoryStatus `json:"status"`
	BorrowedOn *time.Time      `json:"borrowedOn,omitempty"`
	ReturnDate *time.Time      `json:"returnDate,omitempty"`
	ReservedOn *time.Time      `json:"reservedOn,omitempty"`
}

// NewBorrowRecord creates a Borrowed record due loan after now.
func NewBorrowRecord(id, title string, now time.Time, loan time.Duration) InventoryRecord {
	due := now.Add(loan)
	return InventoryRecord{
		ID:         id,
		Title:      title,
		Status:     StatusBorrowed,
		BorrowedOn: &now,
		ReturnDate: &due,
	}
}

// NewReserveRecord creates a Reserved record.
func NewReserveRecord(id, title string, now time.Time) InventoryRecord {
	return InventoryRecord{
		ID:         id,
		Title:      title,
		Status:     StatusReserved,
		ReservedOn: &now,
	}
}

// IsOverdue reports whether a Borrowed record is past its return date.
func (r InventoryRecord) IsOverdue(now time.Time) bool {
	return r.Status == StatusBorrowed && r.ReturnDate != nil && now.After(*r.ReturnDate)
}

// Key identifies the record across sweeps. Records stored without an ID are
// keyed by title and borrow time.
func (r InventoryRecord) Key() string {
	if r.ID != "" {
		return r.ID
	}
	if r.BorrowedOn == nil {
		return r.Title
	}
	return r.Title + "@" + r.BorrowedOn.UTC().Format(time.RFC3339Nano)
}

// UserInventory maps a username to that user's records in insertion order.
type UserInventory map[string][]InventoryRecord

// Append adds a record to the user's history.
func (inv UserInventory) Append(username string, rec InventoryRecord) {
	inv[username] = append(inv[username], rec)
}

// BorrowedEntry pairs a Borrowed record with its owner for the admin ledger.
type BorrowedEntry struct {
	Username string          `json:"username"`
	Record   InventoryRecord `json:"record"`
}
