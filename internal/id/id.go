// Package id generates identifiers: prefixed NanoIDs for notifications,
// SSE clients and token IDs, and time-ordered UUIDs for inventory records.
package id

import (
	"fmt"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes in use.
const (
	PrefixNotification = "ntf"
	PrefixClient       = "sse"
	PrefixToken        = "tok"
)

// Generate creates a prefixed unique ID, e.g. "ntf-V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// NewRecordID returns a UUIDv7 string. IDs sort by creation time, matching
// the chronological order of a user's inventory.
func NewRecordID() (string, error) {
	u, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate record id: %w", err)
	}
	return u.String(), nil
}
