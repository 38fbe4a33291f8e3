// Package service implements the catalog operations on top of the store.
// Every mutating call runs one load, mutate, persist cycle in a single store
// transaction and publishes the resulting event after the commit.
package service

import (
	"log/slog"
	"time"

	"github.com/listenupapp/catalog-server/internal/sse"
)

// Emitter publishes events to connected clients.
type Emitter interface {
	Emit(event sse.Event)
}

// NoopEmitter discards events.
type NoopEmitter struct{}

// Emit implements Emitter.
func (NoopEmitter) Emit(sse.Event) {}

// NewNoopEmitter returns an Emitter that discards events.
func NewNoopEmitter() Emitter {
	return NoopEmitter{}
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}

func orNoop(emitter Emitter) Emitter {
	if emitter == nil {
		return NoopEmitter{}
	}
	return emitter
}

// clock is swapped in tests.
type clock func() time.Time
