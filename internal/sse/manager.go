package sse

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/listenupapp/catalog-server/internal/id"
)

// Client is a connected stream.
type Client struct {
	ID          string
	Username    string
	IsAdmin     bool
	ConnectedAt time.Time
	EventChan   chan Event
	Done        chan struct{}
}

// Manager fans events out to connected clients.
type Manager struct {
	mu      sync.RWMutex
	clients map[string]*Client
	events  chan Event
	logger  *slog.Logger
	wg      sync.WaitGroup

	shutdownMu sync.RWMutex
	shutdown   bool
}

// NewManager creates a new SSE Manager.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		clients: make(map[string]*Client),
		events:  make(chan Event, 256),
		logger:  logger,
	}
}

// Start runs the broadcast loop until ctx is done or Shutdown is called.
func (m *Manager) Start(ctx context.Context) {
	m.wg.Add(1)
	defer m.wg.Done()

	m.logger.Info("SSE manager starting")
	for {
		select {
		case event, ok := <-m.events:
			if !ok {
				return
			}
			m.broadcast(event)
		case <-ctx.Done():
			m.logger.Info("SSE manager stopping")
			m.closeAllClients()
			return
		}
	}
}

// Shutdown stops accepting events, delivers what is queued and closes every
// client.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.shutdownMu.Lock()
	if m.shutdown {
		m.shutdownMu.Unlock()
		return nil
	}
	m.shutdown = true
	close(m.events)
	m.shutdownMu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		// Start may not be running; drain whatever is left.
		for event := range m.events {
			m.broadcast(event)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		m.logger.Warn("SSE event drain timeout, some events may be lost")
	}
	m.closeAllClients()
	return nil
}

// Emit queues event for delivery. Events emitted after Shutdown, or while
// the queue is full, are dropped.
func (m *Manager) Emit(event Event) {
	m.shutdownMu.RLock()
	defer m.shutdownMu.RUnlock()
	if m.shutdown {
		return
	}

	select {
	case m.events <- event:
	default:
		m.logger.Error("SSE event channel full, dropping event",
			slog.String("event_type", string(event.Type)))
	}
}

// Connect registers a client for username.
func (m *Manager) Connect(username string, isAdmin bool) (*Client, error) {
	clientID, err := id.Generate(id.PrefixClient)
	if err != nil {
		return nil, err
	}

	client := &Client{
		ID:          clientID,
		Username:    username,
		IsAdmin:     isAdmin,
		ConnectedAt: time.Now(),
		EventChan:   make(chan Event, 32),
		Done:        make(chan struct{}),
	}

	m.mu.Lock()
	m.clients[client.ID] = client
	total := len(m.clients)
	m.mu.Unlock()

	m.logger.Info("SSE client connected",
		slog.String("client_id", clientID),
		slog.String("username", username),
		slog.Int("total_clients", total))
	return client, nil
}

// Disconnect removes a client and closes its channels.
func (m *Manager) Disconnect(clientID string) {
	m.mu.Lock()
	client, ok := m.clients[clientID]
	if !ok {
		m.mu.Unlock()
		return
	}
	delete(m.clients, clientID)
	total := len(m.clients)
	m.mu.Unlock()

	close(client.Done)
	close(client.EventChan)

	m.logger.Info("SSE client disconnected",
		slog.String("client_id", clientID),
		slog.Duration("duration", time.Since(client.ConnectedAt)),
		slog.Int("total_clients", total))
}

// ClientCount returns the number of connected clients.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

func (m *Manager) broadcast(event Event) {
	var delivered, filtered, dropped int

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, client := range m.clients {
		if event.Username != "" && !client.IsAdmin && client.Username != event.Username {
			filtered++
			continue
		}
		select {
		case client.EventChan <- event:
			delivered++
		default:
			dropped++
			m.logger.Warn("dropped event for slow client",
				slog.String("client_id", client.ID),
				slog.String("event_type", string(event.Type)))
		}
	}

	m.logger.Debug("event broadcast",
		slog.String("event_type", string(event.Type)),
		slog.Group("stats",
			slog.Int("delivered", delivered),
			slog.Int("filtered", filtered),
			slog.Int("dropped", dropped)))
}

func (m *Manager) closeAllClients() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, client := range m.clients {
		close(client.Done)
		close(client.EventChan)
	}
	m.clients = make(map[string]*Client)
}
