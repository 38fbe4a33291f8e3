package sse

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// Identity is the authenticated caller of a stream.
type Identity struct {
	Username string
	IsAdmin  bool
}

// IdentifyFunc authenticates a stream request.
type IdentifyFunc func(r *http.Request) (Identity, bool)

// Handler serves GET /api/v1/events.
type Handler struct {
	manager   *Manager
	identify  IdentifyFunc
	logger    *slog.Logger
	heartbeat time.Duration
}

// NewHandler creates a new SSE Handler.
func NewHandler(manager *Manager, identify IdentifyFunc, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		manager:   manager,
		identify:  identify,
		logger:    logger,
		heartbeat: 30 * time.Second,
	}
}

// ServeHTTP streams events until the client goes away or the manager closes
// the connection.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	who, ok := h.identify(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		h.logger.Error("failed to flush headers", slog.String("error", err.Error()))
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	client, err := h.manager.Connect(who.Username, who.IsAdmin)
	if err != nil {
		h.logger.Error("failed to register SSE client", slog.String("error", err.Error()))
		http.Error(w, "Failed to establish connection", http.StatusInternalServerError)
		return
	}
	defer h.manager.Disconnect(client.ID)

	log := h.logger.With(slog.String("client_id", client.ID))

	if err := h.send(w, rc, "connected", map[string]string{"client_id": client.ID}); err != nil {
		log.Warn("failed to send initial connection message", slog.String("error", err.Error()))
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-client.EventChan:
			if !ok {
				return
			}
			if err := h.send(w, rc, string(event.Type), event); err != nil {
				log.Info("client disconnected during send")
				return
			}
		case <-ticker.C:
			hb := NewHeartbeatEvent()
			if err := h.send(w, rc, string(hb.Type), hb); err != nil {
				log.Info("client disconnected during heartbeat")
				return
			}
		case <-client.Done:
			return
		case <-r.Context().Done():
			return
		}
	}
}

// send writes one event in text/event-stream framing and flushes it.
func (h *Handler) send(w http.ResponseWriter, rc *http.ResponseController, eventType string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, payload); err != nil {
		return err
	}
	if err := rc.Flush(); err != nil {
		return err
	}
	if err := rc.SetWriteDeadline(time.Now().Add(2 * h.heartbeat)); err != nil {
		h.logger.Debug("failed to set write deadline", slog.String("error", err.Error()))
	}
	return nil
}
