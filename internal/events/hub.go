package events

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const defaultWriteWait = 5 * time.Second

// Hub broadcasts events to connected WebSocket clients. A client may narrow
// the stream to one organization with ?organizationId=<uuid>.
type Hub struct {
	upgrader websocket.Upgrader
	log      logrus.FieldLogger

	mu      sync.RWMutex
	clients map[*websocket.Conn]uuid.UUID
}

func NewHub(log logrus.FieldLogger, allowedOrigins []string) *Hub {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin]
			},
		},
		log:     log.WithField("component", "hub"),
		clients: make(map[*websocket.Conn]uuid.UUID),
	}
}

func (h *Hub) Name() string { return "websocket" }

// ServeHTTP handles GET /ws.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var orgID uuid.UUID
	if raw := r.URL.Query().Get("organizationId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid organizationId", http.StatusBadRequest)
			return
		}
		orgID = parsed
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = orgID
	total := len(h.clients)
	h.mu.Unlock()
	h.log.WithField("clients", total).Info("WebSocket client connected")

	// Reads only detect disconnects; clients have nothing to say.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, conn)
	total = len(h.clients)
	h.mu.Unlock()
	h.log.WithField("clients", total).Info("WebSocket client disconnected")
}

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish writes the event to every matching client. Clients that fail the
// write are dropped. Only the dispatcher goroutine calls this, which keeps
// writes to each connection serialized.
func (h *Hub) Publish(ctx context.Context, event Event) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultWriteWait)
	}

	h.mu.RLock()
	targets := make([]*websocket.Conn, 0, len(h.clients))
	for conn, orgID := range h.clients {
		if orgID == uuid.Nil || orgID == event.OrganizationID {
			targets = append(targets, conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range targets {
		_ = conn.SetWriteDeadline(deadline)
		if err := conn.WriteJSON(event); err != nil {
			h.log.WithError(err).Debug("Dropping WebSocket client after failed write")
			conn.Close()
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
		}
	}
	return nil
}
