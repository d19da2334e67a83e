// Package websocket pushes live events to the browser sessions of signed-in users.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrHubStopped is returned once the hub's Run loop has exited.
var ErrHubStopped = errors.New("websocket hub stopped")

// Event is one message pushed to a user's sessions.
type Event struct {
	Type      string      `json:"type"`
	UserID    int64       `json:"userId"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Options tune the hub and its connections.
type Options struct {
	// AllowedOrigins restricts browser origins. Empty allows any origin.
	AllowedOrigins []string
	// PingInterval is how often idle connections are pinged.
	PingInterval time.Duration
	// SendBuffer is the per-connection outbound queue length.
	SendBuffer int
}

// Hub tracks live connections per user and fans events out to them.
// All mutations of the client map happen on the Run goroutine.
type Hub struct {
	clients map[int64]map[*Client]struct{}

	broadcast  chan *Event
	register   chan *Client
	unregister chan *Client
	stopped    chan struct{}

	mu     sync.RWMutex
	opts   Options
	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger, opts Options) *Hub {
	if opts.PingInterval <= 0 {
		opts.PingInterval = defaultPingInterval
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 64
	}
	return &Hub{
		clients:    make(map[int64]map[*Client]struct{}),
		broadcast:  make(chan *Event),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stopped:    make(chan struct{}),
		opts:       opts,
		logger:     logger,
	}
}

// Run processes registrations and events until ctx is cancelled, then closes every
// connection. It must be started exactly once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			h.logger.Info().Msg("Notification hub stopped")
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

// Publish queues an event for every live session of event.UserID. Users without a live
// session simply miss the push.
func (h *Hub) Publish(ctx context.Context, event *Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case h.broadcast <- event:
		return nil
	case <-h.stopped:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ClientCount returns the number of live sessions of a user.
func (h *Hub) ClientCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.stopped:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stopped:
	}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.userID]; !ok {
		h.clients[c.userID] = make(map[*Client]struct{})
	}
	h.clients[c.userID][c] = struct{}{}

	h.logger.Debug().Int64("userID", c.userID).Str("addr", c.remoteAddr()).Msg("Client registered")
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

func (h *Hub) dropLocked(c *Client) {
	sessions, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := sessions[c]; !ok {
		return
	}
	delete(sessions, c)
	close(c.send)
	if len(sessions) == 0 {
		delete(h.clients, c.userID)
	}
	h.logger.Debug().Int64("userID", c.userID).Msg("Client unregistered")
}

func (h *Hub) deliver(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Int64("userID", event.UserID).Msg("Failed to marshal event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients[event.UserID] {
		select {
		case c.send <- data:
		default:
			// Queue full: the session is too slow, drop it.
			h.logger.Warn().Int64("userID", event.UserID).Msg("Dropping slow websocket client")
			h.dropLocked(c)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sessions := range h.clients {
		for c := range sessions {
			h.dropLocked(c)
		}
	}
}
