// Package spectate lets other people watch running games: a JSON API over
// the live sessions and shared leaderboard, PNG frames, and a websocket
// stream of snapshots.
package spectate

import (
	"encoding/json"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/nird-snake/internal/games/snake"
	"github.com/vovakirdan/nird-snake/internal/metrics"
)

const (
	// MaxClients caps concurrent spectator websockets.
	MaxClients = 200

	sendBuffer = 32
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Message is the websocket envelope.
type Message struct {
	Event   string          `json:"event"` // "snapshot" or "closed"
	Session string          `json:"session"`
	Data    *snake.Snapshot `json:"data,omitempty"`
}

// SessionInfo is the latest state of one live game.
type SessionInfo struct {
	ID        string         `json:"id"`
	UpdatedAt time.Time      `json:"updated_at"`
	State     snake.Snapshot `json:"state"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks live sessions and fans snapshots out to spectators.
// Publish and Remove never block on slow spectators; a client whose buffer
// is full is dropped.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]SessionInfo
	clients  map[*client]struct{}
	closed   bool

	upgrader websocket.Upgrader
	metrics  *metrics.Metrics
	logger   *log.Logger
	now      func() time.Time
}

// NewHub returns a hub accepting websocket origins in allowed ("*" for any).
func NewHub(allowed []string, m *metrics.Metrics, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	h := &Hub{
		sessions: make(map[string]SessionInfo),
		clients:  make(map[*client]struct{}),
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(allowed, r.Header.Get("Origin"))
		},
	}
	return h
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return true // non-browser client
	}
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}

// Publish stores the latest snapshot of session id and broadcasts it.
func (h *Hub) Publish(id string, snap snake.Snapshot) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.sessions[id] = SessionInfo{ID: id, UpdatedAt: h.now(), State: snap}
	h.mu.Unlock()

	h.broadcast(Message{Event: "snapshot", Session: id, Data: &snap})
}

// Remove forgets session id and tells spectators it closed.
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	_, ok := h.sessions[id]
	delete(h.sessions, id)
	h.mu.Unlock()

	if ok {
		h.broadcast(Message{Event: "closed", Session: id})
	}
}

// Sessions returns every live session ordered by id.
func (h *Hub) Sessions() []SessionInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]SessionInfo, 0, len(h.sessions))
	for _, s := range h.sessions {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b SessionInfo) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// Session returns one live session.
func (h *Hub) Session(id string) (SessionInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[id]
	return s, ok
}

// ClientCount returns the number of connected spectators.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("encode spectator message", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.dropLocked(c)
		}
	}
}

// dropLocked unregisters c. The caller holds h.mu.
func (h *Hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.metrics.SpectatorDisconnected()
}

// ServeWS upgrades the request and streams messages until the peer leaves.
// The current sessions are sent first so a new spectator sees every game.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	full := len(h.clients) >= MaxClients || h.closed
	h.mu.RUnlock()
	if full {
		http.Error(w, "Too many spectators", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	for _, s := range h.Sessions() {
		snap := s.State
		if data, err := json.Marshal(Message{Event: "snapshot", Session: s.ID, Data: &snap}); err == nil {
			c.send <- data
			if len(c.send) == cap(c.send) {
				break
			}
		}
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.metrics.SpectatorConnected()
	h.logger.Debug("spectator connected", "remote", ClientIP(r))

	go h.writePump(c)
	h.readPump(c)
}

// readPump discards inbound frames and unregisters the client on error.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.mu.Lock()
		h.dropLocked(c)
		h.mu.Unlock()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close disconnects every spectator and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.dropLocked(c)
	}
}
