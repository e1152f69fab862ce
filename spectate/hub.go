// Package spectate streams episode frames to websocket viewers.
package spectate

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/game"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Message is the envelope for everything sent to viewers.
type Message struct {
	Type   string      `json:"type"` // "config" or "frame"
	Config *ViewConfig `json:"config,omitempty"`
	Frame  *game.Frame `json:"frame,omitempty"`
}

// ViewConfig tells a viewer how big the playfield is.
type ViewConfig struct {
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	GroundY float64 `json:"ground_y"`
	BirdX   float64 `json:"bird_x"`
}

// client is one connected viewer with its own bounded queue.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans frames out to every connected viewer. Slow viewers lose frames
// rather than stall the episode.
type Hub struct {
	view  ViewConfig
	every int
	size  int
	log   *slog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool

	dropped atomic.Uint64
}

// NewHub creates a hub for cfg's playfield.
func NewHub(cfg *config.Config, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		view: ViewConfig{
			Width:   cfg.Screen.Width,
			Height:  cfg.Screen.Height,
			GroundY: cfg.World.GroundY,
			BirdX:   cfg.World.BirdX,
		},
		every:   max(1, cfg.Spectate.EveryTicks),
		size:    max(1, cfg.Spectate.Buffer),
		log:     logger,
		clients: make(map[*client]struct{}),
	}
}

// Observer returns an episode observer publishing every Nth tick and the
// final frame of each episode.
func (h *Hub) Observer() game.Observer {
	return func(f game.Frame) {
		if f.Tick%h.every == 0 || f.State != game.Running {
			h.Publish(f)
		}
	}
}

// Publish sends a frame to every viewer without blocking.
func (h *Hub) Publish(f game.Frame) {
	data, err := json.Marshal(Message{Type: "frame", Frame: &f})
	if err != nil {
		h.log.Error("failed to marshal frame", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.dropped.Add(1)
		}
	}
}

// ServeHTTP upgrades the request and streams frames until the viewer leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, h.size)}

	hello, err := json.Marshal(Message{Type: "config", Config: &h.view})
	if err != nil {
		conn.Close()
		return
	}
	c.send <- hello

	if !h.register(c) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
		conn.Close()
		return
	}
	h.log.Debug("spectator joined", "remote", r.RemoteAddr)

	go h.writeLoop(c)

	// Viewers never send anything useful; reading detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.unregister(c)
	h.log.Debug("spectator left", "remote", r.RemoteAddr)
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.unregister(c)
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Clients returns the number of connected viewers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped returns how many frames were skipped for slow viewers.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Close disconnects every viewer and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
