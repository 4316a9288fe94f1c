package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/san-kum/boilsim/internal/host"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	maxMessage = 4096

	commandTimeout = 5 * time.Second
)

// Message is the envelope pushed to clients.
type Message struct {
	Type     string         `json:"type"`
	Snapshot *host.Snapshot `json:"snapshot,omitempty"`
	Command  *host.Command  `json:"command,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// Hub fans the host's snapshots out to every connected client and feeds
// their commands back to the host.
type Hub struct {
	host   *host.Host
	logger *log.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	latest  *host.Snapshot
}

func NewHub(h *host.Host, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		host:    h,
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// Run broadcasts snapshots until ctx is cancelled. The host itself is run
// by the caller.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case s := <-h.host.Snapshots():
			h.broadcast(s)
		}
	}
}

// Latest returns the newest snapshot seen, if any.
func (h *Hub) Latest() (host.Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.latest == nil {
		return host.Snapshot{}, false
	}
	return *h.latest, true
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) broadcast(s host.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = &s
	for c := range h.clients {
		c.offer(s)
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	if h.latest != nil {
		c.offer(*h.latest)
	}
	h.logger.Info("client connected", "remote", c.conn.RemoteAddr(), "clients", len(h.clients))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.done)
	h.logger.Info("client disconnected", "remote", c.conn.RemoteAddr(), "clients", len(h.clients))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	for _, c := range clients {
		h.unregister(c)
	}
}

// client is one websocket connection. snapshots holds at most one unsent
// snapshot; replies to its own commands are queued separately.
type client struct {
	hub       *Hub
	conn      *websocket.Conn
	snapshots chan host.Snapshot
	replies   chan Message
	done      chan struct{}
}

func newClient(hub *Hub, conn *websocket.Conn) *client {
	return &client{
		hub:       hub,
		conn:      conn,
		snapshots: make(chan host.Snapshot, 1),
		replies:   make(chan Message, 16),
		done:      make(chan struct{}),
	}
}

// offer replaces any snapshot the client has not been sent yet.
func (c *client) offer(s host.Snapshot) {
	select {
	case c.snapshots <- s:
		return
	default:
	}
	select {
	case <-c.snapshots:
	default:
	}
	select {
	case c.snapshots <- s:
	default:
	}
}

func (c *client) reply(m Message) {
	select {
	case c.replies <- m:
	default:
		c.hub.logger.Warn("reply dropped, client too slow", "remote", c.conn.RemoteAddr())
	}
}

func (c *client) readPump(ctx context.Context) {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessage)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("read failed", "remote", c.conn.RemoteAddr(), "err", err)
			}
			return
		}
		c.handle(ctx, data)
	}
}

func (c *client) handle(ctx context.Context, data []byte) {
	var cmd host.Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		c.reply(Message{Type: "error", Error: err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	if err := c.hub.host.Send(ctx, cmd); err != nil {
		c.reply(Message{Type: "error", Command: &cmd, Error: err.Error()})
		return
	}
	c.reply(Message{Type: "ack", Command: &cmd})
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		var msg Message
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case m := <-c.replies:
			msg = m
		case s := <-c.snapshots:
			msg = Message{Type: "snapshot", Snapshot: &s}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			continue
		}

		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(msg); err != nil {
			if !errors.Is(err, websocket.ErrCloseSent) {
				c.hub.logger.Debug("write failed", "remote", c.conn.RemoteAddr(), "err", err)
			}
			return
		}
	}
}
