package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/olyamironova/artist-exchange/internal/domain"
	"github.com/olyamironova/artist-exchange/internal/logger"
	"github.com/olyamironova/artist-exchange/internal/port"
)

const (
	DefaultHeartbeat = 30 * time.Second

	writeWait     = 5 * time.Second
	outBufferSize = 128
	maxFrameSize  = 4096
	snapshotDepth = 20
)

// Client actions.
const (
	ActionSubscribe   = "SUBSCRIBE"
	ActionUnsubscribe = "UNSUBSCRIBE"
)

// Server messages that are not market events.
const (
	EventSubscribed   domain.EventType = "subscribed"
	EventUnsubscribed domain.EventType = "unsubscribed"
	EventSnapshot     domain.EventType = "orderbook_snapshot"
	EventHeartbeat    domain.EventType = "heartbeat"
	EventError        domain.EventType = "error"
)

var _ port.NotificationGateway = (*Hub)(nil)

// Source provides the initial state sent right after a subscription.
type Source interface {
	ReferencePrice(instrumentID string) (domain.PriceTick, bool)
	Snapshot(instrumentID string, depth int) domain.OrderbookSnapshot
}

// Request is a message sent by a client.
type Request struct {
	Type    string `json:"type"`
	Channel string `json:"channel"`
}

// Hub keeps the live websocket clients and fans market events out to those
// subscribed to the event's channel. Slow clients are disconnected rather
// than allowed to stall the publisher.
type Hub struct {
	log       *logger.Logger
	source    Source
	heartbeat time.Duration
	upgrader  websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
}

func NewHub(source Source, log *logger.Logger, heartbeat time.Duration) *Hub {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	return &Hub{
		log:       log,
		source:    source,
		heartbeat: heartbeat,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// SetSource replaces the initial-state source. Call it before serving.
func (h *Hub) SetSource(source Source) {
	h.source = source
}

type client struct {
	hub     *Hub
	conn    *websocket.Conn
	ownerID string
	send    chan []byte
	done    chan struct{}
	once    sync.Once

	mu   sync.Mutex
	subs map[string]struct{}
}

// ServeHTTP upgrades the request and serves the connection until it closes.
// The owner id, from the X-Owner-ID header or the owner_id query parameter,
// decides which user channel the client may join.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", logger.NewField("error", err.Error()))
		return
	}
	owner := r.Header.Get("X-Owner-ID")
	if owner == "" {
		owner = r.URL.Query().Get("owner_id")
	}
	c := &client{
		hub:     h,
		conn:    conn,
		ownerID: owner,
		send:    make(chan []byte, outBufferSize),
		done:    make(chan struct{}),
		subs:    make(map[string]struct{}),
	}
	if !h.register(c) {
		_ = conn.Close()
		return
	}
	h.log.Debug("websocket connected", logger.NewField("remote", r.RemoteAddr), logger.NewField("owner_id", owner))

	go c.writeLoop()
	c.readLoop()
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
	delete(h.clients, c)
	h.mu.Unlock()
}

// Clients is the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.hub.unregister(c)
		_ = c.conn.Close()
	})
}

func (c *client) readLoop() {
	defer c.close()
	c.conn.SetReadLimit(maxFrameSize)
	wait := 2 * c.hub.heartbeat
	_ = c.conn.SetReadDeadline(time.Now().Add(wait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(wait))
		var req Request
		if err := json.Unmarshal(msg, &req); err != nil {
			c.reply(EventError, "", "invalid message format")
			continue
		}
		c.handle(req)
	}
}

func (c *client) handle(req Request) {
	switch strings.ToUpper(req.Type) {
	case ActionSubscribe:
		if reason := c.authorize(req.Channel); reason != "" {
			c.reply(EventError, req.Channel, reason)
			return
		}
		c.mu.Lock()
		c.subs[req.Channel] = struct{}{}
		c.mu.Unlock()
		c.reply(EventSubscribed, req.Channel, nil)
		c.initial(req.Channel)
	case ActionUnsubscribe:
		c.mu.Lock()
		delete(c.subs, req.Channel)
		c.mu.Unlock()
		c.reply(EventUnsubscribed, req.Channel, nil)
	default:
		c.reply(EventError, req.Channel, "unknown message type")
	}
}

// authorize returns a reason when the client may not join channel.
func (c *client) authorize(channel string) string {
	kind, id, ok := strings.Cut(channel, ":")
	if !ok || id == "" {
		return "unknown channel"
	}
	switch kind + ":" {
	case domain.PriceChannel(""), domain.OrderbookChannel(""):
		return ""
	case domain.UserChannel(""):
		if c.ownerID == "" || id != c.ownerID {
			return "user channel requires matching owner id"
		}
		return ""
	}
	return "unknown channel"
}

func (c *client) initial(channel string) {
	src := c.hub.source
	if src == nil {
		return
	}
	kind, id, _ := strings.Cut(channel, ":")
	switch kind + ":" {
	case domain.PriceChannel(""):
		if tick, ok := src.ReferencePrice(id); ok {
			c.reply(domain.EventPriceTick, channel, tick)
		}
	case domain.OrderbookChannel(""):
		c.reply(EventSnapshot, channel, src.Snapshot(id, snapshotDepth))
	}
}

func (c *client) reply(typ domain.EventType, channel string, data any) {
	b, err := json.Marshal(domain.Event{Type: typ, Channel: channel, Data: data})
	if err != nil {
		return
	}
	c.enqueue(b)
}

// enqueue never blocks; a client whose buffer is full is dropped.
func (c *client) enqueue(b []byte) {
	select {
	case <-c.done:
	case c.send <- b:
	default:
		c.hub.log.Warn("websocket client too slow, disconnecting", logger.NewField("owner_id", c.ownerID))
		c.close()
	}
}

func (c *client) subscribed(channel string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.subs[channel]
	return ok
}

func (c *client) writeLoop() {
	ticker := time.NewTicker(c.hub.heartbeat)
	defer ticker.Stop()
	heartbeat, _ := json.Marshal(domain.Event{Type: EventHeartbeat})

	write := func(b []byte) bool {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		return c.conn.WriteMessage(websocket.TextMessage, b) == nil
	}
	for {
		select {
		case <-c.done:
			return
		case b := <-c.send:
			if !write(b) {
				c.close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil || !write(heartbeat) {
				c.close()
				return
			}
		}
	}
}

func (h *Hub) broadcast(typ domain.EventType, channel string, data any) error {
	b, err := json.Marshal(domain.Event{Type: typ, Channel: channel, Data: data})
	if err != nil {
		return err
	}
	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		if c.subscribed(channel) {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.enqueue(b)
	}
	return nil
}

func (h *Hub) PublishOrderbookDelta(ctx context.Context, instrumentID string, delta domain.OrderbookDelta) error {
	return h.broadcast(domain.EventOrderbookDelta, domain.OrderbookChannel(instrumentID), delta)
}

func (h *Hub) PublishTrade(ctx context.Context, userID string, fill domain.Fill) error {
	return h.broadcast(domain.EventTrade, domain.UserChannel(userID), fill)
}

func (h *Hub) PublishPriceTick(ctx context.Context, tick domain.PriceTick) error {
	return h.broadcast(domain.EventPriceTick, domain.PriceChannel(tick.InstrumentID), tick)
}

func (h *Hub) PublishOrderUpdate(ctx context.Context, userID string, update domain.OrderUpdate) error {
	return h.broadcast(domain.EventOrderUpdate, domain.UserChannel(userID), update)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		c.close()
	}
}
