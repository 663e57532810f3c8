// Package relay is the WebSocket chat relay. Clients join a chat room and
// every message they send is persisted and forwarded to the other clients
// in the same room. Presence is process-local and lost on restart.
package relay

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/database"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/metrics"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/models"
)

// Event types on the wire.
const (
	EventJoin    = "join"
	EventMessage = "message"
)

// Inbound is a client frame.
type Inbound struct {
	Type    string `json:"type"`
	UserID  string `json:"userId"`
	ChatID  string `json:"chatId"`
	Message string `json:"message"`
}

// Outbound is what room peers receive.
type Outbound struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	UserID    string `json:"userId"`
	Timestamp int64  `json:"timestamp"`
}

// Conn is the part of a WebSocket connection the hub writes to.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Client is one registered connection. Writes to it are serialized.
type Client struct {
	conn Conn
	wmu  sync.Mutex

	// guarded by Hub.mu
	userID string
	chatID string
	joined bool
}

func (c *Client) write(v any) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub is the connection registry.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}

	store database.Store
	log   zerolog.Logger
	now   func() time.Time
}

func NewHub(store database.Store, log zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		store:   store,
		log:     log,
		now:     time.Now,
	}
}

// Register adds a connected, not yet joined, client.
func (h *Hub) Register(conn Conn) *Client {
	c := &Client{conn: conn}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	metrics.RelayConnections.Inc()
	return c
}

// Unregister removes c. It is safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		metrics.RelayConnections.Dec()
	}
}

// Len is the number of registered connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Handle processes one raw frame from c.
func (h *Hub) Handle(ctx context.Context, c *Client, raw []byte) {
	var in Inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		h.log.Debug().Err(err).Msg("ignoring malformed frame")
		return
	}
	switch in.Type {
	case EventJoin:
		h.join(c, in)
	case EventMessage:
		h.message(ctx, c, in)
	default:
		h.log.Debug().Str("type", in.Type).Msg("ignoring unknown event")
	}
}

func (h *Hub) join(c *Client, in Inbound) {
	if in.UserID == "" || in.ChatID == "" {
		h.log.Debug().Msg("join without userId or chatId")
		return
	}
	h.mu.Lock()
	c.userID, c.chatID, c.joined = in.UserID, in.ChatID, true
	h.mu.Unlock()
	h.log.Info().Str("user_id", in.UserID).Str("chat_id", in.ChatID).Msg("client joined")
}

func (h *Hub) message(ctx context.Context, c *Client, in Inbound) {
	h.mu.RLock()
	joined, userID, chatID := c.joined, c.userID, c.chatID
	h.mu.RUnlock()
	if !joined {
		h.log.Debug().Msg("message before join ignored")
		return
	}
	if in.ChatID != "" {
		chatID = in.ChatID
	}
	if in.UserID != "" {
		userID = in.UserID
	}

	ts := h.now().UnixMilli()
	msg := &models.Message{ChatID: chatID, UserID: userID, Text: in.Message, Timestamp: ts}
	if err := h.store.AddMessage(ctx, msg); err != nil {
		metrics.RelayMessages.WithLabelValues("error").Inc()
		h.log.Error().Err(err).Str("chat_id", chatID).Msg("failed to persist relayed message")
	} else {
		metrics.RelayMessages.WithLabelValues("ok").Inc()
	}

	h.broadcast(c, chatID, Outbound{Type: EventMessage, Message: in.Message, UserID: userID, Timestamp: ts})
}

// broadcast sends out to every other client joined to chatID. Peers whose
// write fails are dropped.
func (h *Hub) broadcast(sender *Client, chatID string, out Outbound) {
	h.mu.RLock()
	peers := make([]*Client, 0, len(h.clients))
	for cl := range h.clients {
		if cl != sender && cl.joined && cl.chatID == chatID {
			peers = append(peers, cl)
		}
	}
	h.mu.RUnlock()

	for _, p := range peers {
		if err := p.write(out); err != nil {
			h.log.Warn().Err(err).Str("chat_id", chatID).Msg("dropping peer after write failure")
			h.Unregister(p)
			_ = p.conn.Close()
		}
	}
}
