package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/replydesk-backend/internal/monitoring"
	"github.com/ikkim/replydesk-backend/pkg/logger"
)

const sendBufferSize = 256

// Event is the envelope pushed to dashboard sessions.
type Event struct {
	Type   string      `json:"type"`
	Data   interface{} `json:"data,omitempty"`
	SentAt time.Time   `json:"sent_at"`
}

// ClientMessage is a message received from a dashboard session.
type ClientMessage struct {
	Type string `json:"type"` // ping
}

// Client is one websocket session of a user.
type Client struct {
	Hub    *Hub
	Conn   *Conn
	UserID uuid.UUID
	Send   chan []byte

	rateMu        sync.Mutex
	messageCount  int
	lastResetTime time.Time
}

// NewClient creates a session with a buffered send queue.
func NewClient(hub *Hub, conn *Conn, userID uuid.UUID) *Client {
	return &Client{
		Hub:           hub,
		Conn:          conn,
		UserID:        userID,
		Send:          make(chan []byte, sendBufferSize),
		lastResetTime: time.Now(),
	}
}

type delivery struct {
	userID  uuid.UUID
	message []byte
}

// Hub tracks sessions per user. A user may have several devices connected.
type Hub struct {
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client
	deliver    chan *delivery

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		deliver:    make(chan *delivery, 1024),
	}
}

// Run processes registrations and deliveries until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			sessions := len(h.clients[client.UserID])
			h.mu.Unlock()
			monitoring.WebsocketConnections.Inc()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"user_id":        client.UserID,
				"total_sessions": sessions,
			})

		case client := <-h.unregister:
			h.remove(client)

		case d := <-h.deliver:
			h.mu.RLock()
			for _, client := range h.clients[d.userID] {
				select {
				case client.Send <- d.message:
				default:
					go h.Unregister(client)
					logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
						"user_id": d.userID,
					})
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	list, ok := h.clients[client.UserID]
	if !ok {
		return
	}

	remaining := make([]*Client, 0, len(list))
	found := false
	for _, c := range list {
		if c == client {
			found = true
			continue
		}
		remaining = append(remaining, c)
	}
	if !found {
		return
	}

	if len(remaining) == 0 {
		delete(h.clients, client.UserID)
	} else {
		h.clients[client.UserID] = remaining
	}
	close(client.Send)
	monitoring.WebsocketConnections.Dec()

	logger.Info("WebSocket client unregistered", map[string]interface{}{
		"user_id":            client.UserID,
		"remaining_sessions": len(remaining),
	})
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, list := range h.clients {
		for _, c := range list {
			close(c.Send)
			monitoring.WebsocketConnections.Dec()
		}
		delete(h.clients, userID)
	}
}

// NotifyUser pushes an event to every session of userID. Events for offline users are dropped.
func (h *Hub) NotifyUser(userID uuid.UUID, eventType string, payload interface{}) {
	if !h.IsUserOnline(userID) {
		return
	}

	data, err := json.Marshal(Event{Type: eventType, Data: payload, SentAt: time.Now().UTC()})
	if err != nil {
		logger.Error("Failed to marshal event", err, map[string]interface{}{
			"type": eventType,
		})
		return
	}

	select {
	case h.deliver <- &delivery{userID: userID, message: data}:
	default:
		logger.Warn("Delivery channel full, event dropped", map[string]interface{}{
			"user_id": userID,
			"type":    eventType,
		})
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) IsUserOnline(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// HandleClientMessage answers pings and ignores anything else.
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse client message", map[string]interface{}{
			"user_id": client.UserID,
			"error":   err.Error(),
		})
		return
	}

	if msg.Type == "ping" {
		h.NotifyUser(client.UserID, "pong", nil)
	}
}
