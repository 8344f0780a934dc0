package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/ikkim/replydesk-backend/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Dashboards only send pings; anything larger is a misbehaving client.
	maxMessageSize = 4 * 1024

	maxMessagesPerSecond = 10
)

// Conn wraps a gorilla websocket connection.
type Conn struct {
	*websocket.Conn
}

func (c *Conn) writeFrame(messageType int, data []byte) error {
	c.SetWriteDeadline(time.Now().Add(writeWait))
	return c.WriteMessage(messageType, data)
}

// closeWith sends a close frame. Errors are ignored; the socket is going away anyway.
func (c *Conn) closeWith(code int, reason string) {
	c.writeFrame(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
}

// allow counts an inbound message against the per-second budget.
func (c *Client) allow() (int, bool) {
	c.rateMu.Lock()
	defer c.rateMu.Unlock()

	now := time.Now()
	if now.Sub(c.lastResetTime) >= time.Second {
		c.messageCount = 0
		c.lastResetTime = now
	}
	c.messageCount++
	return c.messageCount, c.messageCount <= maxMessagesPerSecond
}

// ReadPump feeds inbound messages to the hub until the peer goes away.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.Warn("Realtime session read failed", map[string]interface{}{
					"user_id": c.UserID,
					"error":   err.Error(),
				})
			}
			return
		}

		if count, ok := c.allow(); !ok {
			logger.Warn("Realtime session over message budget", map[string]interface{}{
				"user_id": c.UserID,
				"count":   count,
			})
			continue
		}
		c.Hub.HandleClientMessage(c, message)
	}
}

// WritePump delivers queued events, one frame each, and pings idle sessions.
// A closed Send channel means the hub dropped the session or is shutting down.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			if !ok {
				c.Conn.closeWith(websocket.CloseGoingAway, "session closed")
				return
			}
			if err := c.drain(message); err != nil {
				logger.Warn("Realtime event delivery failed", map[string]interface{}{
					"user_id": c.UserID,
					"error":   err.Error(),
				})
				return
			}

		case <-ticker.C:
			if err := c.Conn.writeFrame(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// drain writes first and whatever else is already queued behind it.
func (c *Client) drain(first []byte) error {
	if err := c.Conn.writeFrame(websocket.TextMessage, first); err != nil {
		return err
	}
	for n := len(c.Send); n > 0; n-- {
		message, ok := <-c.Send
		if !ok {
			return nil
		}
		if err := c.Conn.writeFrame(websocket.TextMessage, message); err != nil {
			return err
		}
	}
	return nil
}
