package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	hub, _ := startCancelableHub(t)
	return hub
}

func startCancelableHub(t *testing.T) (*Hub, context.CancelFunc) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub, cancel
}

func dialUser(t *testing.T, hub *Hub, userID uuid.UUID) *websocket.Conn {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, &Conn{Conn: conn}, userID)
		hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	}))
	t.Cleanup(server.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.IsUserOnline(userID) }, time.Second, 10*time.Millisecond)
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(data, &event))
	return event
}

func TestHub_NotifyUser(t *testing.T) {
	hub := startHub(t)
	userID := uuid.New()
	conn := dialUser(t, hub, userID)

	hub.NotifyUser(userID, "review.analyzed", map[string]string{"review_id": "r-1"})

	event := readEvent(t, conn)
	assert.Equal(t, "review.analyzed", event.Type)
	assert.Equal(t, map[string]interface{}{"review_id": "r-1"}, event.Data)
}

func TestHub_NotifyOnlyTargetUser(t *testing.T) {
	hub := startHub(t)
	owner := uuid.New()
	other := uuid.New()
	ownerConn := dialUser(t, hub, owner)
	otherConn := dialUser(t, hub, other)

	hub.NotifyUser(owner, "reply.approved", nil)
	assert.Equal(t, "reply.approved", readEvent(t, ownerConn).Type)

	otherConn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err := otherConn.ReadMessage()
	assert.Error(t, err)
}

func TestHub_PingPong(t *testing.T) {
	hub := startHub(t)
	userID := uuid.New()
	conn := dialUser(t, hub, userID)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	assert.Equal(t, "pong", readEvent(t, conn).Type)
}

func TestHub_UnregisterOnClose(t *testing.T) {
	hub := startHub(t)
	userID := uuid.New()
	conn := dialUser(t, hub, userID)

	conn.Close()
	assert.Eventually(t, func() bool { return !hub.IsUserOnline(userID) }, 2*time.Second, 10*time.Millisecond)

	// Offline users are skipped silently.
	hub.NotifyUser(userID, "review.analyzed", nil)
}

func TestHub_ShutdownSendsGoingAway(t *testing.T) {
	hub, cancel := startCancelableHub(t)
	userID := uuid.New()
	conn := dialUser(t, hub, userID)

	cancel()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), err.Error())
}

func TestClient_MessageBudget(t *testing.T) {
	client := NewClient(NewHub(), nil, uuid.New())

	for i := 1; i <= maxMessagesPerSecond; i++ {
		count, ok := client.allow()
		assert.True(t, ok)
		assert.Equal(t, i, count)
	}
	_, ok := client.allow()
	assert.False(t, ok)

	client.lastResetTime = time.Now().Add(-time.Second)
	count, ok := client.allow()
	assert.True(t, ok)
	assert.Equal(t, 1, count)
}
