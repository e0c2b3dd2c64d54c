package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Outbound queue depth per connection
	sendQueueSize = 256
)

// Conn is the subset of *websocket.Conn the realtime layer touches. Tests
// substitute an in-memory implementation.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Client is one live transport connection, authenticated or not. Outbound
// delivery goes through a buffered send queue drained by the write pump, so
// no caller ever blocks on a slow peer.
type Client struct {
	id   string
	hub  *Hub
	conn Conn

	send chan []byte

	// identity is set by the registry once authenticated.
	identity atomic.Value // string

	closeOnce   sync.Once
	closing     chan struct{}
	closeReason atomic.Value // string
}

func newClient(hub *Hub, conn Conn) *Client {
	return &Client{
		id:      uuid.New().String(),
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, sendQueueSize),
		closing: make(chan struct{}),
	}
}

// ID returns the unique connection identifier.
func (c *Client) ID() string {
	return c.id
}

// Identity returns the bound identity, or "" while unauthenticated.
func (c *Client) Identity() string {
	if v := c.identity.Load(); v != nil {
		return v.(string)
	}
	return ""
}

func (c *Client) setIdentity(identity string) {
	c.identity.Store(identity)
}

// CloseReason returns the reason recorded when the connection was asked to
// close, or "" if no close was requested.
func (c *Client) CloseReason() string {
	if v := c.closeReason.Load(); v != nil {
		return v.(string)
	}
	return ""
}

// enqueue offers data to the send queue without blocking. A full queue or a
// closing connection drops the frame; delivery is best-effort by contract.
func (c *Client) enqueue(data []byte) bool {
	select {
	case <-c.closing:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// sendEvent envelopes and queues a single event for this connection only.
func (c *Client) sendEvent(event EventName, payload Payload) bool {
	return c.enqueue(c.hub.dispatcher.envelope(event, payload))
}

// closeWithReason asks the write pump to send a close frame carrying reason
// and tear the transport down. Safe to call from any goroutine, idempotent.
func (c *Client) closeWithReason(reason string) {
	c.closeOnce.Do(func() {
		c.closeReason.Store(reason)
		close(c.closing)
	})
}

// disconnectReason is the reason reported to the hub when the read pump
// exits: whatever close was requested, or a plain transport close.
func (c *Client) disconnectReason() string {
	if reason := c.CloseReason(); reason != "" {
		return reason
	}
	return ReasonTransportClose
}

// run starts the read and write pumps for a live transport.
func (c *Client) run() {
	go c.writePump()
	go c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Disconnect(c.id, c.disconnectReason())
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				slog.Error("websocket read error", "connectionId", c.id, "error", err)
			}
			return
		}
		c.route(message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				slog.Debug("websocket write failed", "connectionId", c.id, "error", err)
				return
			}

		case <-c.closing:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			frame := websocket.FormatCloseMessage(websocket.CloseNormalClosure, c.CloseReason())
			c.conn.WriteMessage(websocket.CloseMessage, frame)
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// route dispatches one inbound frame to the matching hub operation. Malformed
// frames are rejected to this connection only; the connection stays open and
// may retry.
func (c *Client) route(message []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.sendEvent(EventNotification, Payload{"level": "error", "message": "malformed message"})
		return
	}

	switch msg.Action {
	case actionAuthenticate:
		meta := SessionMeta{
			ClientVersion: msg.Metadata.ClientVersion,
			Extra:         msg.Metadata.Extra,
		}
		if err := c.hub.Authenticate(c.id, msg.Username, meta); err != nil {
			c.sendEvent(EventAuthError, Payload{"message": err.Error()})
		}

	case actionHeartbeat:
		c.hub.Heartbeat(c.id)

	case actionJoinRoom:
		if err := c.hub.JoinRoom(c.id, msg.Room); err != nil {
			c.sendEvent(EventNotification, Payload{"level": "error", "message": err.Error()})
		}

	case actionLeaveRoom:
		if err := c.hub.LeaveRoom(c.id, msg.Room); err != nil {
			c.sendEvent(EventNotification, Payload{"level": "error", "message": err.Error()})
		}

	case actionLogout:
		c.closeWithReason(ReasonLogout)

	default:
		c.sendEvent(EventNotification, Payload{"level": "error", "message": "unknown action"})
	}
}
