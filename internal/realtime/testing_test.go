package realtime

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// mockConn implements the Conn interface for tests without a live transport.
type mockConn struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
}

var errClosedConn = errors.New("connection closed")

func (m *mockConn) ReadMessage() (int, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, nil, errClosedConn
	}
	return 1, []byte(`{"action":"heartbeat"}`), nil
}

func (m *mockConn) WriteMessage(messageType int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errClosedConn
	}
	m.frames = append(m.frames, data)
	return nil
}

func (m *mockConn) SetReadLimit(int64)                {}
func (m *mockConn) SetReadDeadline(time.Time) error   { return nil }
func (m *mockConn) SetWriteDeadline(time.Time) error  { return nil }
func (m *mockConn) SetPongHandler(func(string) error) {}

func (m *mockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// frame is a decoded outbound wire frame.
type frame struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub("test-server", slog.Default())
	if err := hub.Start(); err != nil {
		t.Fatalf("hub.Start: %v", err)
	}
	t.Cleanup(hub.Stop)
	return hub
}

// connect registers an anonymous test connection without running pumps so
// tests can inspect the send queue directly.
func connect(t *testing.T, hub *Hub) *Client {
	t.Helper()
	return hub.Connect(&mockConn{})
}

// authenticate connects and authenticates a client in one step.
func authenticate(t *testing.T, hub *Hub, identity string) *Client {
	t.Helper()
	c := connect(t, hub)
	if err := hub.Authenticate(c.id, identity, SessionMeta{}); err != nil {
		t.Fatalf("Authenticate(%q): %v", identity, err)
	}
	return c
}

// recvFrames drains and decodes every frame queued on the client.
func recvFrames(t *testing.T, c *Client) []frame {
	t.Helper()
	var out []frame
	for {
		select {
		case raw := <-c.send:
			var f frame
			if err := json.Unmarshal(raw, &f); err != nil {
				t.Fatalf("decode frame %q: %v", raw, err)
			}
			out = append(out, f)
		default:
			return out
		}
	}
}

// framesByEvent filters decoded frames by event name.
func framesByEvent(frames []frame, event EventName) []frame {
	var out []frame
	for _, f := range frames {
		if f.Event == string(event) {
			out = append(out, f)
		}
	}
	return out
}
