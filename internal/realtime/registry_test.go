package realtime

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestRegistryClient(r *Registry) *Client {
	c := &Client{
		id:      uuid.New().String(),
		conn:    &mockConn{},
		send:    make(chan []byte, sendQueueSize),
		closing: make(chan struct{}),
	}
	r.Register(c)
	return c
}

func TestRegistryAuthenticate(t *testing.T) {
	t.Run("BindsIdentityToConnection", func(t *testing.T) {
		r := NewRegistry()
		c := newTestRegistryClient(r)

		info, released, superseded, err := r.Authenticate(c.id, "alice", SessionMeta{ClientVersion: "1.0"})
		if err != nil {
			t.Fatalf("Authenticate: %v", err)
		}
		if superseded != nil {
			t.Fatal("fresh authentication should not supersede anything")
		}
		if released != "" {
			t.Fatalf("fresh authentication should not release an identity, got %q", released)
		}
		if info.Identity != "alice" || info.ConnectionID != c.id {
			t.Fatalf("unexpected session info: %+v", info)
		}
		if info.ConnectedAt.IsZero() || info.LastSeen.IsZero() {
			t.Fatal("session timestamps must be set on authentication")
		}
		if !r.IsOnline("alice") {
			t.Fatal("alice should be online")
		}
		if identity, _ := r.LookupByConnection(c.id); identity != "alice" {
			t.Fatalf("LookupByConnection = %q, want alice", identity)
		}
	})

	t.Run("RejectsEmptyIdentity", func(t *testing.T) {
		r := NewRegistry()
		c := newTestRegistryClient(r)

		_, _, _, err := r.Authenticate(c.id, "", SessionMeta{})
		if !IsValidation(err) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if identity, ok := r.LookupByConnection(c.id); ok {
			t.Fatalf("no binding should exist after a rejected authentication, got %q", identity)
		}
	})

	t.Run("RejectsUnknownConnection", func(t *testing.T) {
		r := NewRegistry()
		_, _, _, err := r.Authenticate("nope", "alice", SessionMeta{})
		if !errors.Is(err, ErrUnknownConnection) {
			t.Fatalf("expected ErrUnknownConnection, got %v", err)
		}
	})

	t.Run("SupersedesPriorSession", func(t *testing.T) {
		r := NewRegistry()
		c1 := newTestRegistryClient(r)
		c2 := newTestRegistryClient(r)

		if _, _, _, err := r.Authenticate(c1.id, "alice", SessionMeta{}); err != nil {
			t.Fatalf("first Authenticate: %v", err)
		}
		info, _, superseded, err := r.Authenticate(c2.id, "alice", SessionMeta{})
		if err != nil {
			t.Fatalf("second Authenticate: %v", err)
		}
		if superseded != c1 {
			t.Fatalf("superseded = %v, want c1", superseded)
		}
		if info.ConnectionID != c2.id {
			t.Fatalf("session bound to %s, want %s", info.ConnectionID, c2.id)
		}
		// At most one connection per identity at any point in time.
		if _, ok := r.Client(c1.id); ok {
			t.Fatal("superseded connection must be removed from the registry")
		}
		if got := r.Metrics(); got.CurrentConnections != 1 {
			t.Fatalf("CurrentConnections = %d, want 1", got.CurrentConnections)
		}
	})

	t.Run("RebindsConnectionToNewIdentity", func(t *testing.T) {
		r := NewRegistry()
		c := newTestRegistryClient(r)

		if _, _, _, err := r.Authenticate(c.id, "alice", SessionMeta{}); err != nil {
			t.Fatalf("Authenticate alice: %v", err)
		}
		_, released, _, err := r.Authenticate(c.id, "bob", SessionMeta{})
		if err != nil {
			t.Fatalf("Authenticate bob: %v", err)
		}
		if released != "alice" {
			t.Fatalf("released identity = %q, want alice", released)
		}
		if r.IsOnline("alice") {
			t.Fatal("alice binding should be released on rebind")
		}
		if !r.IsOnline("bob") {
			t.Fatal("bob should be online")
		}
	})
}

func TestRegistryHeartbeat(t *testing.T) {
	r := NewRegistry()
	c := newTestRegistryClient(r)

	// Heartbeat from an unauthenticated connection is a no-op.
	r.Heartbeat(c.id)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r.clock = func() time.Time { return base }
	if _, _, _, err := r.Authenticate(c.id, "alice", SessionMeta{}); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	r.clock = func() time.Time { return base.Add(30 * time.Second) }
	r.Heartbeat(c.id)

	info, ok := r.LookupByIdentity("alice")
	if !ok {
		t.Fatal("alice session missing")
	}
	if !info.LastSeen.Equal(base.Add(30 * time.Second)) {
		t.Fatalf("LastSeen = %v, want %v", info.LastSeen, base.Add(30*time.Second))
	}
	if !info.ConnectedAt.Equal(base) {
		t.Fatalf("ConnectedAt = %v, want %v", info.ConnectedAt, base)
	}
}

func TestRegistryUnregister(t *testing.T) {
	t.Run("AuthenticatedConnectionFreesIdentity", func(t *testing.T) {
		r := NewRegistry()
		c := newTestRegistryClient(r)
		if _, _, _, err := r.Authenticate(c.id, "alice", SessionMeta{}); err != nil {
			t.Fatalf("Authenticate: %v", err)
		}

		identity, removed, ok := r.Unregister(c.id)
		if !ok || removed != c {
			t.Fatal("Unregister should remove the live connection")
		}
		if identity != "alice" {
			t.Fatalf("freed identity = %q, want alice", identity)
		}
		if r.IsOnline("alice") {
			t.Fatal("alice must be offline after unregister")
		}
	})

	t.Run("AnonymousConnectionFreesNothing", func(t *testing.T) {
		r := NewRegistry()
		c := newTestRegistryClient(r)

		identity, _, ok := r.Unregister(c.id)
		if !ok {
			t.Fatal("Unregister should find the connection")
		}
		if identity != "" {
			t.Fatalf("freed identity = %q, want empty", identity)
		}
	})

	t.Run("UnknownConnectionIsNoop", func(t *testing.T) {
		r := NewRegistry()
		if _, _, ok := r.Unregister("nope"); ok {
			t.Fatal("unknown connection should not unregister")
		}
	})
}

func TestRegistryMetrics(t *testing.T) {
	r := NewRegistry()
	c1 := newTestRegistryClient(r)
	c2 := newTestRegistryClient(r)
	newTestRegistryClient(r)

	if _, _, _, err := r.Authenticate(c1.id, "alice", SessionMeta{}); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	r.Unregister(c2.id)

	got := r.Metrics()
	if got.TotalConnections != 3 {
		t.Errorf("TotalConnections = %d, want 3", got.TotalConnections)
	}
	if got.CurrentConnections != 2 {
		t.Errorf("CurrentConnections = %d, want 2", got.CurrentConnections)
	}
	if got.TotalDisconnections != 1 {
		t.Errorf("TotalDisconnections = %d, want 1", got.TotalDisconnections)
	}
	if got.TotalConnections < got.CurrentConnections {
		t.Error("TotalConnections must never be below CurrentConnections")
	}
}

func TestRegistryOnlineIdentities(t *testing.T) {
	r := NewRegistry()
	c1 := newTestRegistryClient(r)
	c2 := newTestRegistryClient(r)
	newTestRegistryClient(r) // stays anonymous

	r.Authenticate(c1.id, "alice", SessionMeta{})
	r.Authenticate(c2.id, "bob", SessionMeta{})

	online := r.OnlineIdentities()
	if len(online) != 2 {
		t.Fatalf("OnlineIdentities = %v, want 2 entries", online)
	}
	seen := map[string]bool{}
	for _, id := range online {
		seen[id] = true
	}
	if !seen["alice"] || !seen["bob"] {
		t.Fatalf("OnlineIdentities = %v, want alice and bob", online)
	}
}
