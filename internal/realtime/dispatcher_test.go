package realtime

import (
	"testing"
	"time"
)

func TestDispatcherEnvelope(t *testing.T) {
	hub := newTestHub(t)
	at := time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)
	hub.Dispatcher().clock = func() time.Time { return at }

	c := authenticate(t, hub, "alice")
	recvFrames(t, c)

	delivered, err := hub.Dispatcher().SendToIdentity("alice", EventNotification, Payload{"message": "hi"})
	if err != nil || !delivered {
		t.Fatalf("SendToIdentity = (%v, %v)", delivered, err)
	}

	frames := recvFrames(t, c)
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	data := frames[0].Data
	if data["message"] != "hi" {
		t.Errorf("payload field lost: %v", data)
	}
	if data["serverId"] != "test-server" {
		t.Errorf("serverId = %v, want test-server", data["serverId"])
	}
	if int64(data["timestamp"].(float64)) != at.UnixMilli() {
		t.Errorf("timestamp = %v, want delivery time %d", data["timestamp"], at.UnixMilli())
	}
}

func TestDispatcherSendToIdentity(t *testing.T) {
	hub := newTestHub(t)

	delivered, err := hub.Dispatcher().SendToIdentity("ghost", EventNotification, Payload{"message": "x"})
	if err != nil {
		t.Fatalf("SendToIdentity: %v", err)
	}
	if delivered {
		t.Fatal("delivery to an offline identity must report false")
	}
}

func TestDispatcherSendToIdentities(t *testing.T) {
	hub := newTestHub(t)
	alice := authenticate(t, hub, "alice")
	bob := authenticate(t, hub, "bob")
	recvFrames(t, alice)
	recvFrames(t, bob)

	// One offline target does not block the others.
	count, err := hub.Dispatcher().SendToIdentities(
		[]string{"alice", "ghost", "bob"}, EventNotification, Payload{"message": "x"})
	if err != nil {
		t.Fatalf("SendToIdentities: %v", err)
	}
	if count != 2 {
		t.Fatalf("delivered = %d, want 2", count)
	}
	if len(recvFrames(t, alice)) != 1 || len(recvFrames(t, bob)) != 1 {
		t.Fatal("both online identities should receive the event")
	}
}

func TestDispatcherBroadcastAll(t *testing.T) {
	hub := newTestHub(t)
	alice := authenticate(t, hub, "alice")
	anon := connect(t, hub)
	recvFrames(t, alice)
	recvFrames(t, anon)

	current := hub.Registry().Metrics().CurrentConnections

	ok, err := hub.Dispatcher().BroadcastAll(EventSystemAnnouncement, Payload{"message": "maintenance"})
	if err != nil || !ok {
		t.Fatalf("BroadcastAll = (%v, %v)", ok, err)
	}

	// Delivery reaches every live connection, authenticated or not.
	total := len(recvFrames(t, alice)) + len(recvFrames(t, anon))
	if uint64(total) != current {
		t.Fatalf("broadcast reached %d targets, want %d", total, current)
	}
}

func TestDispatcherSendToRoom(t *testing.T) {
	hub := newTestHub(t)
	alice := authenticate(t, hub, "alice")
	bob := authenticate(t, hub, "bob")
	carol := authenticate(t, hub, "carol")
	hub.JoinRoom(alice.id, "lobby")
	hub.JoinRoom(bob.id, "lobby")
	recvFrames(t, alice)
	recvFrames(t, bob)
	recvFrames(t, carol)

	ok, err := hub.Dispatcher().SendToRoom("lobby", EventNotification, Payload{"message": "ping"})
	if err != nil || !ok {
		t.Fatalf("SendToRoom = (%v, %v)", ok, err)
	}

	if len(framesByEvent(recvFrames(t, alice), EventNotification)) != 1 {
		t.Error("alice is a lobby member and should receive ping")
	}
	if len(framesByEvent(recvFrames(t, bob), EventNotification)) != 1 {
		t.Error("bob is a lobby member and should receive ping")
	}
	if len(recvFrames(t, carol)) != 0 {
		t.Error("carol is not in lobby and must receive nothing")
	}

	t.Run("MissingRoomIsSuccessfulNoop", func(t *testing.T) {
		ok, err := hub.Dispatcher().SendToRoom("nowhere", EventNotification, Payload{})
		if err != nil || !ok {
			t.Fatalf("SendToRoom to missing room = (%v, %v), want (true, nil)", ok, err)
		}
	})
}

func TestDispatcherDropsOnFullQueue(t *testing.T) {
	hub := newTestHub(t)
	c := authenticate(t, hub, "alice")
	recvFrames(t, c)

	// Saturate the send queue; further deliveries are dropped, never blocked,
	// and the dispatch still reports the attempt.
	for i := 0; i < sendQueueSize; i++ {
		if !c.enqueue([]byte("{}")) {
			t.Fatalf("queue filled early at %d", i)
		}
	}
	delivered, err := hub.Dispatcher().SendToIdentity("alice", EventNotification, Payload{"message": "x"})
	if err != nil {
		t.Fatalf("SendToIdentity: %v", err)
	}
	if !delivered {
		t.Fatal("delivery was attempted and must report true")
	}
	if len(c.send) != sendQueueSize {
		t.Fatal("overflow frame must be dropped, not queued")
	}
}
