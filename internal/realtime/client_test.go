package realtime

import "testing"

func TestClientRouteAuthenticate(t *testing.T) {
	hub := newTestHub(t)
	c := connect(t, hub)

	c.route([]byte(`{"action":"authenticate","username":"alice","metadata":{"clientVersion":"1.4","extra":{"theme":"dark"}}}`))

	if !hub.Registry().IsOnline("alice") {
		t.Fatal("alice should be online after wire authentication")
	}
	info, _ := hub.Registry().LookupByIdentity("alice")
	if info.Meta.ClientVersion != "1.4" {
		t.Fatalf("meta = %+v", info.Meta)
	}
	if info.Meta.Extra["theme"] != "dark" {
		t.Fatalf("extension field lost: %+v", info.Meta.Extra)
	}
}

func TestClientRouteAuthenticateMissingIdentity(t *testing.T) {
	hub := newTestHub(t)
	observer := connect(t, hub)
	c := connect(t, hub)

	c.route([]byte(`{"action":"authenticate"}`))

	// The rejection goes to the originating connection only; the connection
	// stays registered and unauthenticated.
	if got := framesByEvent(recvFrames(t, c), EventAuthError); len(got) != 1 {
		t.Fatalf("expected 1 authentication_error, got %d", len(got))
	}
	if got := recvFrames(t, observer); len(got) != 0 {
		t.Fatalf("observer must see nothing, got %v", got)
	}
	if _, ok := hub.Registry().Client(c.id); !ok {
		t.Fatal("connection must remain open for retry")
	}
}

func TestClientRouteMalformedFrame(t *testing.T) {
	hub := newTestHub(t)
	c := connect(t, hub)

	c.route([]byte(`{not json`))

	frames := framesByEvent(recvFrames(t, c), EventNotification)
	if len(frames) != 1 || frames[0].Data["level"] != "error" {
		t.Fatalf("malformed frame should produce one error notification, got %v", frames)
	}
}

func TestClientRouteRoomActions(t *testing.T) {
	hub := newTestHub(t)
	c := connect(t, hub)
	c.route([]byte(`{"action":"authenticate","username":"alice"}`))
	recvFrames(t, c)

	c.route([]byte(`{"action":"join_room","room":"lobby"}`))
	if !hub.Rooms().Contains("lobby", "alice") {
		t.Fatal("join_room action should add alice to lobby")
	}

	c.route([]byte(`{"action":"leave_room","room":"lobby"}`))
	if hub.Rooms().Contains("lobby", "alice") {
		t.Fatal("leave_room action should remove alice from lobby")
	}
}

func TestClientRouteLogout(t *testing.T) {
	hub := newTestHub(t)
	c := connect(t, hub)
	c.route([]byte(`{"action":"authenticate","username":"alice"}`))

	c.route([]byte(`{"action":"logout"}`))
	if c.CloseReason() != ReasonLogout {
		t.Fatalf("close reason = %q, want %q", c.CloseReason(), ReasonLogout)
	}
}
