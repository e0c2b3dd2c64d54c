package realtime

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// privateRoomPrefix scopes the implicit per-identity room used for direct
// messaging.
const privateRoomPrefix = "user:"

// PrivateRoom returns the implicit room scoped to one identity.
func PrivateRoom(identity string) string {
	return privateRoomPrefix + identity
}

// Lifecycle event payloads delivered to registered hooks.
type (
	ConnectedEvent struct {
		ConnectionID string
	}
	AuthenticatedEvent struct {
		Identity string
		Meta     SessionMeta
	}
	DisconnectedEvent struct {
		Identity string
		Reason   string
	}
	RoomEvent struct {
		Identity string
		Room     string
	}
)

// hooks is the finite set of lifecycle callbacks external business logic can
// register. Each kind has a fixed payload shape; there is no string-keyed
// event bus.
type hooks struct {
	mu            sync.RWMutex
	connected     []func(ConnectedEvent)
	authenticated []func(AuthenticatedEvent)
	disconnected  []func(DisconnectedEvent)
	roomJoined    []func(RoomEvent)
	roomLeft      []func(RoomEvent)
}

// Hub orchestrates connection lifecycle transitions across the registry and
// the room directory. It is an explicitly constructed component with a
// Start/Stop lifecycle; one instance serves one running server.
type Hub struct {
	registry   *Registry
	rooms      *Rooms
	dispatcher *Dispatcher
	logger     *slog.Logger

	// mu sequences multi-structure transitions (authenticate, disconnect)
	// so no window exists where two connections are bound to one identity.
	// No blocking I/O ever happens while it is held.
	mu sync.Mutex

	hooks   hooks
	started atomic.Bool
}

func NewHub(serverID string, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	registry := NewRegistry()
	rooms := NewRooms()
	return &Hub{
		registry:   registry,
		rooms:      rooms,
		dispatcher: NewDispatcher(registry, rooms, serverID, logger),
		logger:     logger,
	}
}

// Registry exposes identity/connection lookups and metrics.
func (h *Hub) Registry() *Registry { return h.registry }

// Rooms exposes room membership lookups.
func (h *Hub) Rooms() *Rooms { return h.rooms }

// Dispatcher exposes the broadcast surface.
func (h *Hub) Dispatcher() *Dispatcher { return h.dispatcher }

// Start marks the hub ready for dispatch. Dispatch before Start fails with
// ErrNotStarted, which callers treat as fatal during bootstrap.
func (h *Hub) Start() error {
	if !h.started.CompareAndSwap(false, true) {
		return nil
	}
	h.dispatcher.markReady()
	h.logger.Info("realtime hub started", "serverId", h.dispatcher.ServerID())
	return nil
}

// Stop closes every live connection with a server-shutdown reason and stops
// accepting dispatches.
func (h *Hub) Stop() {
	if !h.started.CompareAndSwap(true, false) {
		return
	}
	h.dispatcher.markStopped()
	for _, c := range h.registry.Clients() {
		c.closeWithReason(ReasonServerShutdown)
	}
	h.logger.Info("realtime hub stopped")
}

// Started reports whether the hub is accepting dispatches.
func (h *Hub) Started() bool {
	return h.started.Load()
}

// Hook registration. Callbacks run synchronously after the state transition
// has committed, outside the presence lock.

func (h *Hub) OnConnected(fn func(ConnectedEvent)) {
	h.hooks.mu.Lock()
	h.hooks.connected = append(h.hooks.connected, fn)
	h.hooks.mu.Unlock()
}

func (h *Hub) OnAuthenticated(fn func(AuthenticatedEvent)) {
	h.hooks.mu.Lock()
	h.hooks.authenticated = append(h.hooks.authenticated, fn)
	h.hooks.mu.Unlock()
}

func (h *Hub) OnDisconnected(fn func(DisconnectedEvent)) {
	h.hooks.mu.Lock()
	h.hooks.disconnected = append(h.hooks.disconnected, fn)
	h.hooks.mu.Unlock()
}

func (h *Hub) OnRoomJoined(fn func(RoomEvent)) {
	h.hooks.mu.Lock()
	h.hooks.roomJoined = append(h.hooks.roomJoined, fn)
	h.hooks.mu.Unlock()
}

func (h *Hub) OnRoomLeft(fn func(RoomEvent)) {
	h.hooks.mu.Lock()
	h.hooks.roomLeft = append(h.hooks.roomLeft, fn)
	h.hooks.mu.Unlock()
}

func (h *Hub) emitConnected(ev ConnectedEvent) {
	h.hooks.mu.RLock()
	fns := h.hooks.connected
	h.hooks.mu.RUnlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func (h *Hub) emitAuthenticated(ev AuthenticatedEvent) {
	h.hooks.mu.RLock()
	fns := h.hooks.authenticated
	h.hooks.mu.RUnlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func (h *Hub) emitDisconnected(ev DisconnectedEvent) {
	h.hooks.mu.RLock()
	fns := h.hooks.disconnected
	h.hooks.mu.RUnlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func (h *Hub) emitRoomJoined(ev RoomEvent) {
	h.hooks.mu.RLock()
	fns := h.hooks.roomJoined
	h.hooks.mu.RUnlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func (h *Hub) emitRoomLeft(ev RoomEvent) {
	h.hooks.mu.RLock()
	fns := h.hooks.roomLeft
	h.hooks.mu.RUnlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// Connect registers a new anonymous connection over the given transport and
// returns its client handle. The caller starts the pumps via Serve for live
// transports.
func (h *Hub) Connect(conn Conn) *Client {
	c := newClient(h, conn)
	h.registry.Register(c)
	h.logger.Debug("connection registered", "connectionId", c.id)
	h.emitConnected(ConnectedEvent{ConnectionID: c.id})
	return c
}

// Serve starts the read and write pumps for a connected client.
func (h *Hub) Serve(c *Client) {
	c.run()
}

// Authenticate binds identity to the connection. A prior session for the same
// identity is forcibly closed with reason "superseded" before the new binding
// is installed; the supersede and the install are sequenced under one lock so
// two connections are never simultaneously bound. A connection re-binding to
// a different identity releases the old identity's session and room
// memberships in the same critical section, and its offline transition is
// announced like a disconnect. On success the identity joins its implicit
// private room, an online presence change is broadcast and the authenticated
// hook fires.
func (h *Hub) Authenticate(connID, identity string, meta SessionMeta) error {
	h.mu.Lock()
	info, released, superseded, err := h.registry.Authenticate(connID, identity, meta)
	if err != nil {
		h.mu.Unlock()
		return err
	}
	var vacated []string
	if released != "" {
		vacated = h.rooms.LeaveAll(released)
	}
	h.rooms.Join(PrivateRoom(identity), identity)
	h.mu.Unlock()

	if released != "" {
		h.logger.Info("identity rebound",
			"connectionId", connID, "oldIdentity", released, "newIdentity", identity)
		for _, room := range vacated {
			h.dispatcher.SendToRoom(room, EventUserLeftRoom, Payload{
				"room":     room,
				"username": released,
			})
		}
		h.dispatcher.BroadcastAll(EventUserStatus, Payload{
			"username": released,
			"status":   "offline",
		})
	}

	if superseded != nil {
		h.logger.Info("session superseded",
			"identity", identity, "oldConnectionId", superseded.id, "newConnectionId", connID)
		superseded.closeWithReason(ReasonSuperseded)
	}

	if c, ok := h.registry.Client(connID); ok {
		c.sendEvent(EventAuthenticated, Payload{
			"username":    identity,
			"connectedAt": info.ConnectedAt.UnixMilli(),
		})
	}
	h.dispatcher.BroadcastAll(EventUserStatus, Payload{
		"username": identity,
		"status":   "online",
	})

	h.logger.Info("connection authenticated", "connectionId", connID, "identity", identity)
	h.emitAuthenticated(AuthenticatedEvent{Identity: identity, Meta: meta})
	return nil
}

// Heartbeat refreshes the last-seen timestamp of the session owning connID.
func (h *Hub) Heartbeat(connID string) {
	h.registry.Heartbeat(connID)
}

// JoinRoom adds the connection's identity to room, acknowledges to the
// joining connection and notifies the other members.
func (h *Hub) JoinRoom(connID, room string) error {
	if room == "" {
		return &ValidationError{Field: "room", Reason: "must not be empty"}
	}
	identity, ok := h.registry.LookupByConnection(connID)
	if !ok {
		return ErrNotAuthenticated
	}

	h.mu.Lock()
	members := h.rooms.Join(room, identity)
	h.mu.Unlock()

	if c, ok := h.registry.Client(connID); ok {
		c.sendEvent(EventRoomJoined, Payload{"room": room, "members": members})
	}
	for _, member := range members {
		if member == identity {
			continue
		}
		h.dispatcher.SendToIdentity(member, EventUserJoinedRoom, Payload{
			"room":     room,
			"username": identity,
		})
	}

	h.emitRoomJoined(RoomEvent{Identity: identity, Room: room})
	return nil
}

// LeaveRoom removes the connection's identity from room. Leaving a room never
// joined is a no-op, not a failure.
func (h *Hub) LeaveRoom(connID, room string) error {
	if room == "" {
		return &ValidationError{Field: "room", Reason: "must not be empty"}
	}
	identity, ok := h.registry.LookupByConnection(connID)
	if !ok {
		return ErrNotAuthenticated
	}

	h.mu.Lock()
	h.rooms.Leave(room, identity)
	h.mu.Unlock()

	if c, ok := h.registry.Client(connID); ok {
		c.sendEvent(EventRoomLeft, Payload{"room": room})
	}
	h.dispatcher.SendToRoom(room, EventUserLeftRoom, Payload{
		"room":     room,
		"username": identity,
	})

	h.emitRoomLeft(RoomEvent{Identity: identity, Room: room})
	return nil
}

// Disconnect removes the connection. An authenticated connection is purged
// from every room (remaining members are notified per room), an offline
// presence change is broadcast and the disconnected hook fires. A connection
// that never authenticated updates metrics only. All registry and room state
// is committed before any broadcast is attempted.
func (h *Hub) Disconnect(connID, reason string) {
	h.mu.Lock()
	identity, c, ok := h.registry.Unregister(connID)
	var affected []string
	if ok && identity != "" {
		affected = h.rooms.LeaveAll(identity)
	}
	h.mu.Unlock()

	if !ok {
		return
	}
	c.closeWithReason(reason)

	h.logger.Info("connection closed", "connectionId", connID, "identity", identity, "reason", reason)

	if identity == "" {
		return
	}
	for _, room := range affected {
		h.dispatcher.SendToRoom(room, EventUserLeftRoom, Payload{
			"room":     room,
			"username": identity,
		})
	}
	h.dispatcher.BroadcastAll(EventUserStatus, Payload{
		"username": identity,
		"status":   "offline",
	})
	h.emitDisconnected(DisconnectedEvent{Identity: identity, Reason: reason})
}
