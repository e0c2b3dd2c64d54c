package realtime

import (
	"sync"
	"time"
)

// SessionMeta is the structured metadata attached to a session at
// authentication time. Extra is the open extension field for caller-supplied
// values that have no dedicated column.
type SessionMeta struct {
	ClientVersion string                 `json:"clientVersion,omitempty"`
	UserAgent     string                 `json:"userAgent,omitempty"`
	RemoteAddr    string                 `json:"remoteAddr,omitempty"`
	Extra         map[string]interface{} `json:"extra,omitempty"`
}

// SessionInfo is a read-only copy of the binding between one identity and its
// single active connection.
type SessionInfo struct {
	Identity     string      `json:"identity"`
	ConnectionID string      `json:"connectionId"`
	ConnectedAt  time.Time   `json:"connectedAt"`
	LastSeen     time.Time   `json:"lastSeen"`
	Meta         SessionMeta `json:"meta"`
}

type session struct {
	identity     string
	connectionID string
	connectedAt  time.Time
	lastSeen     time.Time
	meta         SessionMeta
}

func (s *session) info() SessionInfo {
	return SessionInfo{
		Identity:     s.identity,
		ConnectionID: s.connectionID,
		ConnectedAt:  s.connectedAt,
		LastSeen:     s.lastSeen,
		Meta:         s.meta,
	}
}

// Registry is the sole authority for identity->session and
// connection->identity lookups. It owns every live connection, authenticated
// or not, for the connection's lifetime.
type Registry struct {
	mu       sync.RWMutex
	clients  map[string]*Client  // connection id -> client
	sessions map[string]*session // identity -> active session
	byConn   map[string]string   // connection id -> identity

	metrics *Metrics
	clock   func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		clients:  make(map[string]*Client),
		sessions: make(map[string]*session),
		byConn:   make(map[string]string),
		metrics:  NewMetrics(),
		clock:    time.Now,
	}
}

// Register records a new anonymous connection and updates the connection
// counters.
func (r *Registry) Register(c *Client) {
	r.mu.Lock()
	r.clients[c.id] = c
	r.mu.Unlock()
	r.metrics.connectionOpened()
}

// Authenticate binds identity to the given connection. If the identity
// already holds a session on a different connection, that binding is removed
// first and the displaced client is returned so the caller can close it. If
// the connection was already bound to a different identity, the old binding
// is released and its identity returned so the caller can purge derived
// state. The at-most-one-session-per-identity invariant holds at every
// return point.
func (r *Registry) Authenticate(connID, identity string, meta SessionMeta) (SessionInfo, string, *Client, error) {
	if identity == "" {
		return SessionInfo{}, "", nil, &ValidationError{Field: "identity", Reason: "must not be empty"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[connID]
	if !ok {
		return SessionInfo{}, "", nil, ErrUnknownConnection
	}

	// A connection re-authenticating under a new identity releases its old
	// binding first so both directions stay one-to-one.
	var released string
	if prev, ok := r.byConn[connID]; ok && prev != identity {
		delete(r.sessions, prev)
		delete(r.byConn, connID)
		released = prev
	}

	var superseded *Client
	if old, ok := r.sessions[identity]; ok && old.connectionID != connID {
		superseded = r.clients[old.connectionID]
		delete(r.clients, old.connectionID)
		delete(r.byConn, old.connectionID)
		delete(r.sessions, identity)
		r.metrics.connectionClosed()
	}

	now := r.clock()
	s := &session{
		identity:     identity,
		connectionID: connID,
		connectedAt:  now,
		lastSeen:     now,
		meta:         meta,
	}
	r.sessions[identity] = s
	r.byConn[connID] = identity
	c.setIdentity(identity)

	return s.info(), released, superseded, nil
}

// Heartbeat refreshes the session's last-seen timestamp. A heartbeat from an
// unauthenticated connection is a no-op.
func (r *Registry) Heartbeat(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	identity, ok := r.byConn[connID]
	if !ok {
		return
	}
	if s, ok := r.sessions[identity]; ok {
		s.lastSeen = r.clock()
	}
}

// Unregister removes the connection and, if it was authenticated, the
// identity binding. It returns the freed identity ("" when the connection was
// never authenticated) and the removed client.
func (r *Registry) Unregister(connID string) (string, *Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[connID]
	if !ok {
		return "", nil, false
	}
	delete(r.clients, connID)

	identity := r.byConn[connID]
	if identity != "" {
		delete(r.byConn, connID)
		delete(r.sessions, identity)
	}
	r.metrics.connectionClosed()
	return identity, c, true
}

// LookupByIdentity returns the active session for identity, if any.
func (r *Registry) LookupByIdentity(identity string) (SessionInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[identity]
	if !ok {
		return SessionInfo{}, false
	}
	return s.info(), true
}

// LookupByConnection returns the identity bound to the connection, if any.
func (r *Registry) LookupByConnection(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	identity, ok := r.byConn[connID]
	return identity, ok
}

// IsOnline reports whether identity holds an active session.
func (r *Registry) IsOnline(identity string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[identity]
	return ok
}

// OnlineIdentities returns every identity with an active session.
func (r *Registry) OnlineIdentities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.sessions))
	for identity := range r.sessions {
		out = append(out, identity)
	}
	return out
}

// Client returns the live client for a connection id.
func (r *Registry) Client(connID string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[connID]
	return c, ok
}

// ClientByIdentity returns the live client bound to identity.
func (r *Registry) ClientByIdentity(identity string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[identity]
	if !ok {
		return nil, false
	}
	c, ok := r.clients[s.connectionID]
	return c, ok
}

// Clients returns a snapshot of every live connection, authenticated or not.
// Callers iterate the snapshot so concurrent register/unregister cannot race
// the fanout.
func (r *Registry) Clients() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out
}

// Metrics returns a snapshot of the connection counters.
func (r *Registry) Metrics() MetricsSnapshot {
	return r.metrics.Snapshot()
}
