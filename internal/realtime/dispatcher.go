package realtime

import (
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"
)

// Dispatcher formats and emits events to one identity, many identities, a
// room, or every connection. Delivery is fire-and-forget: a frame is queued
// on each target's send buffer and never awaited, so no dispatch blocks on a
// slow peer or runs I/O under the presence lock.
type Dispatcher struct {
	registry *Registry
	rooms    *Rooms
	serverID string
	logger   *slog.Logger

	ready atomic.Bool
	clock func() time.Time
}

func NewDispatcher(registry *Registry, rooms *Rooms, serverID string, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		registry: registry,
		rooms:    rooms,
		serverID: serverID,
		logger:   logger,
		clock:    time.Now,
	}
}

// ServerID returns the origin tag stamped into every envelope.
func (d *Dispatcher) ServerID() string {
	return d.serverID
}

func (d *Dispatcher) markReady()   { d.ready.Store(true) }
func (d *Dispatcher) markStopped() { d.ready.Store(false) }

// Ready reports whether the transport layer has been started.
func (d *Dispatcher) Ready() bool {
	return d.ready.Load()
}

// envelope wraps the payload fields with the delivery timestamp and the
// server origin tag, then frames it under the event name.
func (d *Dispatcher) envelope(event EventName, payload Payload) []byte {
	data := make(map[string]interface{}, len(payload)+2)
	for k, v := range payload {
		data[k] = v
	}
	data["timestamp"] = d.clock().UnixMilli()
	data["serverId"] = d.serverID

	frame, err := json.Marshal(map[string]interface{}{
		"event": event,
		"data":  data,
	})
	if err != nil {
		d.logger.Error("failed to marshal event frame", "event", event, "error", err)
		return nil
	}
	return frame
}

// deliver queues one frame on a client, logging (never propagating) a
// delivery failure. State already committed is never rolled back.
func (d *Dispatcher) deliver(c *Client, event EventName, frame []byte) bool {
	if frame == nil {
		return false
	}
	if !c.enqueue(frame) {
		d.logger.Warn("dropped event for connection",
			"event", event, "connectionId", c.id, "identity", c.Identity())
		return false
	}
	return true
}

// SendToIdentity delivers one event to the identity's single connection.
// It reports whether delivery was attempted; false when the identity is not
// online.
func (d *Dispatcher) SendToIdentity(identity string, event EventName, payload Payload) (bool, error) {
	if !d.Ready() {
		return false, ErrNotStarted
	}
	c, ok := d.registry.ClientByIdentity(identity)
	if !ok {
		return false, nil
	}
	frame := d.envelope(event, payload)
	d.deliver(c, event, frame)
	return true, nil
}

// SendToIdentities applies SendToIdentity to each identity independently and
// returns how many deliveries were attempted. One offline identity does not
// block the others.
func (d *Dispatcher) SendToIdentities(identities []string, event EventName, payload Payload) (int, error) {
	if !d.Ready() {
		return 0, ErrNotStarted
	}
	frame := d.envelope(event, payload)
	delivered := 0
	for _, identity := range identities {
		c, ok := d.registry.ClientByIdentity(identity)
		if !ok {
			continue
		}
		d.deliver(c, event, frame)
		delivered++
	}
	return delivered, nil
}

// BroadcastAll delivers one event to every live connection, authenticated or
// not.
func (d *Dispatcher) BroadcastAll(event EventName, payload Payload) (bool, error) {
	if !d.Ready() {
		return false, ErrNotStarted
	}
	frame := d.envelope(event, payload)
	for _, c := range d.registry.Clients() {
		d.deliver(c, event, frame)
	}
	return true, nil
}

// SendToRoom delivers one event to every connection whose identity is a
// member of room. A room with no members is a successful no-op. The member
// set is snapshotted before iteration so concurrent leaves cannot race the
// fanout.
func (d *Dispatcher) SendToRoom(room string, event EventName, payload Payload) (bool, error) {
	if !d.Ready() {
		return false, ErrNotStarted
	}
	members := d.rooms.Members(room)
	if len(members) == 0 {
		return true, nil
	}
	frame := d.envelope(event, payload)
	for _, identity := range members {
		c, ok := d.registry.ClientByIdentity(identity)
		if !ok {
			continue
		}
		d.deliver(c, event, frame)
	}
	return true, nil
}
