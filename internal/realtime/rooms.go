package realtime

import (
	"sort"
	"sync"
)

// Rooms is the sole authority for room membership. Rooms are created lazily
// on first join and deleted once their membership becomes empty. Room names
// are opaque strings supplied by callers.
type Rooms struct {
	mu    sync.RWMutex
	rooms map[string]map[string]struct{} // room -> set of identities
}

func NewRooms() *Rooms {
	return &Rooms{rooms: make(map[string]map[string]struct{})}
}

// Join adds identity to the room, creating the room if absent, and returns
// the current membership sorted for determinism. Joining twice has no
// additional effect.
func (r *Rooms) Join(room, identity string) []string {
	r.mu.Lock()
	members, ok := r.rooms[room]
	if !ok {
		members = make(map[string]struct{})
		r.rooms[room] = members
	}
	members[identity] = struct{}{}
	out := make([]string, 0, len(members))
	for m := range members {
		out = append(out, m)
	}
	r.mu.Unlock()

	sort.Strings(out)
	return out
}

// Leave removes identity from the room. Leaving a room never joined is a
// no-op. The room entry is deleted when its membership becomes empty.
func (r *Rooms) Leave(room, identity string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.rooms[room]
	if !ok {
		return
	}
	delete(members, identity)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
}

// LeaveAll purges identity from every room it belongs to and returns the
// affected room names so callers can notify remaining members.
func (r *Rooms) LeaveAll(identity string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var affected []string
	for room, members := range r.rooms {
		if _, ok := members[identity]; !ok {
			continue
		}
		delete(members, identity)
		affected = append(affected, room)
		if len(members) == 0 {
			delete(r.rooms, room)
		}
	}
	return affected
}

// Members returns a snapshot of the room's membership. No ordering guarantee.
func (r *Rooms) Members(room string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members, ok := r.rooms[room]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(members))
	for m := range members {
		out = append(out, m)
	}
	return out
}

// Contains reports whether identity is a member of room.
func (r *Rooms) Contains(room, identity string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members, ok := r.rooms[room]
	if !ok {
		return false
	}
	_, ok = members[identity]
	return ok
}

// AllRooms returns the names of every room with at least one member.
func (r *Rooms) AllRooms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.rooms))
	for room := range r.rooms {
		out = append(out, room)
	}
	return out
}
