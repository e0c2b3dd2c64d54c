package realtime

import (
	"reflect"
	"sort"
	"testing"
)

func TestRoomsJoin(t *testing.T) {
	rooms := NewRooms()

	members := rooms.Join("lobby", "alice")
	if !reflect.DeepEqual(members, []string{"alice"}) {
		t.Fatalf("Join returned %v, want [alice]", members)
	}

	members = rooms.Join("lobby", "bob")
	if !reflect.DeepEqual(members, []string{"alice", "bob"}) {
		t.Fatalf("Join returned %v, want sorted [alice bob]", members)
	}

	// Joining twice has no additional effect.
	members = rooms.Join("lobby", "alice")
	if !reflect.DeepEqual(members, []string{"alice", "bob"}) {
		t.Fatalf("idempotent Join returned %v", members)
	}

	if !rooms.Contains("lobby", "alice") {
		t.Fatal("lobby should contain alice right after Join")
	}
}

func TestRoomsLeave(t *testing.T) {
	rooms := NewRooms()
	rooms.Join("lobby", "alice")
	rooms.Join("lobby", "bob")

	rooms.Leave("lobby", "alice")
	if rooms.Contains("lobby", "alice") {
		t.Fatal("lobby should not contain alice after Leave")
	}

	// Leaving a room never joined is a no-op, not a failure.
	rooms.Leave("lobby", "carol")
	rooms.Leave("ghost-room", "alice")

	// Empty rooms are garbage collected.
	rooms.Leave("lobby", "bob")
	if got := rooms.AllRooms(); len(got) != 0 {
		t.Fatalf("AllRooms = %v, want empty after last member leaves", got)
	}
	if got := rooms.Members("lobby"); got != nil {
		t.Fatalf("Members of deleted room = %v, want nil", got)
	}
}

func TestRoomsLeaveAll(t *testing.T) {
	rooms := NewRooms()
	rooms.Join("r1", "alice")
	rooms.Join("r1", "bob")
	rooms.Join("r2", "alice")
	rooms.Join("r3", "bob")

	affected := rooms.LeaveAll("alice")
	sort.Strings(affected)
	if !reflect.DeepEqual(affected, []string{"r1", "r2"}) {
		t.Fatalf("LeaveAll = %v, want [r1 r2]", affected)
	}

	if rooms.Contains("r1", "alice") || rooms.Contains("r2", "alice") {
		t.Fatal("alice must be purged from every room")
	}
	if !rooms.Contains("r1", "bob") {
		t.Fatal("bob must remain in r1")
	}
	// r2 became empty and is gone; r1 and r3 survive.
	got := rooms.AllRooms()
	sort.Strings(got)
	if !reflect.DeepEqual(got, []string{"r1", "r3"}) {
		t.Fatalf("AllRooms = %v, want [r1 r3]", got)
	}
}
