package domain

import "testing"

func TestRoomKeySymmetry(t *testing.T) {
	pairs := [][2]string{
		{"u1", "u2"},
		{"alice", "bob"},
		{"zz", "aa"},
		{"507f1f77bcf86cd799439011", "507f191e810c19729de860ea"},
	}
	for _, p := range pairs {
		if RoomKey(p[0], p[1]) != RoomKey(p[1], p[0]) {
			t.Fatalf("key not commutative for %v", p)
		}
	}
}

func TestRoomKeyDistinctPairs(t *testing.T) {
	if RoomKey("a", "b") == RoomKey("c", "b") {
		t.Fatalf("distinct pairs sharing an endpoint must not collide")
	}
	if RoomKey("u1", "u2") == RoomKey("u1", "u3") {
		t.Fatalf("distinct pairs sharing an endpoint must not collide")
	}
}

func TestRoomKeyShape(t *testing.T) {
	if got := RoomKey("u2", "u1"); got != "chat:u1:u2" {
		t.Fatalf("expected chat:u1:u2, got %s", got)
	}
}
