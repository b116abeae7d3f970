package domain

// RoomKey derives the canonical conversation identifier for two users.
// It is commutative: RoomKey(a, b) == RoomKey(b, a). Distinct unordered
// pairs never collide as long as user ids cannot contain ':'.
func RoomKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return "chat:" + a + ":" + b
}
