package realtime

// DeliveryReport is the explicit outcome of a best-effort publish:
// how many live connections were targeted and how many accepted the
// event. Delivery is at-most-once per connection with no queuing or
// acknowledgment; an offline recipient simply yields Targets == 0 and
// the durable stores remain the source of truth.
type DeliveryReport struct {
	Delivered int
	Targets   int
}

// Dispatcher routes outbound events to live sessions. Events published
// from a single producing goroutine reach a given connection in publish
// order; there is no cross-room ordering guarantee.
type Dispatcher struct {
	registry *Registry
}

func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// PublishToRoom delivers to every session currently joined to the room.
// Sessions of the same users connected elsewhere do not receive it.
func (d *Dispatcher) PublishToRoom(roomKey, event string, payload any) DeliveryReport {
	return d.deliver(d.registry.RoomSessions(roomKey), nil, event, payload)
}

// PublishToRoomExcept behaves like PublishToRoom but skips one session,
// typically the producer of a transient event such as a typing signal.
func (d *Dispatcher) PublishToRoomExcept(roomKey string, except *Session, event string, payload any) DeliveryReport {
	return d.deliver(d.registry.RoomSessions(roomKey), except, event, payload)
}

// PublishToUser delivers to every live session of the user's personal
// channel, regardless of room membership.
func (d *Dispatcher) PublishToUser(userID, event string, payload any) DeliveryReport {
	return d.deliver(d.registry.UserSessions(userID), nil, event, payload)
}

func (d *Dispatcher) deliver(sessions []*Session, except *Session, event string, payload any) DeliveryReport {
	report := DeliveryReport{}
	for _, s := range sessions {
		if s == except {
			continue
		}
		report.Targets++
		if s.conn.Send(event, payload) {
			report.Delivered++
		}
	}
	return report
}
