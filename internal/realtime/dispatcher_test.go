package realtime

import (
	"testing"

	"linguahub/internal/domain"
)

func TestPublishToRoomScope(t *testing.T) {
	r := NewRegistry()
	d := NewDispatcher(r)

	inRoom := &fakeConn{}
	elsewhere := &fakeConn{}
	s1, _ := r.Register("u1", inRoom)
	_, _ = r.Register("u2", elsewhere) // online but not joined

	room := domain.RoomKey("u1", "u2")
	r.JoinRoom(s1, room)

	report := d.PublishToRoom(room, "chat:message", map[string]string{"text": "hola"})
	if report.Targets != 1 || report.Delivered != 1 {
		t.Fatalf("expected 1/1, got %+v", report)
	}
	if len(elsewhere.received()) != 0 {
		t.Fatalf("session not joined to room must not receive room events")
	}
}

func TestPublishToUserReachesAllDevices(t *testing.T) {
	r := NewRegistry()
	d := NewDispatcher(r)

	phone := &fakeConn{}
	laptop := &fakeConn{}
	_, _ = r.Register("u2", phone)
	_, _ = r.Register("u2", laptop)

	report := d.PublishToUser("u2", "notification:new", map[string]string{"title": "hi"})
	if report.Targets != 2 || report.Delivered != 2 {
		t.Fatalf("expected 2/2, got %+v", report)
	}
	if len(phone.received()) != 1 || len(laptop.received()) != 1 {
		t.Fatalf("every live session of the user should receive personal events")
	}
}

func TestOfflineRecipientIsSilentNoop(t *testing.T) {
	r := NewRegistry()
	d := NewDispatcher(r)

	report := d.PublishToUser("ghost", "notification:new", nil)
	if report.Targets != 0 || report.Delivered != 0 {
		t.Fatalf("offline publish must report 0/0, got %+v", report)
	}
}

func TestPublishCountsRejectedSends(t *testing.T) {
	r := NewRegistry()
	d := NewDispatcher(r)

	ok := &fakeConn{}
	full := &fakeConn{reject: true}
	_, _ = r.Register("u1", ok)
	_, _ = r.Register("u1", full)

	report := d.PublishToUser("u1", "notification:new", nil)
	if report.Targets != 2 || report.Delivered != 1 {
		t.Fatalf("expected delivered 1 of 2, got %+v", report)
	}
}

func TestPublishToRoomExceptSkipsProducer(t *testing.T) {
	r := NewRegistry()
	d := NewDispatcher(r)

	sender := &fakeConn{}
	peer := &fakeConn{}
	s1, _ := r.Register("u1", sender)
	s2, _ := r.Register("u2", peer)
	room := domain.RoomKey("u1", "u2")
	r.JoinRoom(s1, room)
	r.JoinRoom(s2, room)

	report := d.PublishToRoomExcept(room, s1, "chat:typing", map[string]any{"from": "u1", "typing": true})
	if report.Targets != 1 || report.Delivered != 1 {
		t.Fatalf("expected 1/1 excluding producer, got %+v", report)
	}
	if len(sender.received()) != 0 {
		t.Fatalf("producer must not receive its own typing events")
	}
}

func TestDeliveryOrderPerConnection(t *testing.T) {
	r := NewRegistry()
	d := NewDispatcher(r)

	conn := &fakeConn{}
	s, _ := r.Register("u1", conn)
	r.JoinRoom(s, "chat:u1:u2")

	events := []string{"chat:message", "chat:typing", "chat:message"}
	for _, e := range events {
		d.PublishToRoom("chat:u1:u2", e, nil)
	}
	got := conn.received()
	if len(got) != len(events) {
		t.Fatalf("expected %d events, got %d", len(events), len(got))
	}
	for i := range events {
		if got[i] != events[i] {
			t.Fatalf("delivery order mismatch at %d: %v", i, got)
		}
	}
}
