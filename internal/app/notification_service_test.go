package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"linguahub/internal/app"
	"linguahub/internal/domain"
	"linguahub/internal/infra/memory"
	"linguahub/internal/realtime"
)

func newNotificationFixture() (*app.NotificationService, *realtime.Registry) {
	registry := realtime.NewRegistry()
	dispatcher := realtime.NewDispatcher(registry)
	store := memory.NewNotificationStore()
	svc := app.NewNotificationServiceWithClock(store, dispatcher,
		testClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)))
	return svc, registry
}

func TestNotifyPersistsThenDispatches(t *testing.T) {
	ctx := context.Background()
	svc, registry := newNotificationFixture()

	conn := &recorderConn{}
	if _, err := registry.Register("u1", conn); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	n, report, err := svc.Notify(ctx, "u1", domain.NotificationDoubt, "New doubt asked", "body", nil)
	if err != nil {
		t.Fatalf("notify failed: %v", err)
	}
	if n.Read {
		t.Fatalf("notifications must start unread")
	}
	if report.Delivered != 1 || report.Targets != 1 {
		t.Fatalf("expected 1/1 delivery, got %+v", report)
	}
	if conn.count("notification:new") != 1 {
		t.Fatalf("expected a notification:new push")
	}

	list, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != n.ID {
		t.Fatalf("expected persisted notification, got %+v", list)
	}
}

func TestNotifyOfflineRecipientStillPersists(t *testing.T) {
	ctx := context.Background()
	svc, _ := newNotificationFixture()

	_, report, err := svc.Notify(ctx, "u1", domain.NotificationComment, "New comment", "nice work", nil)
	if err != nil {
		t.Fatalf("notify failed: %v", err)
	}
	if report.Delivered != 0 || report.Targets != 0 {
		t.Fatalf("expected 0/0 delivery, got %+v", report)
	}
	list, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("offline dispatch must not block persistence, got %d", len(list))
	}
}

func TestMarkReadScopedToOwner(t *testing.T) {
	ctx := context.Background()
	svc, _ := newNotificationFixture()

	n, _, err := svc.Notify(ctx, "u1", domain.NotificationMessage, "New message", "hi", nil)
	if err != nil {
		t.Fatalf("notify failed: %v", err)
	}

	if _, err := svc.MarkRead(ctx, "u2", n.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign notification must look missing, got %v", err)
	}

	read, err := svc.MarkRead(ctx, "u1", n.ID)
	if err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	if !read.Read || read.ReadAt == nil {
		t.Fatalf("expected read transition, got %+v", read)
	}
}

func TestClearAllIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newNotificationFixture()

	if err := svc.ClearAll(ctx, "u1"); err != nil {
		t.Fatalf("clearing an empty mailbox must succeed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, _, err := svc.Notify(ctx, "u1", domain.NotificationMessage, "New message", "hi", nil); err != nil {
			t.Fatalf("notify failed: %v", err)
		}
	}
	if err := svc.ClearAll(ctx, "u1"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	list, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty mailbox after clear, got %d", len(list))
	}
	if err := svc.ClearAll(ctx, "u1"); err != nil {
		t.Fatalf("repeat clear must succeed: %v", err)
	}
}
