package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"linguahub/internal/domain"
)

func TestNotificationStoreListsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewNotificationStore()

	for _, id := range []string{"n1", "n2", "n3"} {
		err := store.Append(ctx, &domain.Notification{ID: id, Recipient: "u1"})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	list, err := store.ListByRecipient(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || list[0].ID != "n3" || list[2].ID != "n1" {
		t.Fatalf("expected newest first, got %+v", list)
	}
}

func TestNotificationStoreMarkReadOwnerOnly(t *testing.T) {
	ctx := context.Background()
	store := NewNotificationStore()
	if err := store.Append(ctx, &domain.Notification{ID: "n1", Recipient: "u1"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	if _, err := store.MarkRead(ctx, "u2", "n1", at); !errors.Is(err, domain.ErrNotificationNotFound) {
		t.Fatalf("expected not found for foreign owner, got %v", err)
	}
	n, err := store.MarkRead(ctx, "u1", "n1", at)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if !n.Read || n.ReadAt == nil || !n.ReadAt.Equal(at) {
		t.Fatalf("expected read at %v, got %+v", at, n)
	}
}

func TestNotificationStoreClear(t *testing.T) {
	ctx := context.Background()
	store := NewNotificationStore()
	if err := store.Clear(ctx, "u1"); err != nil {
		t.Fatalf("clear empty: %v", err)
	}
	if err := store.Append(ctx, &domain.Notification{ID: "n1", Recipient: "u1"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Clear(ctx, "u1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	list, err := store.ListByRecipient(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty mailbox, got %d", len(list))
	}
}
