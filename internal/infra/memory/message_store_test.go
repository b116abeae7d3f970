package memory

import (
	"context"
	"fmt"
	"testing"

	"linguahub/internal/domain"
)

func TestMessageStoreHistoryReturnsTailOldestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMessageStore()
	room := domain.RoomKey("l1", "t1")

	for i := 0; i < 5; i++ {
		err := store.Append(ctx, &domain.Message{
			ID: fmt.Sprintf("m%d", i), RoomKey: room, From: "l1", To: "t1",
			Text: fmt.Sprintf("msg-%d", i),
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	out, err := store.History(ctx, room, 3)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(out) != 3 || out[0].Text != "msg-2" || out[2].Text != "msg-4" {
		t.Fatalf("expected the last 3 oldest first, got %+v", out)
	}

	other, err := store.History(ctx, domain.RoomKey("l1", "t2"), 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("rooms are isolated, got %d", len(other))
	}
}
