package app_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"linguahub/internal/app"
	"linguahub/internal/domain"
	"linguahub/internal/infra/memory"
)

func newHeatmapFixture(t *testing.T, now time.Time, loc *time.Location) (*app.ProgressService, *memory.TestStore) {
	t.Helper()
	store := memory.NewTestStore()
	svc := app.NewProgressServiceWithClock(store, loc, func() time.Time { return now })
	return svc, store
}

func seedSubmission(t *testing.T, store *memory.TestStore, learnerID string, at time.Time) {
	t.Helper()
	sub := domain.Submission{
		ID:        fmt.Sprintf("sub-%d", at.UnixNano()),
		TestID:    "test-1",
		Learner:   learnerID,
		CreatedAt: at,
	}
	if err := store.CreateSubmission(context.Background(), &sub); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
}

func TestHeatmapCountsPerCalendarDay(t *testing.T) {
	ctx := context.Background()
	loc := time.UTC
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, loc)
	svc, store := newHeatmapFixture(t, now, loc)

	seedSubmission(t, store, "l1", now.Add(-2*time.Hour))           // today
	seedSubmission(t, store, "l1", now.AddDate(0, 0, -1))           // yesterday
	seedSubmission(t, store, "l1", now.AddDate(0, 0, -1).Add(time.Hour)) // yesterday again
	seedSubmission(t, store, "l1", now.AddDate(0, 0, -6))           // window edge
	seedSubmission(t, store, "l1", now.AddDate(0, 0, -7))           // outside
	seedSubmission(t, store, "l2", now)                             // other learner

	hm, err := svc.Heatmap(ctx, "l1", 7)
	if err != nil {
		t.Fatalf("heatmap failed: %v", err)
	}
	if hm.Start != "2026-03-04" || hm.End != "2026-03-10" || hm.Days != 7 {
		t.Fatalf("unexpected window: %+v", hm)
	}
	if hm.Counts["2026-03-10"] != 1 || hm.Counts["2026-03-09"] != 2 || hm.Counts["2026-03-04"] != 1 {
		t.Fatalf("unexpected counts: %+v", hm.Counts)
	}
	if _, ok := hm.Counts["2026-03-03"]; ok {
		t.Fatalf("days outside the window must not appear")
	}
	if _, ok := hm.Counts["2026-03-05"]; ok {
		t.Fatalf("zero days carry no key")
	}
}

func TestHeatmapClampsDays(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	svc, _ := newHeatmapFixture(t, now, time.UTC)

	cases := []struct {
		in, want int
	}{
		{0, 84},
		{-3, 1},
		{1, 1},
		{366, 366},
		{1000, 366},
	}
	for _, c := range cases {
		hm, err := svc.Heatmap(ctx, "l1", c.in)
		if err != nil {
			t.Fatalf("heatmap(%d) failed: %v", c.in, err)
		}
		if hm.Days != c.want {
			t.Fatalf("heatmap(%d): expected %d days, got %d", c.in, c.want, hm.Days)
		}
	}
}

func TestHeatmapBucketsInConfiguredTimezone(t *testing.T) {
	ctx := context.Background()
	loc, err := time.LoadLocation("Europe/Amsterdam")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 23:30 UTC on March 9 is already March 10 in Amsterdam.
	now := time.Date(2026, 3, 9, 23, 30, 0, 0, time.UTC)
	svc, store := newHeatmapFixture(t, now, loc)
	seedSubmission(t, store, "l1", now)

	hm, err := svc.Heatmap(ctx, "l1", 1)
	if err != nil {
		t.Fatalf("heatmap failed: %v", err)
	}
	if hm.End != "2026-03-10" {
		t.Fatalf("expected the Amsterdam calendar day, got %s", hm.End)
	}
	if hm.Counts["2026-03-10"] != 1 {
		t.Fatalf("expected the submission bucketed on March 10, got %+v", hm.Counts)
	}
}
