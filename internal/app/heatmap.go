package app

import (
	"context"
	"time"

	"linguahub/internal/domain"
)

const (
	minHeatmapDays     = 1
	maxHeatmapDays     = 366
	defaultHeatmapDays = 84
	dayFormat          = "2006-01-02"
)

// ProgressService buckets a learner's submission timestamps into
// calendar-day counts. Day boundaries follow the configured timezone so
// the grid matches the learner-facing calendar, not server-local time.
type ProgressService struct {
	subs SubmissionStore
	loc  *time.Location
	now  func() time.Time
}

func NewProgressService(subs SubmissionStore, loc *time.Location) *ProgressService {
	return &ProgressService{subs: subs, loc: loc, now: time.Now}
}

// NewProgressServiceWithClock is test-only for deterministic windows.
func NewProgressServiceWithClock(subs SubmissionStore, loc *time.Location, now func() time.Time) *ProgressService {
	return &ProgressService{subs: subs, loc: loc, now: now}
}

// Heatmap counts the learner's submissions per calendar day over the
// inclusive trailing window [today-(days-1), today]. days is clamped to
// [1, 366] and defaults to 84 when zero. Days without submissions carry
// no key in Counts.
func (s *ProgressService) Heatmap(ctx context.Context, learnerID string, days int) (domain.Heatmap, error) {
	if days == 0 {
		days = defaultHeatmapDays
	}
	if days < minHeatmapDays {
		days = minHeatmapDays
	}
	if days > maxHeatmapDays {
		days = maxHeatmapDays
	}

	now := s.now().In(s.loc)
	end := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), s.loc)
	startDay := end.AddDate(0, 0, -(days - 1))
	start := time.Date(startDay.Year(), startDay.Month(), startDay.Day(), 0, 0, 0, 0, s.loc)

	times, err := s.subs.TimesInWindow(ctx, learnerID, start, end)
	if err != nil {
		return domain.Heatmap{}, err
	}

	counts := make(map[string]int)
	for _, at := range times {
		counts[at.In(s.loc).Format(dayFormat)]++
	}
	return domain.Heatmap{
		Start:  start.Format(dayFormat),
		End:    end.Format(dayFormat),
		Days:   days,
		Counts: counts,
	}, nil
}
