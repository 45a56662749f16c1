package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"chat-stats-service/internal/batch"
	"chat-stats-service/internal/reports/core/domain"
	"chat-stats-service/internal/reports/core/usecase"
)

type fakeStatsSource struct {
	DailyFn func(ctx context.Context, chatID int64, fromDay, toDay string) (*domain.DayCounts, error)
	UserFn  func(ctx context.Context, chatID int64, fromDay, toDay string) (*domain.IdentityCounts, error)
	calls   int
}

func (f *fakeStatsSource) DailyTotals(ctx context.Context, chatID int64, fromDay, toDay string) (*domain.DayCounts, error) {
	f.calls++
	if f.DailyFn != nil {
		return f.DailyFn(ctx, chatID, fromDay, toDay)
	}
	return domain.NewDayCounts(), nil
}

func (f *fakeStatsSource) UserTotals(ctx context.Context, chatID int64, fromDay, toDay string) (*domain.IdentityCounts, error) {
	f.calls++
	if f.UserFn != nil {
		return f.UserFn(ctx, chatID, fromDay, toDay)
	}
	return domain.NewIdentityCounts(), nil
}

type fakeWordSource struct {
	WordsFn func(ctx context.Context, chatID int64, fromDay, toDay string) (*domain.WordCounts, error)
}

func (f *fakeWordSource) WordTotals(ctx context.Context, chatID int64, fromDay, toDay string) (*domain.WordCounts, error) {
	if f.WordsFn != nil {
		return f.WordsFn(ctx, chatID, fromDay, toDay)
	}
	return domain.NewWordCounts(), nil
}

type fakeNameSource struct {
	names map[int64]string
}

func (f *fakeNameSource) DisplayNames(ctx context.Context, chatID int64, userIDs []int64) (map[int64]string, error) {
	return f.names, nil
}

// fixedNow pins the window end to Sunday 2024-01-07, so the weekly window is
// Mon 2024-01-01 .. Sun 2024-01-07.
func fixedNow() time.Time {
	return time.Date(2024, 1, 7, 15, 0, 0, 0, time.UTC)
}

func newReportUC(stats *fakeStatsSource, words *fakeWordSource, names *fakeNameSource) *usecase.GetReportUseCase {
	if words == nil {
		words = &fakeWordSource{}
	}
	if names == nil {
		names = &fakeNameSource{}
	}
	return usecase.NewGetReportUseCase(stats, words, names, nil).WithClock(fixedNow)
}

// ------------------------------------------------------------
// FALLBACK SELECTION
// ------------------------------------------------------------
func TestFallback_RelationalRowsUsedVerbatim(t *testing.T) {
	relational := &fakeStatsSource{
		DailyFn: func(ctx context.Context, chatID int64, fromDay, toDay string) (*domain.DayCounts, error) {
			c := domain.NewDayCounts()
			c.Add("2024-01-01", 5)
			return c, nil
		},
	}
	// Deliberately different numbers: consulting this source is a bug.
	scan := &fakeStatsSource{
		DailyFn: func(ctx context.Context, chatID int64, fromDay, toDay string) (*domain.DayCounts, error) {
			c := domain.NewDayCounts()
			c.Add("2024-01-01", 999)
			return c, nil
		},
	}

	src := usecase.NewFallbackSource(relational, scan, nil)
	uc := newReportUC(&fakeStatsSource{
		DailyFn: src.DailyTotals,
		UserFn:  src.UserTotals,
	}, nil, nil)

	points, err := uc.Activity(context.Background(), 1, usecase.WindowWeekly)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if points[0].Value != 5 {
		t.Fatalf("expected relational value 5, got %d", points[0].Value)
	}
	if scan.calls != 0 {
		t.Fatalf("scan source must not be consulted when relational has rows, got %d calls", scan.calls)
	}
}

func TestFallback_UsedOnRelationalError(t *testing.T) {
	relational := &fakeStatsSource{
		DailyFn: func(context.Context, int64, string, string) (*domain.DayCounts, error) {
			return nil, errors.New("pq: connection refused")
		},
	}
	scan := &fakeStatsSource{
		DailyFn: func(context.Context, int64, string, string) (*domain.DayCounts, error) {
			c := domain.NewDayCounts()
			c.Add("2024-01-03", 4)
			return c, nil
		},
	}

	src := usecase.NewFallbackSource(relational, scan, nil)
	counts, err := src.DailyTotals(context.Background(), 1, "2024-01-01", "2024-01-07")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counts.Get("2024-01-03") != 4 {
		t.Fatalf("expected fallback value 4, got %d", counts.Get("2024-01-03"))
	}
}

func TestFallback_UsedOnEmptyRelationalResult(t *testing.T) {
	relational := &fakeStatsSource{} // returns empty counts
	scan := &fakeStatsSource{
		DailyFn: func(context.Context, int64, string, string) (*domain.DayCounts, error) {
			c := domain.NewDayCounts()
			c.Add("2024-01-02", 7)
			return c, nil
		},
	}

	src := usecase.NewFallbackSource(relational, scan, nil)
	counts, err := src.DailyTotals(context.Background(), 1, "2024-01-01", "2024-01-07")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counts.Get("2024-01-02") != 7 {
		t.Fatalf("expected fallback value 7, got %d", counts.Get("2024-01-02"))
	}
}

// ------------------------------------------------------------
// CHART SHAPES
// ------------------------------------------------------------
func TestActivity_WeeklyZeroFillsQuietDays(t *testing.T) {
	stats := &fakeStatsSource{
		DailyFn: func(context.Context, int64, string, string) (*domain.DayCounts, error) {
			c := domain.NewDayCounts()
			c.Add("2024-01-01", 3)
			c.Add("2024-01-02", 1)
			// 2024-01-03 (day 3 of 7) has no activity.
			c.Add("2024-01-04", 2)
			return c, nil
		},
	}
	uc := newReportUC(stats, nil, nil)

	points, err := uc.Activity(context.Background(), 1, usecase.WindowWeekly)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 7 {
		t.Fatalf("expected 7 buckets, got %d", len(points))
	}
	if points[2].Value != 0 {
		t.Fatalf("expected zero-valued bucket at position 3, got %d", points[2].Value)
	}
	if points[2].Label != "Wed" {
		t.Fatalf("expected Wed label for 2024-01-03, got %s", points[2].Label)
	}
	if points[0].Label != "Mon" || points[0].Value != 3 {
		t.Fatalf("expected Mon=3, got %s=%d", points[0].Label, points[0].Value)
	}
}

func TestActivity_MonthlyFoldsIntoFourWeeks(t *testing.T) {
	stats := &fakeStatsSource{
		DailyFn: func(ctx context.Context, chatID int64, fromDay, toDay string) (*domain.DayCounts, error) {
			if fromDay != "2023-12-11" || toDay != "2024-01-07" {
				t.Fatalf("unexpected 28-day range %s..%s", fromDay, toDay)
			}
			c := domain.NewDayCounts()
			c.Add("2023-12-12", 2) // week 1
			c.Add("2024-01-07", 9) // week 4
			return c, nil
		},
	}
	uc := newReportUC(stats, nil, nil)

	points, err := uc.Activity(context.Background(), 1, usecase.WindowMonthly)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 4 {
		t.Fatalf("expected 4 buckets, got %d", len(points))
	}
	if points[0].Label != "Week 1" || points[0].Value != 2 {
		t.Fatalf("expected Week 1=2, got %s=%d", points[0].Label, points[0].Value)
	}
	if points[1].Value != 0 || points[2].Value != 0 {
		t.Fatalf("expected zero-filled middle weeks, got %d and %d", points[1].Value, points[2].Value)
	}
	if points[3].Value != 9 {
		t.Fatalf("expected Week 4=9, got %d", points[3].Value)
	}
}

// ------------------------------------------------------------
// LEADERBOARD
// ------------------------------------------------------------
func TestLeaderboard_TieBreakByInsertionOrder(t *testing.T) {
	stats := &fakeStatsSource{
		UserFn: func(context.Context, int64, string, string) (*domain.IdentityCounts, error) {
			c := domain.NewIdentityCounts()
			c.Add(1, "u1", 7)
			c.Add(2, "u2", 7)
			c.Add(3, "u3", 3)
			return c, nil
		},
	}
	uc := newReportUC(stats, nil, nil)

	entries, err := uc.Leaderboard(context.Background(), 1, usecase.WindowWeekly, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].UserID != 1 || entries[1].UserID != 2 {
		t.Fatalf("expected tie broken by insertion order (u1 before u2), got %d then %d",
			entries[0].UserID, entries[1].UserID)
	}
	if entries[2].UserID != 3 {
		t.Fatalf("expected u3 last, got %d", entries[2].UserID)
	}
}

func TestLeaderboard_ResolvesMissingNames(t *testing.T) {
	stats := &fakeStatsSource{
		UserFn: func(context.Context, int64, string, string) (*domain.IdentityCounts, error) {
			c := domain.NewIdentityCounts()
			c.Add(11, "", 5)
			c.Add(12, "", 2)
			return c, nil
		},
	}
	names := &fakeNameSource{names: map[int64]string{11: "alice"}}
	uc := newReportUC(stats, nil, names)

	entries, err := uc.Leaderboard(context.Background(), 1, usecase.WindowWeekly, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entries[0].Username != "alice" {
		t.Fatalf("expected resolved name alice, got %q", entries[0].Username)
	}
	if entries[1].Username != "user 12" {
		t.Fatalf("expected id fallback 'user 12', got %q", entries[1].Username)
	}
}

func TestLeaderboard_LimitCapped(t *testing.T) {
	stats := &fakeStatsSource{
		UserFn: func(context.Context, int64, string, string) (*domain.IdentityCounts, error) {
			c := domain.NewIdentityCounts()
			for i := int64(1); i <= 30; i++ {
				c.Add(i, "u", i)
			}
			return c, nil
		},
	}
	uc := newReportUC(stats, nil, nil)

	entries, err := uc.Leaderboard(context.Background(), 1, usecase.WindowWeekly, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 20 {
		t.Fatalf("expected hard cap of 20 entries, got %d", len(entries))
	}
}

// ------------------------------------------------------------
// ERROR CLASSIFICATION
// ------------------------------------------------------------
func TestActivity_RateLimitedScanSurfacesAsRateLimited(t *testing.T) {
	stats := &fakeStatsSource{
		DailyFn: func(context.Context, int64, string, string) (*domain.DayCounts, error) {
			return nil, batch.ErrRateLimited
		},
	}
	uc := newReportUC(stats, nil, nil)

	_, err := uc.Activity(context.Background(), 1, usecase.WindowWeekly)
	if !errors.Is(err, usecase.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestActivity_BatchFailureSurfacesAsUnavailable(t *testing.T) {
	stats := &fakeStatsSource{
		DailyFn: func(context.Context, int64, string, string) (*domain.DayCounts, error) {
			return nil, batch.ErrBatchFailed
		},
	}
	uc := newReportUC(stats, nil, nil)

	_, err := uc.Activity(context.Background(), 1, usecase.WindowWeekly)
	if !errors.Is(err, usecase.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

// ------------------------------------------------------------
// TOP WORDS
// ------------------------------------------------------------
func TestTopWords_SortedDescendingStable(t *testing.T) {
	words := &fakeWordSource{
		WordsFn: func(context.Context, int64, string, string) (*domain.WordCounts, error) {
			c := domain.NewWordCounts()
			c.Add("pizza", 4)
			c.Add("kino", 9)
			c.Add("abend", 4)
			return c, nil
		},
	}
	uc := newReportUC(&fakeStatsSource{}, words, nil)

	entries, err := uc.TopWords(context.Background(), 1, usecase.WindowWeekly, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Word != "kino" || entries[1].Word != "pizza" {
		t.Fatalf("expected [kino pizza], got [%s %s]", entries[0].Word, entries[1].Word)
	}
}

func TestParseWindow(t *testing.T) {
	if w, err := usecase.ParseWindow(""); err != nil || w != usecase.WindowWeekly {
		t.Fatalf("empty window should default to weekly, got %v %v", w, err)
	}
	if _, err := usecase.ParseWindow("yearly"); !errors.Is(err, usecase.ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
}
