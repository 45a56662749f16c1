package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"chat-stats-service/internal/batch"
	"chat-stats-service/internal/reports/core/domain"
	"chat-stats-service/internal/reports/core/ports"
)

var (
	ErrInvalidWindow = errors.New("invalid report window")
	// ErrRateLimited means the scan path exhausted external limits; the caller
	// should request a narrower window.
	ErrRateLimited = errors.New("report data rate limited")
	// ErrUnavailable is the generic "try again later" failure.
	ErrUnavailable = errors.New("report data unavailable")
)

type Window string

const (
	WindowWeekly  Window = "weekly"
	WindowMonthly Window = "monthly"
)

const (
	weeklyDays  = 7
	monthlyDays = 28

	defaultTopN = 10
	maxTopN     = 20
)

func ParseWindow(s string) (Window, error) {
	switch Window(s) {
	case WindowWeekly, "":
		return WindowWeekly, nil
	case WindowMonthly:
		return WindowMonthly, nil
	default:
		return "", ErrInvalidWindow
	}
}

const dayFormat = "2006-01-02"

type GetReportUseCase struct {
	stats  ports.StatsSource
	words  ports.WordSource
	names  ports.DisplayNameSource
	logger *slog.Logger
	now    func() time.Time
}

func NewGetReportUseCase(
	stats ports.StatsSource,
	words ports.WordSource,
	names ports.DisplayNameSource,
	logger *slog.Logger,
) *GetReportUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetReportUseCase{
		stats:  stats,
		words:  words,
		names:  names,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the time source; tests pin the window end.
func (uc *GetReportUseCase) WithClock(now func() time.Time) *GetReportUseCase {
	out := *uc
	out.now = now
	return &out
}

// windowDays returns every day in the window, oldest first, ending today.
func (uc *GetReportUseCase) windowDays(w Window) []string {
	n := weeklyDays
	if w == WindowMonthly {
		n = monthlyDays
	}
	end := uc.now().UTC().Truncate(24 * time.Hour)
	days := make([]string, n)
	for i := 0; i < n; i++ {
		days[i] = end.AddDate(0, 0, i-n+1).Format(dayFormat)
	}
	return days
}

// Activity returns the chart series for the window: 7 day-of-week buckets
// for weekly, 4 week buckets for monthly. Every bucket is present even when
// zero.
func (uc *GetReportUseCase) Activity(ctx context.Context, chatID int64, w Window) ([]domain.ChartPoint, error) {
	days := uc.windowDays(w)
	counts, err := uc.stats.DailyTotals(ctx, chatID, days[0], days[len(days)-1])
	if err != nil {
		return nil, uc.classifyScanError(err)
	}

	if w == WindowMonthly {
		points := make([]domain.ChartPoint, 4)
		for i := range points {
			var sum int64
			for _, day := range days[i*7 : (i+1)*7] {
				sum += counts.Get(day)
			}
			points[i] = domain.ChartPoint{Label: "Week " + strconv.Itoa(i+1), Value: sum}
		}
		return points, nil
	}

	points := make([]domain.ChartPoint, 0, len(days))
	for _, day := range days {
		t, perr := time.Parse(dayFormat, day)
		if perr != nil {
			return nil, perr
		}
		points = append(points, domain.ChartPoint{
			Label: t.Weekday().String()[:3],
			Value: counts.Get(day),
		})
	}
	return points, nil
}

// Leaderboard returns the top-N users by message count, descending; ties
// keep the source's first-seen order.
func (uc *GetReportUseCase) Leaderboard(ctx context.Context, chatID int64, w Window, limit int) ([]domain.LeaderboardEntry, error) {
	days := uc.windowDays(w)
	counts, err := uc.stats.UserTotals(ctx, chatID, days[0], days[len(days)-1])
	if err != nil {
		return nil, uc.classifyScanError(err)
	}

	entries := counts.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	entries = topN(entries, limit)

	uc.resolveNames(ctx, chatID, entries)
	return entries, nil
}

// TopWords returns the most used word tokens for the window. Scan path only.
func (uc *GetReportUseCase) TopWords(ctx context.Context, chatID int64, w Window, limit int) ([]domain.WordEntry, error) {
	days := uc.windowDays(w)
	counts, err := uc.words.WordTotals(ctx, chatID, days[0], days[len(days)-1])
	if err != nil {
		return nil, uc.classifyScanError(err)
	}

	entries := counts.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	return topN(entries, limit), nil
}

func topN[T any](entries []T, limit int) []T {
	if limit <= 0 {
		limit = defaultTopN
	}
	if limit > maxTopN {
		limit = maxTopN
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// resolveNames fills display names missing from the source. Best-effort: an
// unresolved entry falls back to the numeric id.
func (uc *GetReportUseCase) resolveNames(ctx context.Context, chatID int64, entries []domain.LeaderboardEntry) {
	var missing []int64
	for _, e := range entries {
		if e.Username == "" {
			missing = append(missing, e.UserID)
		}
	}
	if len(missing) == 0 {
		return
	}

	names, err := uc.names.DisplayNames(ctx, chatID, missing)
	if err != nil {
		uc.logger.Warn("display name lookup failed", "chat_id", chatID, "err", err)
		names = nil
	}
	for i := range entries {
		if entries[i].Username != "" {
			continue
		}
		if name, ok := names[entries[i].UserID]; ok && name != "" {
			entries[i].Username = name
		} else {
			entries[i].Username = "user " + strconv.FormatInt(entries[i].UserID, 10)
		}
	}
}

// classifyScanError translates batch-level failures into caller-facing ones:
// dominated-by-rate-limit batches ask the user to narrow scope, everything
// else is a generic retry.
func (uc *GetReportUseCase) classifyScanError(err error) error {
	switch {
	case errors.Is(err, batch.ErrRateLimited):
		return errors.Join(ErrRateLimited, err)
	case errors.Is(err, batch.ErrBatchFailed):
		return errors.Join(ErrUnavailable, err)
	default:
		return err
	}
}
