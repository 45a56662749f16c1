package ports

import (
	"context"

	"chat-stats-service/internal/reports/core/domain"
)

// StatsSource answers windowed totals for a chat. Days are 2006-01-02
// strings; ranges are inclusive on both ends.
type StatsSource interface {
	DailyTotals(ctx context.Context, chatID int64, fromDay, toDay string) (*domain.DayCounts, error)
	UserTotals(ctx context.Context, chatID int64, fromDay, toDay string) (*domain.IdentityCounts, error)
}

// WordSource serves per-word totals. Only the counter scan path carries word
// data; the relational table does not.
type WordSource interface {
	WordTotals(ctx context.Context, chatID int64, fromDay, toDay string) (*domain.WordCounts, error)
}

// DisplayNameSource resolves user ids to display names from the denormalized
// lookup. Callers pass pre-limited id sets.
type DisplayNameSource interface {
	DisplayNames(ctx context.Context, chatID int64, userIDs []int64) (map[int64]string, error)
}
