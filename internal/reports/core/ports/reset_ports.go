package ports

import "context"

// The reset spans independent stores; each wiper proceeds on its own and a
// failure in one never blocks the others.

type CounterWiper interface {
	WipeCounters(ctx context.Context, chatID int64) error
}

type MessageWiper interface {
	WipeMessages(ctx context.Context, chatID int64) error
}

type DailyCountsWiper interface {
	WipeDailyCounts(ctx context.Context, chatID int64) error
}
