package ports

import "context"

type DailyCountsPort interface {
	// UpsertDailyCount atomically adds one message to the relational summary
	// row for (chat, user, day). Failures are non-fatal to ingestion.
	UpsertDailyCount(ctx context.Context, chatID, userID int64, username, day string) error
}
