package postgres

import (
	"context"

	"chat-stats-service/internal/messages/core/ports"
)

type DailyCountsRepository struct {
	db DB
}

func NewDailyCountsRepository(db DB) *DailyCountsRepository {
	return &DailyCountsRepository{db: db}
}

var _ ports.DailyCountsPort = (*DailyCountsRepository)(nil)

// The upsert is the transactional twin of the KV counters: it is written on
// the ingestion path and is the authoritative source for reports when rows
// exist.
const upsertDailyCountSQL = `
INSERT INTO daily_counts (
    chat_id,
    user_id,
    username,
    day,
    count
) VALUES (
    $1, $2, $3, $4, 1
)
ON CONFLICT (chat_id, user_id, day)
DO UPDATE SET count = daily_counts.count + 1, username = EXCLUDED.username;
`

func (r *DailyCountsRepository) UpsertDailyCount(ctx context.Context, chatID, userID int64, username, day string) error {
	_, err := r.db.ExecContext(ctx, upsertDailyCountSQL, chatID, userID, username, day)
	return err
}
