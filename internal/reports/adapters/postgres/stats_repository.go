package postgres

import (
	"context"
	"time"

	"chat-stats-service/internal/reports/core/domain"
	"chat-stats-service/internal/reports/core/ports"
)

// StatsRepository is the authoritative report source: the daily_counts table
// is written on the ingestion path, so its sums are exact whenever rows
// exist.
type StatsRepository struct {
	db DB
}

func NewStatsRepository(db DB) *StatsRepository {
	return &StatsRepository{db: db}
}

var (
	_ ports.StatsSource      = (*StatsRepository)(nil)
	_ ports.DailyCountsWiper = (*StatsRepository)(nil)
)

const dailyTotalsSQL = `
SELECT
    day,
    SUM(count) AS total
FROM daily_counts
WHERE chat_id = $1 AND day BETWEEN $2 AND $3
GROUP BY day
ORDER BY day`

func (r *StatsRepository) DailyTotals(ctx context.Context, chatID int64, fromDay, toDay string) (*domain.DayCounts, error) {
	rows, err := r.db.QueryContext(ctx, dailyTotalsSQL, chatID, fromDay, toDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := domain.NewDayCounts()
	for rows.Next() {
		var day time.Time
		var total int64
		if err := rows.Scan(&day, &total); err != nil {
			return nil, err
		}
		counts.Add(day.UTC().Format("2006-01-02"), total)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

const userTotalsSQL = `
SELECT
    user_id,
    MAX(username) AS username,
    SUM(count) AS total
FROM daily_counts
WHERE chat_id = $1 AND day BETWEEN $2 AND $3
GROUP BY user_id
ORDER BY total DESC, MIN(day) ASC`

func (r *StatsRepository) UserTotals(ctx context.Context, chatID int64, fromDay, toDay string) (*domain.IdentityCounts, error) {
	rows, err := r.db.QueryContext(ctx, userTotalsSQL, chatID, fromDay, toDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := domain.NewIdentityCounts()
	for rows.Next() {
		var userID, total int64
		var username string
		if err := rows.Scan(&userID, &username, &total); err != nil {
			return nil, err
		}
		counts.Add(userID, username, total)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

const wipeDailyCountsSQL = `DELETE FROM daily_counts WHERE chat_id = $1`

func (r *StatsRepository) WipeDailyCounts(ctx context.Context, chatID int64) error {
	_, err := r.db.ExecContext(ctx, wipeDailyCountsSQL, chatID)
	return err
}
