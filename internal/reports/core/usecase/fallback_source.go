package usecase

import (
	"context"
	"log/slog"

	"chat-stats-service/internal/reports/core/domain"
	"chat-stats-service/internal/reports/core/ports"
)

// FallbackSource prefers the relational source and falls back to the counter
// scan when it errors or has no rows. Falling back is informational, not an
// error: a freshly deployed or unreachable relational store must still yield
// an answer.
type FallbackSource struct {
	primary  ports.StatsSource
	fallback ports.StatsSource
	logger   *slog.Logger
}

func NewFallbackSource(primary, fallback ports.StatsSource, logger *slog.Logger) *FallbackSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackSource{primary: primary, fallback: fallback, logger: logger}
}

var _ ports.StatsSource = (*FallbackSource)(nil)

func (s *FallbackSource) DailyTotals(ctx context.Context, chatID int64, fromDay, toDay string) (*domain.DayCounts, error) {
	counts, err := s.primary.DailyTotals(ctx, chatID, fromDay, toDay)
	if err == nil && counts.Len() > 0 {
		return counts, nil
	}
	s.logFallback(chatID, "daily_totals", err)
	return s.fallback.DailyTotals(ctx, chatID, fromDay, toDay)
}

func (s *FallbackSource) UserTotals(ctx context.Context, chatID int64, fromDay, toDay string) (*domain.IdentityCounts, error) {
	counts, err := s.primary.UserTotals(ctx, chatID, fromDay, toDay)
	if err == nil && counts.Len() > 0 {
		return counts, nil
	}
	s.logFallback(chatID, "user_totals", err)
	return s.fallback.UserTotals(ctx, chatID, fromDay, toDay)
}

func (s *FallbackSource) logFallback(chatID int64, query string, err error) {
	if err != nil {
		s.logger.Info("relational source unavailable, using counter scan",
			"chat_id", chatID, "query", query, "err", err)
		return
	}
	s.logger.Info("relational source empty, using counter scan",
		"chat_id", chatID, "query", query)
}
