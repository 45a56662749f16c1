package usecase

import (
	"context"
	"errors"
	"log/slog"

	"chat-stats-service/internal/reports/core/ports"
)

// ErrPartialReset means at least one sub-delete failed. The reset is
// best-effort by contract: the remaining targets were still attempted.
var ErrPartialReset = errors.New("reset incomplete")

type ResetChatUseCase struct {
	counters ports.CounterWiper
	messages ports.MessageWiper
	daily    ports.DailyCountsWiper
	logger   *slog.Logger
}

func NewResetChatUseCase(
	counters ports.CounterWiper,
	messages ports.MessageWiper,
	daily ports.DailyCountsWiper,
	logger *slog.Logger,
) *ResetChatUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResetChatUseCase{counters: counters, messages: messages, daily: daily, logger: logger}
}

type ResetResult struct {
	// Failed lists the targets whose deletion failed.
	Failed []string
}

// Execute deletes the chat's counters, raw messages, and relational rows.
// Each target proceeds independently; one failing never blocks the others.
func (uc *ResetChatUseCase) Execute(ctx context.Context, chatID int64) (ResetResult, error) {
	var res ResetResult

	targets := []struct {
		name string
		wipe func(context.Context, int64) error
	}{
		{"counters", uc.counters.WipeCounters},
		{"messages", uc.messages.WipeMessages},
		{"daily_counts", uc.daily.WipeDailyCounts},
	}

	for _, tgt := range targets {
		if err := tgt.wipe(ctx, chatID); err != nil {
			uc.logger.Error("reset target failed",
				"chat_id", chatID, "target", tgt.name, "err", err)
			res.Failed = append(res.Failed, tgt.name)
		}
	}

	if len(res.Failed) > 0 {
		return res, ErrPartialReset
	}
	return res, nil
}
