package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"chat-stats-service/internal/messages/core/domain"
	"chat-stats-service/internal/messages/core/ports"
)

var (
	ErrInvalidMessage = errors.New("invalid message")
	ErrFutureTime     = errors.New("timestamp cannot be in the future")
)

type IngestMessageUseCase struct {
	repo     ports.MessageRepositoryPort
	counters ports.CounterPort
	daily    ports.DailyCountsPort
	logger   *slog.Logger
	maxWords int
}

func NewIngestMessageUseCase(
	repo ports.MessageRepositoryPort,
	counters ports.CounterPort,
	daily ports.DailyCountsPort,
	logger *slog.Logger,
) *IngestMessageUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestMessageUseCase{
		repo:     repo,
		counters: counters,
		daily:    daily,
		logger:   logger,
		maxWords: 32,
	}
}

type IngestMessageInput struct {
	ChatID    int64
	UserID    int64
	Username  string
	Text      string
	Timestamp int64
}

// Execute stores the raw event and fans the counter updates out. Only the
// raw-event append can fail ingestion: counter and relational updates are
// best-effort, because the scan fallback can re-derive totals from raw
// events later.
func (uc *IngestMessageUseCase) Execute(ctx context.Context, in IngestMessageInput) (*domain.Message, error) {
	if err := uc.validateInput(in); err != nil {
		return nil, err
	}

	m := &domain.Message{
		ID:       uuid.NewString(),
		ChatID:   in.ChatID,
		UserID:   in.UserID,
		Username: in.Username,
		Text:     in.Text,
		SentAt:   time.Unix(in.Timestamp, 0).UTC(),
	}

	if err := uc.repo.AppendMessage(ctx, m); err != nil {
		return nil, err
	}

	day := m.Day()

	if ok := uc.counters.TryIncrement(ports.CounterIncrement{
		ChatID:   m.ChatID,
		UserID:   m.UserID,
		Username: m.Username,
		Day:      day,
		Words:    TokenizeWords(m.Text, uc.maxWords),
	}); !ok {
		uc.logger.Warn("counter increment dropped", "chat_id", m.ChatID, "day", day)
	}

	if err := uc.daily.UpsertDailyCount(ctx, m.ChatID, m.UserID, m.Username, day); err != nil {
		uc.logger.Error("daily count upsert failed, fallback path will compensate",
			"chat_id", m.ChatID, "day", day, "err", err)
	}

	return m, nil
}

type BulkIngestInput struct {
	Messages []IngestMessageInput
}

type BulkIngestResult struct {
	Ingested int
}

// BulkIngest validates the whole batch up front, then ingests sequentially.
func (uc *IngestMessageUseCase) BulkIngest(ctx context.Context, in BulkIngestInput) (BulkIngestResult, error) {
	var res BulkIngestResult

	for _, msg := range in.Messages {
		if err := uc.validateInput(msg); err != nil {
			return res, err
		}
	}

	for _, msg := range in.Messages {
		if _, err := uc.Execute(ctx, msg); err != nil {
			return res, err
		}
		res.Ingested++
	}

	return res, nil
}

func (uc *IngestMessageUseCase) validateInput(in IngestMessageInput) error {
	if in.ChatID == 0 || in.UserID == 0 || in.Text == "" {
		return ErrInvalidMessage
	}

	now := time.Now().Unix()
	if in.Timestamp > now {
		return ErrFutureTime
	}

	return nil
}
