package kv

import (
	"context"
	"time"

	messageskv "chat-stats-service/internal/messages/adapters/kv"
	"chat-stats-service/internal/summary/core/domain"
	"chat-stats-service/internal/summary/core/ports"
)

// MessageSource reads raw messages out of the event store for summarization.
type MessageSource struct {
	repo *messageskv.Repository
}

var _ ports.MessageSourcePort = (*MessageSource)(nil)

func NewMessageSource(repo *messageskv.Repository) *MessageSource {
	return &MessageSource{repo: repo}
}

func (s *MessageSource) ReadWindow(ctx context.Context, chatID int64, from, to time.Time) ([]domain.ChatMessage, error) {
	msgs, err := s.repo.ReadWindow(ctx, chatID, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ChatMessage, len(msgs))
	for i, m := range msgs {
		out[i] = domain.ChatMessage{
			UserID:   m.UserID,
			Username: m.Username,
			Text:     m.Text,
			SentAt:   m.SentAt,
		}
	}
	return out, nil
}
