package ports

import (
	"context"
	"time"

	"chat-stats-service/internal/summary/core/domain"
)

// MessageSourcePort yields the raw messages of a chat within [from, to),
// oldest first.
type MessageSourcePort interface {
	ReadWindow(ctx context.Context, chatID int64, from, to time.Time) ([]domain.ChatMessage, error)
}
