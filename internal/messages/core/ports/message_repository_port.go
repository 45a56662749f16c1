package ports

import (
	"context"

	"chat-stats-service/internal/messages/core/domain"
)

type MessageRepositoryPort interface {
	// AppendMessage stores the immutable raw event. Append-only; the only
	// deletion path is an explicit chat reset.
	AppendMessage(ctx context.Context, m *domain.Message) error
}
