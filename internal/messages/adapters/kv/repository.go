package kv

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"chat-stats-service/internal/batch"
	"chat-stats-service/internal/kvscan"
	"chat-stats-service/internal/kvstore"
	"chat-stats-service/internal/messages/core/domain"
	"chat-stats-service/internal/messages/core/ports"
)

// storedMessage is the JSON value written for each event.
type storedMessage struct {
	ID       string `json:"id"`
	ChatID   int64  `json:"chat_id"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Text     string `json:"text"`
	SentAt   int64  `json:"sent_at"`
}

type Repository struct {
	store    kvstore.Store
	scanner  *kvscan.Scanner
	executor *batch.Executor
}

func NewRepository(store kvstore.Store, scanner *kvscan.Scanner, executor *batch.Executor, logger *slog.Logger) *Repository {
	if scanner == nil {
		scanner = kvscan.New(store)
	}
	if executor == nil {
		executor = batch.NewExecutor(batch.Config{}, logger)
	}
	return &Repository{store: store, scanner: scanner, executor: executor}
}

var _ ports.MessageRepositoryPort = (*Repository)(nil)

func (r *Repository) AppendMessage(ctx context.Context, m *domain.Message) error {
	value, err := json.Marshal(storedMessage{
		ID:       m.ID,
		ChatID:   m.ChatID,
		UserID:   m.UserID,
		Username: m.Username,
		Text:     m.Text,
		SentAt:   m.SentAt.UTC().Unix(),
	})
	if err != nil {
		return err
	}
	return r.store.Put(ctx, MessageKey(m.ChatID, m.SentAt, m.ID), value, 0)
}

// ReadWindow fetches every message for the chat within [from, to), in send
// order. Keys are range-filtered before any value is fetched; values are
// fetched through the batch executor, so partial outages degrade to partial
// results under its policy.
func (r *Repository) ReadWindow(ctx context.Context, chatID int64, from, to time.Time) ([]domain.Message, error) {
	scan, err := r.scanner.ScanAll(ctx, MessagePrefix(chatID))
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(scan.Keys))
	for _, k := range scan.Keys {
		ts, ok := ParseMessageKey(k)
		if !ok {
			continue
		}
		if ts.Before(from) || !ts.Before(to) {
			continue
		}
		keys = append(keys, k)
	}

	ops := make([]batch.Operation[domain.Message], len(keys))
	for i, key := range keys {
		key := key
		ops[i] = func(ctx context.Context) (domain.Message, error) {
			raw, err := r.store.Get(ctx, key)
			if err != nil {
				return domain.Message{}, err
			}
			var sm storedMessage
			if err := json.Unmarshal(raw, &sm); err != nil {
				return domain.Message{}, err
			}
			return domain.Message{
				ID:       sm.ID,
				ChatID:   sm.ChatID,
				UserID:   sm.UserID,
				Username: sm.Username,
				Text:     sm.Text,
				SentAt:   time.Unix(sm.SentAt, 0).UTC(),
			}, nil
		}
	}

	res := batch.Run(ctx, r.executor, ops)
	if err := res.Err(); err != nil {
		return nil, err
	}
	return res.Collect(), nil
}
