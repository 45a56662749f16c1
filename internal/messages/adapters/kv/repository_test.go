package kv_test

import (
	"context"
	"testing"
	"time"

	"chat-stats-service/internal/kvstore"
	"chat-stats-service/internal/messages/adapters/kv"
	"chat-stats-service/internal/messages/core/domain"
)

func newRepo(t *testing.T) (*kv.Repository, *kvstore.PebbleStore) {
	t.Helper()
	store, err := kvstore.OpenPebble(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return kv.NewRepository(store, nil, nil, nil), store
}

func msg(chatID, userID int64, id, text string, at time.Time) *domain.Message {
	return &domain.Message{
		ID:       id,
		ChatID:   chatID,
		UserID:   userID,
		Username: "u",
		Text:     text,
		SentAt:   at,
	}
}

func TestAppendAndReadWindow(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	for i, text := range []string{"first", "second", "third", "fourth"} {
		m := msg(9, 1, string(rune('a'+i))+"-id", text, base.Add(time.Duration(i)*time.Hour))
		if err := repo.AppendMessage(ctx, m); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	// Another chat must not leak into the window.
	if err := repo.AppendMessage(ctx, msg(10, 1, "other", "noise", base)); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := repo.ReadWindow(ctx, 9, base.Add(time.Hour), base.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("read window: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 messages in window, got %d", len(got))
	}
	if got[0].Text != "second" || got[1].Text != "third" {
		t.Fatalf("expected send order [second third], got [%s %s]", got[0].Text, got[1].Text)
	}
}

func TestReadWindowEmptyChat(t *testing.T) {
	repo, _ := newRepo(t)

	got, err := repo.ReadWindow(context.Background(), 404, time.Unix(0, 0), time.Now())
	if err != nil {
		t.Fatalf("read window: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no messages, got %d", len(got))
	}
}

func TestParseMessageKeyRoundTrip(t *testing.T) {
	at := time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)
	key := kv.MessageKey(-100500, at, "2b1f0c1e-id")

	ts, ok := kv.ParseMessageKey(key)
	if !ok {
		t.Fatalf("expected key %q to parse", key)
	}
	if !ts.Equal(at) {
		t.Fatalf("expected %v, got %v", at, ts)
	}

	if _, ok := kv.ParseMessageKey("count:chat:1:2024-01-01"); ok {
		t.Fatalf("message parser accepted a counter key")
	}
}
