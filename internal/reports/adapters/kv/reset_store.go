package kv

import (
	"context"
	"errors"
	"fmt"

	"chat-stats-service/internal/counters"
	"chat-stats-service/internal/kvscan"
	"chat-stats-service/internal/kvstore"
	messageskv "chat-stats-service/internal/messages/adapters/kv"
	"chat-stats-service/internal/reports/core/ports"
)

// ResetStore sweeps the chat's key prefixes. Each prefix is swept fully even
// when earlier deletes failed; failures are reported joined so the caller
// can log them per-prefix.
type ResetStore struct {
	store   kvstore.Store
	scanner *kvscan.Scanner
}

func NewResetStore(store kvstore.Store, scanner *kvscan.Scanner) *ResetStore {
	if scanner == nil {
		scanner = kvscan.New(store)
	}
	return &ResetStore{store: store, scanner: scanner}
}

var (
	_ ports.CounterWiper = (*ResetStore)(nil)
	_ ports.MessageWiper = (*ResetStore)(nil)
)

func (r *ResetStore) WipeCounters(ctx context.Context, chatID int64) error {
	prefixes := []string{
		counters.ChatDayPrefix(chatID),
		counters.UserDayPrefix(chatID),
		counters.WordDayPrefix(chatID),
		counters.UsernamePrefix(chatID),
	}

	var errs []error
	for _, prefix := range prefixes {
		if err := r.wipePrefix(ctx, prefix); err != nil {
			errs = append(errs, fmt.Errorf("prefix %s: %w", prefix, err))
		}
	}
	return errors.Join(errs...)
}

func (r *ResetStore) WipeMessages(ctx context.Context, chatID int64) error {
	return r.wipePrefix(ctx, messageskv.MessagePrefix(chatID))
}

func (r *ResetStore) wipePrefix(ctx context.Context, prefix string) error {
	scan, err := r.scanner.ScanAll(ctx, prefix)
	if err != nil {
		return err
	}

	var errs []error
	for _, key := range scan.Keys {
		if err := r.store.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	if scan.Truncated {
		// More keys than the scan cap; another sweep is needed.
		errs = append(errs, errors.New("prefix scan truncated, wipe incomplete"))
	}
	return errors.Join(errs...)
}
