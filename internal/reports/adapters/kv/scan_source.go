// Package kv re-derives report totals by scanning raw counter keys. Slower
// and only eventually consistent, but it answers even when the relational
// store is unavailable or freshly deployed.
package kv

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"chat-stats-service/internal/batch"
	"chat-stats-service/internal/counters"
	"chat-stats-service/internal/kvscan"
	"chat-stats-service/internal/kvstore"
	"chat-stats-service/internal/reports/core/domain"
	"chat-stats-service/internal/reports/core/ports"
)

type ScanSource struct {
	store    kvstore.Store
	scanner  *kvscan.Scanner
	executor *batch.Executor
}

func NewScanSource(store kvstore.Store, scanner *kvscan.Scanner, executor *batch.Executor, logger *slog.Logger) *ScanSource {
	if scanner == nil {
		scanner = kvscan.New(store)
	}
	if executor == nil {
		executor = batch.NewExecutor(batch.Config{}, logger)
	}
	return &ScanSource{store: store, scanner: scanner, executor: executor}
}

var (
	_ ports.StatsSource       = (*ScanSource)(nil)
	_ ports.WordSource        = (*ScanSource)(nil)
	_ ports.DisplayNameSource = (*ScanSource)(nil)
)

// keyed pairs a parsed counter key with its fetched value.
type keyed struct {
	a, b  string // dimension fields: (day, "") or (userID, day) or (word, day)
	count int64
}

func (s *ScanSource) DailyTotals(ctx context.Context, chatID int64, fromDay, toDay string) (*domain.DayCounts, error) {
	items, err := s.fetch(ctx, counters.ChatDayPrefix(chatID), func(key string) (string, string, bool) {
		day, ok := counters.ParseChatDayKey(key)
		if !ok || day < fromDay || day > toDay {
			return "", "", false
		}
		return day, "", true
	})
	if err != nil {
		return nil, err
	}

	counts := domain.NewDayCounts()
	for _, it := range items {
		counts.Add(it.a, it.count)
	}
	return counts, nil
}

func (s *ScanSource) UserTotals(ctx context.Context, chatID int64, fromDay, toDay string) (*domain.IdentityCounts, error) {
	items, err := s.fetch(ctx, counters.UserDayPrefix(chatID), func(key string) (string, string, bool) {
		userID, day, ok := counters.ParseUserDayKey(key)
		if !ok || day < fromDay || day > toDay {
			return "", "", false
		}
		return strconv.FormatInt(userID, 10), day, true
	})
	if err != nil {
		return nil, err
	}

	counts := domain.NewIdentityCounts()
	for _, it := range items {
		userID, perr := strconv.ParseInt(it.a, 10, 64)
		if perr != nil {
			continue
		}
		counts.Add(userID, "", it.count)
	}
	return counts, nil
}

func (s *ScanSource) WordTotals(ctx context.Context, chatID int64, fromDay, toDay string) (*domain.WordCounts, error) {
	items, err := s.fetch(ctx, counters.WordDayPrefix(chatID), func(key string) (string, string, bool) {
		word, day, ok := counters.ParseWordDayKey(key)
		if !ok || day < fromDay || day > toDay {
			return "", "", false
		}
		return word, day, true
	})
	if err != nil {
		return nil, err
	}

	counts := domain.NewWordCounts()
	for _, it := range items {
		counts.Add(it.a, it.count)
	}
	return counts, nil
}

// fetch scans the prefix, keeps keys the parse function accepts, and reads
// their values through the batch executor. Key order is the store's
// ascending key order, which keeps insertion order deterministic downstream.
func (s *ScanSource) fetch(ctx context.Context, prefix string, parse func(key string) (string, string, bool)) ([]keyed, error) {
	scan, err := s.scanner.ScanAll(ctx, prefix)
	if err != nil {
		return nil, err
	}

	type accepted struct {
		key  string
		a, b string
	}
	var keep []accepted
	for _, k := range scan.Keys {
		a, b, ok := parse(k)
		if !ok {
			continue
		}
		keep = append(keep, accepted{key: k, a: a, b: b})
	}

	ops := make([]batch.Operation[int64], len(keep))
	for i, item := range keep {
		key := item.key
		ops[i] = func(ctx context.Context) (int64, error) {
			raw, err := s.store.Get(ctx, key)
			if err != nil {
				return 0, err
			}
			n, perr := strconv.ParseInt(string(raw), 10, 64)
			if perr != nil {
				return 0, nil // unreadable counter counts as zero
			}
			return n, nil
		}
	}

	res := batch.Run(ctx, s.executor, ops)
	if err := res.Err(); err != nil {
		return nil, err
	}

	out := make([]keyed, 0, len(keep))
	for i, item := range keep {
		if !res.OK[i] {
			continue
		}
		out = append(out, keyed{a: item.a, b: item.b, count: res.Values[i]})
	}
	return out, nil
}

// DisplayNames reads the denormalized username keys for the given ids. The
// id sets handed in are pre-limited, so unbounded fan-out is not a concern
// here; the executor still windows the reads.
func (s *ScanSource) DisplayNames(ctx context.Context, chatID int64, userIDs []int64) (map[int64]string, error) {
	ops := make([]batch.Operation[string], len(userIDs))
	for i, id := range userIDs {
		id := id
		ops[i] = func(ctx context.Context) (string, error) {
			raw, err := s.store.Get(ctx, counters.UsernameKey(chatID, id))
			if err != nil {
				if errors.Is(err, kvstore.ErrNotFound) {
					return "", nil
				}
				return "", err
			}
			return string(raw), nil
		}
	}

	res := batch.Run(ctx, s.executor, ops)
	if err := res.Err(); err != nil {
		return nil, err
	}

	names := make(map[int64]string, len(userIDs))
	for i, id := range userIDs {
		if res.OK[i] && res.Values[i] != "" {
			names[id] = res.Values[i]
		}
	}
	return names, nil
}
