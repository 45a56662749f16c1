package kvscan_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"chat-stats-service/internal/kvscan"
	"chat-stats-service/internal/kvstore"
)

// fakeStore pages a fixed key list like the real store would.
type fakeStore struct {
	keys      []string
	listCalls int
	listErr   error
}

func (f *fakeStore) List(ctx context.Context, prefix, cursor string, limit int) ([]string, string, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, "", f.listErr
	}

	start := 0
	if cursor != "" {
		for i, k := range f.keys {
			if k == cursor {
				start = i + 1
				break
			}
		}
	}

	end := start + limit
	if end > len(f.keys) {
		end = len(f.keys)
	}
	page := f.keys[start:end]

	next := ""
	if end < len(f.keys) {
		next = page[len(page)-1]
	}
	return page, next, nil
}

func (f *fakeStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, kvstore.ErrNotFound
}

func (f *fakeStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error { return nil }

func makeKeys(n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = fmt.Sprintf("chat:1:%05d", i)
	}
	return keys
}

func TestScanAll_MultiplePagesUntilSentinel(t *testing.T) {
	store := &fakeStore{keys: makeKeys(25)}
	sc := kvscan.New(store).WithLimits(10, 1000)

	res, err := sc.ScanAll(context.Background(), "chat:1:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Keys) != 25 {
		t.Fatalf("expected 25 keys, got %d", len(res.Keys))
	}
	if res.Truncated {
		t.Fatalf("expected no truncation")
	}
	if store.listCalls != 3 {
		t.Fatalf("expected 3 pages, got %d", store.listCalls)
	}
}

func TestScanAll_CapTruncates(t *testing.T) {
	store := &fakeStore{keys: makeKeys(100)}
	sc := kvscan.New(store).WithLimits(10, 35)

	res, err := sc.ScanAll(context.Background(), "chat:1:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Keys) != 35 {
		t.Fatalf("expected 35 keys at the cap, got %d", len(res.Keys))
	}
	if !res.Truncated {
		t.Fatalf("expected truncation flag")
	}
	// 10+10+10+5, then the cap check stops the loop.
	if store.listCalls != 4 {
		t.Fatalf("expected 4 pages, got %d", store.listCalls)
	}
}

func TestScanAll_EmptyKeySpace(t *testing.T) {
	store := &fakeStore{}
	sc := kvscan.New(store)

	res, err := sc.ScanAll(context.Background(), "chat:1:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Keys) != 0 || res.Truncated {
		t.Fatalf("expected empty untruncated result, got %+v", res)
	}
	if store.listCalls != 1 {
		t.Fatalf("expected a single page, got %d", store.listCalls)
	}
}

func TestScanAll_StoreError(t *testing.T) {
	sentinel := errors.New("boom")
	store := &fakeStore{keys: makeKeys(5), listErr: sentinel}
	sc := kvscan.New(store)

	_, err := sc.ScanAll(context.Background(), "chat:1:")
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
}
