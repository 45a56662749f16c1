package usecase_test

import (
	"context"
	"errors"
	"testing"

	"chat-stats-service/internal/reports/core/usecase"
)

type fakeWiper struct {
	err   error
	calls int
}

func (f *fakeWiper) WipeCounters(ctx context.Context, chatID int64) error {
	f.calls++
	return f.err
}

func (f *fakeWiper) WipeMessages(ctx context.Context, chatID int64) error {
	f.calls++
	return f.err
}

func (f *fakeWiper) WipeDailyCounts(ctx context.Context, chatID int64) error {
	f.calls++
	return f.err
}

func TestReset_AllTargetsSucceed(t *testing.T) {
	c, m, d := &fakeWiper{}, &fakeWiper{}, &fakeWiper{}
	uc := usecase.NewResetChatUseCase(c, m, d, nil)

	res, err := uc.Execute(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Failed) != 0 {
		t.Fatalf("expected no failed targets, got %v", res.Failed)
	}
	if c.calls != 1 || m.calls != 1 || d.calls != 1 {
		t.Fatalf("expected every target wiped once")
	}
}

func TestReset_OneFailureDoesNotBlockOthers(t *testing.T) {
	c := &fakeWiper{err: errors.New("kv down")}
	m, d := &fakeWiper{}, &fakeWiper{}
	uc := usecase.NewResetChatUseCase(c, m, d, nil)

	res, err := uc.Execute(context.Background(), 1)
	if !errors.Is(err, usecase.ErrPartialReset) {
		t.Fatalf("expected ErrPartialReset, got %v", err)
	}
	if len(res.Failed) != 1 || res.Failed[0] != "counters" {
		t.Fatalf("expected only counters to fail, got %v", res.Failed)
	}
	// The remaining targets must still have been attempted.
	if m.calls != 1 || d.calls != 1 {
		t.Fatalf("remaining targets were not attempted")
	}
}
