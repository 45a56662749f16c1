package batch_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"chat-stats-service/internal/batch"
)

func succeed(v int) batch.Operation[int] {
	return func(ctx context.Context) (int, error) { return v, nil }
}

func fail(err error) batch.Operation[int] {
	return func(ctx context.Context) (int, error) { return 0, err }
}

func TestRun_ResultOrderMatchesInputOrder(t *testing.T) {
	// Later inputs complete first; output order must still follow input order.
	ops := make([]batch.Operation[int], 8)
	for i := range ops {
		i := i
		ops[i] = func(ctx context.Context) (int, error) {
			time.Sleep(time.Duration(len(ops)-i) * time.Millisecond)
			return i * 10, nil
		}
	}

	e := batch.NewExecutor(batch.Config{BatchSize: 8}, nil)
	res := batch.Run(context.Background(), e, ops)

	if err := res.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := res.Collect()
	for i, v := range got {
		if v != i*10 {
			t.Fatalf("position %d: expected %d, got %d", i, i*10, v)
		}
	}
}

func TestRun_WindowsRespectBatchSize(t *testing.T) {
	var inFlight, peak int64

	ops := make([]batch.Operation[int], 12)
	for i := range ops {
		ops[i] = func(ctx context.Context) (int, error) {
			n := atomic.AddInt64(&inFlight, 1)
			for {
				p := atomic.LoadInt64(&peak)
				if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt64(&inFlight, -1)
			return 1, nil
		}
	}

	e := batch.NewExecutor(batch.Config{BatchSize: 4}, nil)
	res := batch.Run(context.Background(), e, ops)

	if res.Metrics.Succeeded != 12 {
		t.Fatalf("expected 12 successes, got %d", res.Metrics.Succeeded)
	}
	if p := atomic.LoadInt64(&peak); p > 4 {
		t.Fatalf("concurrency exceeded batch size: peak %d", p)
	}
}

func TestRun_MajorityRateLimitedFailsHard(t *testing.T) {
	rateErr := batch.Classified(batch.KindRateLimited, errors.New("429 from provider"))

	var ops []batch.Operation[int]
	for i := 0; i < 3; i++ {
		ops = append(ops, succeed(i))
	}
	for i := 0; i < 5; i++ {
		ops = append(ops, fail(rateErr))
	}

	e := batch.NewExecutor(batch.Config{BatchSize: 8}, nil)
	res := batch.Run(context.Background(), e, ops)

	if !res.HasCriticalFailures {
		t.Fatalf("expected critical failures")
	}
	if !res.HasRateLimitErrors {
		t.Fatalf("expected rate limit flag")
	}
	if err := res.Err(); !errors.Is(err, batch.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestRun_ExactlyHalfFailuresFailHard(t *testing.T) {
	// A 50% failure share is already critical; it must not slip through as a
	// silent partial success.
	rateErr := batch.Classified(batch.KindRateLimited, errors.New("429 from provider"))
	ops := []batch.Operation[int]{
		succeed(1),
		succeed(2),
		fail(rateErr),
		fail(rateErr),
	}

	e := batch.NewExecutor(batch.Config{BatchSize: 4}, nil)
	res := batch.Run(context.Background(), e, ops)

	if !res.HasCriticalFailures {
		t.Fatalf("expected half-failed window to count as critical")
	}
	if res.Metrics.SuccessRate != 0.5 {
		t.Fatalf("expected success rate 0.5, got %v", res.Metrics.SuccessRate)
	}
	if err := res.Err(); !errors.Is(err, batch.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestRun_MinorityFailuresAcceptPartials(t *testing.T) {
	var ops []batch.Operation[int]
	for i := 0; i < 7; i++ {
		ops = append(ops, succeed(i))
	}
	ops = append(ops, fail(errors.New("connection reset")))
	ops = append(ops, fail(errors.New("boom")))

	e := batch.NewExecutor(batch.Config{BatchSize: 9}, nil)
	res := batch.Run(context.Background(), e, ops)

	if err := res.Err(); err != nil {
		t.Fatalf("expected partial success, got %v", err)
	}
	if got := len(res.Collect()); got != 7 {
		t.Fatalf("expected 7 partial results, got %d", got)
	}
	if res.Metrics.PerKind[batch.KindNetwork] != 1 {
		t.Fatalf("expected one network failure, got %d", res.Metrics.PerKind[batch.KindNetwork])
	}
	if res.Metrics.PerKind[batch.KindUnknown] != 1 {
		t.Fatalf("expected one unknown failure, got %d", res.Metrics.PerKind[batch.KindUnknown])
	}
}

func TestRun_MixedFailuresBelowThresholdFailGeneric(t *testing.T) {
	// 1 success out of 5 with mostly non-rate-limit failures: hard failure,
	// but not a rate-limit one.
	ops := []batch.Operation[int]{
		succeed(1),
		fail(errors.New("boom")),
		fail(errors.New("boom")),
		fail(errors.New("boom")),
		fail(batch.Classified(batch.KindRateLimited, errors.New("429"))),
	}

	e := batch.NewExecutor(batch.Config{BatchSize: 5}, nil)
	res := batch.Run(context.Background(), e, ops)

	if err := res.Err(); !errors.Is(err, batch.ErrBatchFailed) {
		t.Fatalf("expected ErrBatchFailed, got %v", err)
	}
}

func TestRun_FailureIndexesAreStable(t *testing.T) {
	ops := []batch.Operation[int]{
		succeed(0),
		fail(errors.New("a")),
		succeed(2),
		fail(errors.New("b")),
	}

	e := batch.NewExecutor(batch.Config{BatchSize: 4}, nil)
	res := batch.Run(context.Background(), e, ops)

	if len(res.Failures) != 2 {
		t.Fatalf("expected 2 failures, got %d", len(res.Failures))
	}
	if res.Failures[0].Index != 1 || res.Failures[1].Index != 3 {
		t.Fatalf("failures out of order: %+v", res.Failures)
	}
}

func TestRun_EmptyInput(t *testing.T) {
	e := batch.NewExecutor(batch.Config{}, nil)
	res := batch.Run[int](context.Background(), e, nil)

	if err := res.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Collect()) != 0 {
		t.Fatalf("expected no results")
	}
}

func TestRun_DelaySeparatesWindows(t *testing.T) {
	var stamps []time.Time
	var mu = make(chan struct{}, 1)
	mu <- struct{}{}

	ops := make([]batch.Operation[int], 4)
	for i := range ops {
		ops[i] = func(ctx context.Context) (int, error) {
			<-mu
			stamps = append(stamps, time.Now())
			mu <- struct{}{}
			return 0, nil
		}
	}

	e := batch.NewExecutor(batch.Config{BatchSize: 2, Delay: 20 * time.Millisecond}, nil)
	start := time.Now()
	batch.Run(context.Background(), e, ops)

	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("expected at least one inter-window delay, took %v", elapsed)
	}
	if len(stamps) != 4 {
		t.Fatalf("expected 4 executions, got %d", len(stamps))
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want batch.FailureKind
	}{
		{context.DeadlineExceeded, batch.KindTimeout},
		{errors.New("rate limit exceeded"), batch.KindRateLimited},
		{errors.New("too many requests"), batch.KindRateLimited},
		{errors.New("dial tcp: connection refused"), batch.KindNetwork},
		{errors.New("request timeout"), batch.KindTimeout},
		{errors.New("something else"), batch.KindUnknown},
		{fmt.Errorf("wrapped: %w", batch.Classified(batch.KindNetwork, errors.New("x"))), batch.KindNetwork},
	}

	for _, c := range cases {
		if got := batch.Classify(c.err); got != c.want {
			t.Fatalf("Classify(%v): expected %v, got %v", c.err, c.want, got)
		}
	}
}
