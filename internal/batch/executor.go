// Package batch runs collections of independent fetch operations in
// fixed-size windows, classifies every failure, and decides between
// partial-success and hard failure.
package batch

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"
)

var (
	// ErrRateLimited means the batch failed and rate limiting dominated the
	// failures; the caller should narrow its scope or back off.
	ErrRateLimited = errors.New("batch: rate limited")
	// ErrBatchFailed means the batch failed for mixed or unknown reasons.
	ErrBatchFailed = errors.New("batch: too many failures")
)

// criticalWindowFraction is the share of failures within one window at or
// above which the window counts as critical.
const criticalWindowFraction = 0.5

// minSuccessRate is the overall success rate the batch must exceed to be
// accepted when a window went critical.
const minSuccessRate = 0.5

// Operation produces one value. The executor never retries it.
type Operation[T any] func(ctx context.Context) (T, error)

type Config struct {
	// BatchSize caps in-flight operations per window. Defaults to 10.
	BatchSize int
	// Delay separates consecutive windows to respect external rate limits.
	Delay time.Duration
}

type Failure struct {
	Index int
	Kind  FailureKind
	Err   error
}

type Metrics struct {
	Duration    time.Duration
	Total       int
	Succeeded   int
	PerKind     map[FailureKind]int
	SuccessRate float64
	// Throughput is successful operations per second.
	Throughput float64
}

// Result collects the outcome of one executor invocation. Values is
// index-stable: Values[i] corresponds to the i-th input operation and is only
// meaningful when OK[i] is true.
type Result[T any] struct {
	Values   []T
	OK       []bool
	Failures []Failure
	Metrics  Metrics

	HasRateLimitErrors  bool
	HasCriticalFailures bool
}

// Collect returns the successful values in input order.
func (r *Result[T]) Collect() []T {
	out := make([]T, 0, r.Metrics.Succeeded)
	for i, ok := range r.OK {
		if ok {
			out = append(out, r.Values[i])
		}
	}
	return out
}

// Err applies the partial-success policy: a batch only fails hard when a
// window went critical and at most half of all operations succeeded.
// The error distinguishes exhausted rate limits from everything else.
func (r *Result[T]) Err() error {
	if !r.HasCriticalFailures || r.Metrics.SuccessRate > minSuccessRate {
		return nil
	}
	rateLimited := r.Metrics.PerKind[KindRateLimited]
	if rateLimited*2 >= len(r.Failures) {
		return ErrRateLimited
	}
	return ErrBatchFailed
}

type Executor struct {
	cfg    Config
	logger *slog.Logger
}

func NewExecutor(cfg Config, logger *slog.Logger) *Executor {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{cfg: cfg, logger: logger}
}

// Run executes ops in windows of at most BatchSize with full concurrency
// inside a window and Delay between windows. Result order matches input
// order regardless of completion order.
func Run[T any](ctx context.Context, e *Executor, ops []Operation[T]) *Result[T] {
	start := time.Now()
	res := &Result[T]{
		Values: make([]T, len(ops)),
		OK:     make([]bool, len(ops)),
		Metrics: Metrics{
			Total:   len(ops),
			PerKind: make(map[FailureKind]int),
		},
	}

	var mu sync.Mutex

	for lo := 0; lo < len(ops); lo += e.cfg.BatchSize {
		hi := lo + e.cfg.BatchSize
		if hi > len(ops) {
			hi = len(ops)
		}

		if lo > 0 && e.cfg.Delay > 0 {
			select {
			case <-time.After(e.cfg.Delay):
			case <-ctx.Done():
			}
		}

		var wg sync.WaitGroup
		windowFailures := 0
		for i := lo; i < hi; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				v, err := ops[i](ctx)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					kind := Classify(err)
					res.Failures = append(res.Failures, Failure{Index: i, Kind: kind, Err: err})
					res.Metrics.PerKind[kind]++
					windowFailures++
					return
				}
				res.Values[i] = v
				res.OK[i] = true
				res.Metrics.Succeeded++
			}(i)
		}
		wg.Wait()

		if float64(windowFailures) >= criticalWindowFraction*float64(hi-lo) {
			res.HasCriticalFailures = true
		}
	}

	// Completion order of goroutines is not deterministic; report failures in
	// input-index order.
	sort.Slice(res.Failures, func(i, j int) bool {
		return res.Failures[i].Index < res.Failures[j].Index
	})

	res.Metrics.Duration = time.Since(start)
	if res.Metrics.Total > 0 {
		res.Metrics.SuccessRate = float64(res.Metrics.Succeeded) / float64(res.Metrics.Total)
	}
	if secs := res.Metrics.Duration.Seconds(); secs > 0 {
		res.Metrics.Throughput = float64(res.Metrics.Succeeded) / secs
	}
	res.HasRateLimitErrors = res.Metrics.PerKind[KindRateLimited] > 0

	if len(res.Failures) > 0 && res.Err() == nil {
		e.logger.Warn("batch completed with partial failures",
			"total", res.Metrics.Total,
			"failed", len(res.Failures),
			"success_rate", res.Metrics.SuccessRate,
		)
	}

	return res
}
