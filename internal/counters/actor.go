// Package counters serializes counter updates so that concurrent message
// delivery for the same chat can never race a read-modify-write. Every chat
// maps to exactly one shard goroutine; that goroutine is the only writer for
// the chat's counter keys.
package counters

import (
	"context"
	"errors"
	"hash/fnv"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"chat-stats-service/internal/kvstore"
)

const (
	DefaultShards      = 32
	DefaultMailboxSize = 256
	DefaultMaxWords    = 32
)

var ErrClosed = errors.New("counters: dispatcher closed")

// IncrementRequest records one message for counting purposes.
type IncrementRequest struct {
	ChatID   int64
	UserID   int64
	Username string
	Day      string
	// Words are pre-tokenized terms from the message text; the dispatcher
	// bumps a per-word counter for each, capped at MaxWords.
	Words []string
}

type Options struct {
	Shards      int
	MailboxSize int
	MaxWords    int
}

type envelope struct {
	req  IncrementRequest
	done chan error // nil for fire-and-forget
}

type shard struct {
	mailbox chan envelope
}

// Dispatcher fans increment requests out to per-chat shards.
type Dispatcher struct {
	store    kvstore.Store
	logger   *slog.Logger
	shards   []*shard
	maxWords int

	wg      sync.WaitGroup
	mu      sync.RWMutex // guards mailbox sends against Close
	closed  bool
	dropped atomic.Int64
}

func NewDispatcher(store kvstore.Store, logger *slog.Logger, opts Options) *Dispatcher {
	if opts.Shards <= 0 {
		opts.Shards = DefaultShards
	}
	if opts.MailboxSize <= 0 {
		opts.MailboxSize = DefaultMailboxSize
	}
	if opts.MaxWords <= 0 {
		opts.MaxWords = DefaultMaxWords
	}
	if logger == nil {
		logger = slog.Default()
	}

	d := &Dispatcher{
		store:    store,
		logger:   logger,
		shards:   make([]*shard, opts.Shards),
		maxWords: opts.MaxWords,
	}
	for i := range d.shards {
		sh := &shard{mailbox: make(chan envelope, opts.MailboxSize)}
		d.shards[i] = sh
		d.wg.Add(1)
		go d.run(sh)
	}
	return d
}

func (d *Dispatcher) run(sh *shard) {
	defer d.wg.Done()
	for env := range sh.mailbox {
		err := d.apply(env.req)
		if env.done != nil {
			env.done <- err
		} else if err != nil {
			d.logger.Error("counter increment failed",
				"chat_id", env.req.ChatID, "day", env.req.Day, "err", err)
		}
	}
}

// shardFor maps a chat to its shard by FNV-1a over the chat identifier, so
// every increment for a chat lands on the same single-writer goroutine.
func (d *Dispatcher) shardFor(chatID int64) *shard {
	h := fnv.New32a()
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(chatID >> (8 * i))
	}
	h.Write(buf[:])
	return d.shards[int(h.Sum32())%len(d.shards)]
}

// Increment enqueues the request and waits until the counters are durably
// written (or the write failed).
func (d *Dispatcher) Increment(ctx context.Context, req IncrementRequest) error {
	done := make(chan error, 1)
	sh := d.shardFor(req.ChatID)

	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		return ErrClosed
	}
	select {
	case sh.mailbox <- envelope{req: req, done: done}:
		d.mu.RUnlock()
	case <-ctx.Done():
		d.mu.RUnlock()
		return ctx.Err()
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryIncrement enqueues without blocking. When the shard's mailbox is full
// the increment is dropped and logged: ingestion availability wins over
// counting completeness, and the scan fallback compensates for undercounts.
func (d *Dispatcher) TryIncrement(req IncrementRequest) bool {
	sh := d.shardFor(req.ChatID)

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}
	select {
	case sh.mailbox <- envelope{req: req}:
		return true
	default:
		d.dropped.Add(1)
		d.logger.Warn("counter increment dropped, mailbox full",
			"chat_id", req.ChatID, "dropped_total", d.dropped.Load())
		return false
	}
}

// Dropped reports how many increments were discarded since startup.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Close stops accepting requests and drains the mailboxes.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, sh := range d.shards {
		close(sh.mailbox)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// apply bumps all counters for one request, strictly sequentially within the
// shard. The store writes are durable before the caller is acknowledged.
func (d *Dispatcher) apply(req IncrementRequest) error {
	ctx := context.Background()

	if err := d.bump(ctx, ChatDayKey(req.ChatID, req.Day)); err != nil {
		return err
	}
	if err := d.bump(ctx, UserDayKey(req.ChatID, req.UserID, req.Day)); err != nil {
		return err
	}
	if req.Username != "" {
		if err := d.store.Put(ctx, UsernameKey(req.ChatID, req.UserID), []byte(req.Username), 0); err != nil {
			return err
		}
	}

	words := req.Words
	if len(words) > d.maxWords {
		words = words[:d.maxWords]
	}
	for _, w := range words {
		if w == "" {
			continue
		}
		if err := d.bump(ctx, WordDayKey(req.ChatID, w, req.Day)); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) bump(ctx context.Context, key string) error {
	cur, err := d.store.Get(ctx, key)
	if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		return err
	}

	n := int64(0)
	if len(cur) > 0 {
		parsed, perr := strconv.ParseInt(string(cur), 10, 64)
		if perr == nil {
			n = parsed
		}
	}

	return d.store.Put(ctx, key, []byte(strconv.FormatInt(n+1, 10)), 0)
}
