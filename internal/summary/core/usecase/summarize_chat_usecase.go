package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"chat-stats-service/internal/summary/core/ports"
)

var (
	ErrInvalidWindow = errors.New("invalid summary window")
	// ErrNoMessages means the window holds nothing worth summarizing.
	ErrNoMessages = errors.New("no messages in window")
	// ErrSummarizationFailed is the single user-facing failure for any map or
	// reduce call going wrong. No partial output is ever returned.
	ErrSummarizationFailed = errors.New("summarization failed")
)

type Window string

const (
	WindowWeekly  Window = "weekly"
	WindowMonthly Window = "monthly"
)

func ParseWindow(s string) (Window, error) {
	switch Window(s) {
	case WindowWeekly, "":
		return WindowWeekly, nil
	case WindowMonthly:
		return WindowMonthly, nil
	default:
		return "", ErrInvalidWindow
	}
}

const (
	defaultMaxChunkBytes  = 8000
	defaultMaxOutputChars = 2000

	systemPrompt = "You summarize group chat conversations. Be concise, neutral, and mention the most active topics and participants."
	mapPrompt    = "Summarize the following chat excerpt in a few sentences."
	reducePrompt = "The following are partial summaries of one conversation. Merge them into a single coherent summary."
)

type Config struct {
	BotHandle string
	// MaxChunkBytes bounds a chunk's rendered byte size; MaxOutputChars
	// bounds the final summary in characters.
	MaxChunkBytes  int
	MaxOutputChars int
	Options        ports.SummarizeOptions
}

type SummarizeChatUseCase struct {
	source     ports.MessageSourcePort
	summarizer ports.SummarizerPort
	cfg        Config
	logger     *slog.Logger
	now        func() time.Time
}

func NewSummarizeChatUseCase(
	source ports.MessageSourcePort,
	summarizer ports.SummarizerPort,
	cfg Config,
	logger *slog.Logger,
) *SummarizeChatUseCase {
	if cfg.MaxChunkBytes <= 0 {
		cfg.MaxChunkBytes = defaultMaxChunkBytes
	}
	if cfg.MaxOutputChars <= 0 {
		cfg.MaxOutputChars = defaultMaxOutputChars
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SummarizeChatUseCase{
		source:     source,
		summarizer: summarizer,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock overrides the time source; tests pin the window end.
func (uc *SummarizeChatUseCase) WithClock(now func() time.Time) *SummarizeChatUseCase {
	out := *uc
	out.now = now
	return &out
}

// Execute produces a length-bounded summary of the chat's messages within the
// window. A single chunk is summarized directly; a larger corpus goes through
// map calls per chunk, sequentially and in order, and one reduce call over
// the concatenated partials.
func (uc *SummarizeChatUseCase) Execute(ctx context.Context, chatID int64, w Window) (string, error) {
	to := uc.now().UTC()
	from := to.AddDate(0, 0, -7)
	if w == WindowMonthly {
		from = to.AddDate(0, 0, -28)
	}

	messages, err := uc.source.ReadWindow(ctx, chatID, from, to)
	if err != nil {
		uc.logger.Error("summary message read failed", "chat_id", chatID, "err", err)
		return "", errors.Join(ErrSummarizationFailed, err)
	}

	lines := BuildTranscript(messages, uc.cfg.BotHandle)
	if len(lines) == 0 {
		return "", ErrNoMessages
	}

	chunks := SplitChunks(lines, uc.cfg.MaxChunkBytes)
	lengthNote := "Keep the summary under " + strconv.Itoa(uc.cfg.MaxOutputChars) + " characters."

	if len(chunks) == 1 {
		out, err := uc.call(ctx, chatID, chunks[0], mapPrompt, lengthNote)
		if err != nil {
			return "", err
		}
		return truncateChars(out, uc.cfg.MaxOutputChars), nil
	}

	// Map stage. One provider call per chunk, sequential: the provider is the
	// rate limit here, not our CPU.
	partials := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		partial, err := uc.call(ctx, chatID, chunk, mapPrompt, "Keep it short.")
		if err != nil {
			uc.logger.Error("map stage failed", "chat_id", chatID, "chunk", i, "err", err)
			return "", err
		}
		partials = append(partials, strings.TrimSpace(partial))
	}

	// Reduce stage over the partial summaries, rebuilt as synthetic messages.
	out, err := uc.call(ctx, chatID, partials, reducePrompt, lengthNote)
	if err != nil {
		uc.logger.Error("reduce stage failed", "chat_id", chatID, "err", err)
		return "", err
	}
	return truncateChars(out, uc.cfg.MaxOutputChars), nil
}

func (uc *SummarizeChatUseCase) call(ctx context.Context, chatID int64, messages []string, prompt, lengthNote string) (string, error) {
	out, err := uc.summarizer.Summarize(ctx, ports.SummarizeRequest{
		Messages:     messages,
		SystemPrompt: systemPrompt,
		UserPrompt:   prompt,
		LengthNote:   lengthNote,
	}, uc.cfg.Options)
	if err != nil {
		return "", errors.Join(ErrSummarizationFailed, err)
	}
	if strings.TrimSpace(out) == "" {
		uc.logger.Error("provider returned empty summary", "chat_id", chatID)
		return "", ErrSummarizationFailed
	}
	return out, nil
}
