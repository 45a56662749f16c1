package uniai

import (
	"context"
	"errors"
	"strings"
	"time"

	uniaiapi "github.com/quailyquaily/uniai"

	"chat-stats-service/internal/summary/core/ports"
)

type Config struct {
	Provider string
	Endpoint string
	APIKey   string
	Model    string

	RequestTimeout time.Duration
}

// Summarizer calls the configured LLM provider through uniai.
type Summarizer struct {
	client         *uniaiapi.Client
	model          string
	requestTimeout time.Duration
}

var _ ports.SummarizerPort = (*Summarizer)(nil)

func NewSummarizer(cfg Config) *Summarizer {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	model := strings.TrimSpace(cfg.Model)

	client := uniaiapi.New(uniaiapi.Config{
		Provider:        provider,
		OpenAIAPIKey:    strings.TrimSpace(cfg.APIKey),
		OpenAIAPIBase:   strings.TrimSpace(cfg.Endpoint),
		OpenAIModel:     model,
		AnthropicAPIKey: strings.TrimSpace(cfg.APIKey),
		AnthropicModel:  model,
	})

	return &Summarizer{
		client:         client,
		model:          model,
		requestTimeout: cfg.RequestTimeout,
	}
}

func (s *Summarizer) Summarize(ctx context.Context, req ports.SummarizeRequest, opts ports.SummarizeOptions) (string, error) {
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	var sb strings.Builder
	sb.WriteString(req.UserPrompt)
	sb.WriteString("\n\n")
	sb.WriteString(strings.Join(req.Messages, "\n"))
	if req.LengthNote != "" {
		sb.WriteString("\n\n")
		sb.WriteString(req.LengthNote)
	}

	chatOpts := []uniaiapi.ChatOption{
		uniaiapi.WithReplaceMessages(
			uniaiapi.Message{Role: "system", Content: req.SystemPrompt},
			uniaiapi.Message{Role: "user", Content: sb.String()},
		),
	}
	if s.model != "" {
		chatOpts = append(chatOpts, uniaiapi.WithModel(s.model))
	}
	if opts.MaxTokens > 0 {
		chatOpts = append(chatOpts, uniaiapi.WithMaxTokens(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		chatOpts = append(chatOpts, uniaiapi.WithTemperature(opts.Temperature))
	}
	if opts.TopP > 0 {
		chatOpts = append(chatOpts, uniaiapi.WithTopP(opts.TopP))
	}
	if opts.FrequencyPenalty != 0 {
		chatOpts = append(chatOpts, uniaiapi.WithFrequencyPenalty(opts.FrequencyPenalty))
	}

	resp, err := s.client.Chat(ctx, chatOpts...)
	if err != nil {
		return "", classifyProviderError(err)
	}
	if resp == nil {
		return "", errors.New("uniai: empty response")
	}
	return resp.Text, nil
}

// classifyProviderError tags quota and rate-limit responses so callers can
// tell them apart from generic failures.
func classifyProviderError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "too many requests"),
		strings.Contains(msg, "quota"),
		strings.Contains(msg, "429"):
		return errors.Join(ports.ErrProviderLimit, err)
	default:
		return err
	}
}
