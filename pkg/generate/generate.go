// Package generate adapts chat-model providers to the single prompt-in, text-out call
// the pipeline needs.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"
)

var (
	// ErrEmptyResponse indicates the model returned no usable text.
	ErrEmptyResponse = errors.New("model returned an empty response")
	// ErrUnknownProvider indicates an unsupported provider name.
	ErrUnknownProvider = errors.New("unknown model provider")
)

// Options are the per-call sampling parameters.
type Options struct {
	MaxTokens   int
	Temperature float32
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// Func adapts an ordinary function to the Generator interface.
type Func func(ctx context.Context, prompt string, opts Options) (string, error)

func (f Func) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	return f(ctx, prompt, opts)
}

// Chat is a Generator over an eino chat model. Each call sends the prompt as a single
// user message.
type Chat struct {
	model    model.BaseChatModel
	provider string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewChat wraps m. A positive timeout bounds each call.
func NewChat(m model.BaseChatModel, provider string, timeout time.Duration, logger *slog.Logger) *Chat {
	return &Chat{
		model:    m,
		provider: provider,
		timeout:  timeout,
		logger:   logger.With("system", "generate", "provider", provider),
	}
}

func (c *Chat) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var callOpts []model.Option
	if opts.MaxTokens > 0 {
		callOpts = append(callOpts, model.WithMaxTokens(opts.MaxTokens))
	}
	callOpts = append(callOpts, model.WithTemperature(opts.Temperature))

	start := time.Now()
	msg, err := c.model.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)}, callOpts...)
	if err != nil {
		return "", fmt.Errorf("%s generate: %w", c.provider, err)
	}

	text := strings.TrimSpace(msg.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}

	c.logger.DebugContext(ctx, "generation complete",
		"prompt_chars", len(prompt),
		"response_chars", len(text),
		"duration", time.Since(start),
	)
	return text, nil
}

// Limited paces calls to the wrapped Generator with a token-bucket limiter.
type Limited struct {
	next    Generator
	limiter *rate.Limiter
}

// NewLimited allows perMinute calls per minute with a burst of one. A non-positive
// perMinute returns next unchanged.
func NewLimited(next Generator, perMinute int) Generator {
	if perMinute <= 0 {
		return next
	}
	return &Limited{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
	}
}

func (l *Limited) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	return l.next.Generate(ctx, prompt, opts)
}
