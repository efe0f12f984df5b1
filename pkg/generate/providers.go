package generate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"
)

// New builds the Generator for cfg.Provider, wrapped with the configured rate limit.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (Generator, error) {
	m, err := newChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}

	chat := NewChat(m, cfg.Provider, cfg.TimeoutDuration(), logger)
	return NewLimited(chat, cfg.RequestsPerMinute), nil
}

func newChatModel(ctx context.Context, cfg *Config) (model.BaseChatModel, error) {
	switch cfg.Provider {
	case ProviderBedrock:
		return claude.NewChatModel(ctx, &claude.Config{
			ByBedrock:       true,
			AccessKey:       cfg.AccessKey,
			SecretAccessKey: cfg.SecretKey,
			SessionToken:    cfg.SessionToken,
			Region:          cfg.Region,
			Model:           cfg.Model,
			MaxTokens:       cfg.MaxTokens,
		})
	case ProviderAnthropic:
		var baseURL *string
		if cfg.BaseURL != "" {
			baseURL = &cfg.BaseURL
		}
		return claude.NewChatModel(ctx, &claude.Config{
			APIKey:    cfg.APIKey,
			BaseURL:   baseURL,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
		})
	case ProviderOpenAI:
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
	case ProviderGemini:
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		return gemini.NewChatModel(ctx, &gemini.Config{
			Client: client,
			Model:  cfg.Model,
		})
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
}
