package contracts

import (
	"context"
	"log/slog"

	"github.com/JaimeStill/counsel/internal/prompts"
	"github.com/JaimeStill/counsel/pkg/generate"
)

// classifyMaxTokens bounds the single category answer.
const classifyMaxTokens = 50

// Classifier assigns a category to contract text with one constrained model call.
type Classifier struct {
	gen         generate.Generator
	excerpt     int
	temperature float32
	logger      *slog.Logger
}

// NewClassifier creates a Classifier that shows the model at most excerpt runes of text.
func NewClassifier(gen generate.Generator, excerpt int, logger *slog.Logger) *Classifier {
	return &Classifier{
		gen:         gen,
		excerpt:     excerpt,
		temperature: 0.1,
		logger:      logger.With("system", "classifier"),
	}
}

// Classify never fails: a model error or an unmatched answer yields DefaultCategory.
func (c *Classifier) Classify(ctx context.Context, id Identity, text string) Category {
	logger := c.logger.With("contract", id.Name, "file_id", id.FileID)

	prompt := prompts.Classify(CategoryNames(), prompts.Excerpt(text, c.excerpt))
	answer, err := c.gen.Generate(ctx, prompt, generate.Options{
		MaxTokens:   classifyMaxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		logger.WarnContext(ctx, "classification failed, using default category",
			"category", DefaultCategory,
			"error", err,
		)
		return DefaultCategory
	}

	category, ok := MatchCategory(answer)
	if !ok {
		logger.WarnContext(ctx, "unrecognized classification, using default category",
			"answer", answer,
			"category", DefaultCategory,
		)
		return DefaultCategory
	}

	logger.InfoContext(ctx, "contract classified", "category", category)
	return category
}
