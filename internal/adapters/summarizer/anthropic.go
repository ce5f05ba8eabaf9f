package summarizer

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
)

// AnthropicSummarizer summarizes text with the Anthropic messages API
type AnthropicSummarizer struct {
	client      anthropic.Client
	modelName   string
	maxTokens   int
	temperature float32
	minWords    int
	maxWords    int
	logger      *zap.Logger
}

// NewAnthropicSummarizer creates a new Anthropic summarizer. Extra request
// options are applied after the API key.
func NewAnthropicSummarizer(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	minWords int,
	maxWords int,
	logger *zap.Logger,
	opts ...option.RequestOption,
) *AnthropicSummarizer {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &AnthropicSummarizer{
		client:      anthropic.NewClient(opts...),
		modelName:   modelName,
		maxTokens:   maxTokens,
		temperature: temperature,
		minWords:    minWords,
		maxWords:    maxWords,
		logger:      logger,
	}
}

// Summarize returns a summary of the text
func (s *AnthropicSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	message, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(s.modelName),
		MaxTokens:   int64(s.maxTokens),
		Temperature: anthropic.Float(float64(s.temperature)),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(text, s.minWords, s.maxWords))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create message with Anthropic: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			summary := cleanSummary(block.Text)
			if summary == "" {
				break
			}
			s.logger.Debug("Anthropic summary generated",
				zap.String("model", s.modelName),
				zap.Int64("tokens_in", message.Usage.InputTokens),
				zap.Int64("tokens_out", message.Usage.OutputTokens))
			return summary, nil
		}
	}
	return "", errors.New("no text content in Anthropic response")
}
