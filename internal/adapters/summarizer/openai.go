package summarizer

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAISummarizer summarizes text with the OpenAI chat completion API
type OpenAISummarizer struct {
	client      *openai.Client
	modelName   string
	maxTokens   int
	temperature float32
	topP        float32
	minWords    int
	maxWords    int
	logger      *zap.Logger
}

// NewOpenAISummarizer creates a new OpenAI summarizer
func NewOpenAISummarizer(
	client *openai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	minWords int,
	maxWords int,
	logger *zap.Logger,
) *OpenAISummarizer {
	return &OpenAISummarizer{
		client:      client,
		modelName:   modelName,
		maxTokens:   maxTokens,
		temperature: temperature,
		topP:        topP,
		minWords:    minWords,
		maxWords:    maxWords,
		logger:      logger,
	}
}

// Summarize returns a summary of the text
func (s *OpenAISummarizer) Summarize(ctx context.Context, text string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: s.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(text, s.minWords, s.maxWords),
			},
		},
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
		TopP:        s.topP,
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty response from OpenAI")
	}

	summary := cleanSummary(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", errors.New("empty summary from OpenAI")
	}

	s.logger.Debug("OpenAI summary generated",
		zap.String("model", s.modelName),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))
	return summary, nil
}
