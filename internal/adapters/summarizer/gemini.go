package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiSummarizer summarizes text with Google Gemini
type GeminiSummarizer struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
	minWords  int
	maxWords  int
	logger    *zap.Logger
}

// NewGeminiSummarizer creates a new Gemini summarizer
func NewGeminiSummarizer(
	ctx context.Context,
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	minWords int,
	maxWords int,
	logger *zap.Logger,
) (*GeminiSummarizer, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))
	model.SystemInstruction = genai.NewUserContent(genai.Text(systemPrompt))

	return &GeminiSummarizer{
		client:    client,
		model:     model,
		modelName: modelName,
		minWords:  minWords,
		maxWords:  maxWords,
		logger:    logger,
	}, nil
}

// Close closes the Gemini client
func (s *GeminiSummarizer) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// Summarize returns a summary of the text
func (s *GeminiSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	resp, err := s.model.GenerateContent(ctx, genai.Text(buildPrompt(text, s.minWords, s.maxWords)))
	if err != nil {
		return "", fmt.Errorf("failed to generate content with Gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("empty response from Gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}

	summary := cleanSummary(sb.String())
	if summary == "" {
		return "", errors.New("empty summary from Gemini")
	}
	s.logger.Debug("Gemini summary generated", zap.String("model", s.modelName))
	return summary, nil
}
