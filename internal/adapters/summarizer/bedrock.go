package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"
)

// anthropicBedrockVersion is the messages API version accepted by Bedrock
const anthropicBedrockVersion = "bedrock-2023-05-31"

// BedrockInvoker is the subset of the Bedrock runtime client used for summaries
type BedrockInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockSummarizer summarizes text with a model hosted on Amazon Bedrock
type BedrockSummarizer struct {
	client      BedrockInvoker
	modelID     string
	maxTokens   int
	temperature float32
	topP        float32
	minWords    int
	maxWords    int
	logger      *zap.Logger
}

// NewBedrockSummarizer creates a new Bedrock summarizer
func NewBedrockSummarizer(
	client BedrockInvoker,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	minWords int,
	maxWords int,
	logger *zap.Logger,
) *BedrockSummarizer {
	return &BedrockSummarizer{
		client:      client,
		modelID:     modelID,
		maxTokens:   maxTokens,
		temperature: temperature,
		topP:        topP,
		minWords:    minWords,
		maxWords:    maxWords,
		logger:      logger,
	}
}

// Summarize returns a summary of the text
func (s *BedrockSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	payload, err := s.payload(buildPrompt(text, s.minWords, s.maxWords))
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := s.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(s.modelID),
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	responseText, err := s.responseText(resp.Body)
	if err != nil {
		return "", err
	}
	summary := cleanSummary(responseText)
	if summary == "" {
		return "", errors.New("empty summary from Bedrock")
	}
	s.logger.Debug("Bedrock summary generated", zap.String("model", s.modelID))
	return summary, nil
}

// isAnthropicModel checks if the model is an Anthropic Claude model
func (s *BedrockSummarizer) isAnthropicModel() bool {
	return strings.Contains(s.modelID, "anthropic.")
}

// isAmazonTitanModel checks if the model is an Amazon Titan model
func (s *BedrockSummarizer) isAmazonTitanModel() bool {
	return strings.Contains(s.modelID, "amazon.titan")
}

// payload builds the model-specific request body
func (s *BedrockSummarizer) payload(prompt string) ([]byte, error) {
	switch {
	case s.isAnthropicModel():
		return json.Marshal(map[string]interface{}{
			"anthropic_version": anthropicBedrockVersion,
			"max_tokens":        s.maxTokens,
			"temperature":       s.temperature,
			"top_p":             s.topP,
			"system":            systemPrompt,
			"messages": []map[string]interface{}{
				{"role": "user", "content": prompt},
			},
		})
	case s.isAmazonTitanModel():
		return json.Marshal(map[string]interface{}{
			"inputText": systemPrompt + "\n\n" + prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": s.maxTokens,
				"temperature":   s.temperature,
				"topP":          s.topP,
			},
		})
	default:
		return json.Marshal(map[string]interface{}{
			"prompt":      systemPrompt + "\n\n" + prompt,
			"max_tokens":  s.maxTokens,
			"temperature": s.temperature,
			"top_p":       s.topP,
		})
	}
}

// responseText extracts the generated text from the model-specific response body
func (s *BedrockSummarizer) responseText(body []byte) (string, error) {
	switch {
	case s.isAnthropicModel():
		var claudeResp struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		for _, block := range claudeResp.Content {
			if block.Type == "text" {
				return block.Text, nil
			}
		}
		return "", errors.New("no text content in Claude response")
	case s.isAmazonTitanModel():
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return "", errors.New("empty response from Titan model")
		}
		return titanResp.Results[0].OutputText, nil
	default:
		var genericResp struct {
			Output     string `json:"output"`
			Text       string `json:"text"`
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(body, &genericResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal generic response: %w", err)
		}
		switch {
		case genericResp.Output != "":
			return genericResp.Output, nil
		case genericResp.Text != "":
			return genericResp.Text, nil
		default:
			return genericResp.Completion, nil
		}
	}
}
