package factory

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/inbox-clusterer/internal/adapters/summarizer"
	"github.com/mikey/inbox-clusterer/internal/config"
	"github.com/mikey/inbox-clusterer/internal/core"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// SummarizerFactory creates summarizers based on configuration
type SummarizerFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewSummarizerFactory creates a new summarizer factory
func NewSummarizerFactory(cfg *config.Config, logger *zap.Logger) *SummarizerFactory {
	return &SummarizerFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSummarizer creates a summarizer based on the configuration. Provider
// "none" returns a nil summarizer, which disables cluster summaries. Hosted
// providers are wrapped with retries and a per attempt timeout.
func (f *SummarizerFactory) CreateSummarizer(ctx context.Context) (core.Summarizer, error) {
	sumCfg, err := f.cfg.GetSummarizer()
	if err != nil {
		return nil, err
	}

	var s core.Summarizer
	switch sumCfg.Provider {
	case "none", "":
		return nil, nil
	case "extractive":
		return summarizer.NewExtractiveSummarizer(sumCfg.MinWords, sumCfg.MaxWords), nil
	case "openai":
		openaiCfg := f.cfg.GetOpenAI()
		if openaiCfg.APIKey == "" {
			return nil, fmt.Errorf("openai API key is required")
		}
		s = summarizer.NewOpenAISummarizer(
			openai.NewClient(openaiCfg.APIKey),
			openaiCfg.ModelName,
			openaiCfg.MaxTokens,
			openaiCfg.Temperature,
			openaiCfg.TopP,
			sumCfg.MinWords,
			sumCfg.MaxWords,
			f.logger,
		)
	case "gemini":
		geminiCfg := f.cfg.GetGemini()
		if geminiCfg.APIKey == "" {
			return nil, fmt.Errorf("gemini API key is required")
		}
		s, err = summarizer.NewGeminiSummarizer(
			ctx,
			geminiCfg.APIKey,
			geminiCfg.ModelName,
			geminiCfg.MaxTokens,
			geminiCfg.Temperature,
			geminiCfg.TopP,
			sumCfg.MinWords,
			sumCfg.MaxWords,
			f.logger,
		)
		if err != nil {
			return nil, err
		}
	case "anthropic":
		anthropicCfg := f.cfg.GetAnthropic()
		if anthropicCfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic API key is required")
		}
		s = summarizer.NewAnthropicSummarizer(
			anthropicCfg.APIKey,
			anthropicCfg.ModelName,
			anthropicCfg.MaxTokens,
			anthropicCfg.Temperature,
			sumCfg.MinWords,
			sumCfg.MaxWords,
			f.logger,
		)
	case "bedrock":
		bedrockCfg := f.cfg.GetBedrock()
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(bedrockCfg.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
		}
		s = summarizer.NewBedrockSummarizer(
			bedrockruntime.NewFromConfig(awsCfg),
			bedrockCfg.ModelID,
			bedrockCfg.MaxTokens,
			bedrockCfg.Temperature,
			bedrockCfg.TopP,
			sumCfg.MinWords,
			sumCfg.MaxWords,
			f.logger,
		)
	default:
		return nil, fmt.Errorf("unsupported summarizer provider: %s", sumCfg.Provider)
	}

	f.logger.Info("Using hosted summarizer", zap.String("provider", sumCfg.Provider))
	return summarizer.NewRetrySummarizer(s, sumCfg.RetryAttempts, sumCfg.RetryWait, sumCfg.Timeout, f.logger), nil
}
