package core

import (
	"context"
	"strings"

	"github.com/mikey/inbox-clusterer/internal/utils"
	"go.uber.org/zap"
)

const (
	// NoContentSummary is used for clusters without any text
	NoContentSummary = "No content to summarize."
	// FailedSummary is used when the summarization service fails for a cluster
	FailedSummary = "Summary generation failed."
	// DefaultMaxSummaryInput is the character budget of the text sent for summarization
	DefaultMaxSummaryInput = 1024
)

// ClusterSummarizer produces one summary per cluster using a Summarizer
type ClusterSummarizer struct {
	summarizer    Summarizer
	textProcessor *utils.TextProcessor
	maxInputChars int
	logger        *zap.Logger
}

// NewClusterSummarizer creates a new cluster summarizer. A nil summarizer
// disables summaries.
func NewClusterSummarizer(
	summarizer Summarizer,
	textProcessor *utils.TextProcessor,
	maxInputChars int,
	logger *zap.Logger,
) *ClusterSummarizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if textProcessor == nil {
		textProcessor = utils.NewTextProcessor(logger)
	}
	if maxInputChars <= 0 {
		maxInputChars = DefaultMaxSummaryInput
	}
	return &ClusterSummarizer{
		summarizer:    summarizer,
		textProcessor: textProcessor,
		maxInputChars: maxInputChars,
		logger:        logger,
	}
}

// Enabled reports whether summaries will be produced
func (s *ClusterSummarizer) Enabled() bool {
	return s.summarizer != nil
}

// Summarize returns a summary per cluster id. A failing cluster gets
// FailedSummary and does not stop the others.
func (s *ClusterSummarizer) Summarize(ctx context.Context, textsByCluster map[int][]string) map[int]string {
	summaries := make(map[int]string, len(textsByCluster))
	if !s.Enabled() {
		return summaries
	}

	for _, id := range SortedClusterIDs(textsByCluster) {
		nonEmpty := make([]string, 0, len(textsByCluster[id]))
		for _, text := range textsByCluster[id] {
			if strings.TrimSpace(text) != "" {
				nonEmpty = append(nonEmpty, text)
			}
		}
		if len(nonEmpty) == 0 {
			s.logger.Warn("Cluster contains no text", zap.Int("cluster", id))
			summaries[id] = NoContentSummary
			continue
		}

		// The budget is applied without regard to sentence boundaries
		combined := s.textProcessor.ProcessText(strings.Join(nonEmpty, " "), s.maxInputChars)

		summary, err := s.summarizer.Summarize(ctx, combined)
		if err != nil {
			s.logger.Warn("Failed to summarize cluster", zap.Int("cluster", id), zap.Error(err))
			summaries[id] = FailedSummary
			continue
		}
		summaries[id] = strings.TrimSpace(summary)
	}

	s.logger.Info("Summarized clusters", zap.Int("clusters", len(summaries)))
	return summaries
}
