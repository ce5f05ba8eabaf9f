package core

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Preprocessor normalizes batches of email records
type Preprocessor struct {
	logger          *zap.Logger
	removeStopwords bool
	workers         int
}

// NewPreprocessor creates a new preprocessor. Normalization of individual
// records is independent, so up to workers records are processed concurrently.
func NewPreprocessor(logger *zap.Logger, removeStopwords bool, workers int) *Preprocessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers < 1 {
		workers = 1
	}
	return &Preprocessor{
		logger:          logger,
		removeStopwords: removeStopwords,
		workers:         workers,
	}
}

// PreprocessEmails normalizes each record and returns the records that still
// carry text, in input order. Records with neither subject nor body, and
// records whose normalized text is empty, are skipped.
func (p *Preprocessor) PreprocessEmails(ctx context.Context, records []EmailRecord) ([]CleanedEmail, error) {
	p.logger.Debug("Preprocessing emails", zap.Int("count", len(records)))

	cleaned := make([]string, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := range records {
		i := i
		if records[i].Subject == "" && records[i].Body == "" {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cleaned[i] = Normalize(records[i].Subject, records[i].Body, p.removeStopwords)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make([]CleanedEmail, 0, len(records))
	emptyCount, filteredCount := 0, 0
	for i, rec := range records {
		if rec.Subject == "" && rec.Body == "" {
			emptyCount++
			continue
		}
		if cleaned[i] == "" {
			filteredCount++
			continue
		}
		result = append(result, CleanedEmail{EmailRecord: rec, Cleaned: cleaned[i]})
	}

	if emptyCount > 0 || filteredCount > 0 {
		p.logger.Warn("Skipped emails during preprocessing",
			zap.Int("empty", emptyCount),
			zap.Int("filtered", filteredCount))
	}
	p.logger.Info("Preprocessed emails",
		zap.Int("input", len(records)),
		zap.Int("kept", len(result)))

	return result, nil
}

// Texts returns the normalized text of each email
func Texts(emails []CleanedEmail) []string {
	texts := make([]string, len(emails))
	for i, e := range emails {
		texts[i] = e.Cleaned
	}
	return texts
}

// Records returns the source record of each email
func Records(emails []CleanedEmail) []EmailRecord {
	records := make([]EmailRecord, len(emails))
	for i, e := range emails {
		records[i] = e.EmailRecord
	}
	return records
}
