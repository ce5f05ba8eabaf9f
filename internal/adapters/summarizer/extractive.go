package summarizer

import (
	"context"
	"strings"
	"unicode"

	"github.com/mikey/inbox-clusterer/internal/utils"
)

// ExtractiveSummarizer builds a summary from the leading sentences of the text.
// It needs no network access.
type ExtractiveSummarizer struct {
	minWords int
	maxWords int
}

// NewExtractiveSummarizer creates a new extractive summarizer
func NewExtractiveSummarizer(minWords, maxWords int) *ExtractiveSummarizer {
	if maxWords < 1 {
		maxWords = 100
	}
	if minWords < 0 {
		minWords = 0
	}
	if minWords > maxWords {
		minWords = maxWords
	}
	return &ExtractiveSummarizer{minWords: minWords, maxWords: maxWords}
}

// Summarize keeps whole sentences until at least minWords words are collected,
// never exceeding maxWords
func (s *ExtractiveSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var picked []string
	total := 0
	for _, sentence := range splitSentences(text) {
		words := strings.Fields(sentence)
		if total+len(words) > s.maxWords {
			break
		}
		picked = append(picked, strings.Join(words, " "))
		total += len(words)
		if total >= s.minWords {
			break
		}
	}

	if total == 0 {
		return utils.LimitWords(text, s.maxWords), nil
	}
	return strings.Join(picked, " "), nil
}

// splitSentences splits text after sentence-ending punctuation
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	runes := []rune(text)
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
