package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"
)

type fakeSummarizer struct {
	mu     sync.Mutex
	inputs []string
}

func (f *fakeSummarizer) Summarize(_ context.Context, text string) (string, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, text)
	f.mu.Unlock()
	if strings.Contains(text, "fail") {
		return "", errors.New("model unavailable")
	}
	return "S: " + text, nil
}

func TestClusterSummarizer(t *testing.T) {
	fake := &fakeSummarizer{}
	s := NewClusterSummarizer(fake, nil, 0, nil)

	got := s.Summarize(context.Background(), map[int][]string{
		0: {"alpha", "", "beta"},
		1: {"", "   "},
		2: {"this will fail"},
		3: {"gamma"},
	})

	want := map[int]string{
		0: "S: alpha beta",
		1: NoContentSummary,
		2: FailedSummary,
		3: "S: gamma",
	}
	for id, summary := range want {
		if got[id] != summary {
			t.Errorf("cluster %d: got %q, want %q", id, got[id], summary)
		}
	}
	if len(fake.inputs) != 3 {
		t.Fatalf("expected 3 summarization calls, got %d", len(fake.inputs))
	}
}

func TestClusterSummarizerTruncatesInput(t *testing.T) {
	fake := &fakeSummarizer{}
	s := NewClusterSummarizer(fake, nil, DefaultMaxSummaryInput, nil)

	long := strings.Repeat("é", 1500)
	s.Summarize(context.Background(), map[int][]string{0: {long}})

	if len(fake.inputs) != 1 {
		t.Fatalf("expected one call, got %d", len(fake.inputs))
	}
	if n := utf8.RuneCountInString(fake.inputs[0]); n != DefaultMaxSummaryInput {
		t.Fatalf("expected %d characters, got %d", DefaultMaxSummaryInput, n)
	}
}

func TestClusterSummarizerDisabled(t *testing.T) {
	s := NewClusterSummarizer(nil, nil, 0, nil)
	if s.Enabled() {
		t.Fatalf("expected summarizer to be disabled")
	}
	if got := s.Summarize(context.Background(), map[int][]string{0: {"text"}}); len(got) != 0 {
		t.Fatalf("expected no summaries, got %v", got)
	}
}
