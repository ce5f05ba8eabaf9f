package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"
)

func TestExtractiveSummarizer(t *testing.T) {
	text := "the quarterly budget is due. please review the finance numbers today! " +
		"the office party is on friday. bring snacks"

	cases := []struct {
		name     string
		min, max int
		want     string
	}{
		{"first sentence reaches min", 3, 20, "the quarterly budget is due."},
		{"collects sentences up to min", 8, 20, "the quarterly budget is due. please review the finance numbers today!"},
		{"max caps sentences", 30, 12, "the quarterly budget is due. please review the finance numbers today!"},
		{"long first sentence is cut", 1, 3, "the quarterly budget"},
		{"negative min keeps first sentence", -4, 20, "the quarterly budget is due."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NewExtractiveSummarizer(tc.min, tc.max).Summarize(context.Background(), text)
			if err != nil {
				t.Fatalf("Summarize failed: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("version 1.2 shipped. great! next? ok")
	want := []string{"version 1.2 shipped.", "great!", "next?", "ok"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCleanSummary(t *testing.T) {
	cases := map[string]string{
		"  plain text  ":                 "plain text",
		"\"quoted summary\"":             "quoted summary",
		"Summary: the team  plans\nmore": "the team plans more",
	}
	for in, want := range cases {
		if got := cleanSummary(in); got != want {
			t.Errorf("cleanSummary(%q) = %q, want %q", in, got, want)
		}
	}
}

type flakySummarizer struct {
	failures int32
	calls    int32
}

func (f *flakySummarizer) Summarize(ctx context.Context, text string) (string, error) {
	n := atomic.AddInt32(&f.calls, 1)
	if n <= f.failures {
		return "", errors.New("temporary failure")
	}
	return "ok: " + text, nil
}

func TestRetrySummarizer(t *testing.T) {
	flaky := &flakySummarizer{failures: 2}
	r := NewRetrySummarizer(flaky, 3, time.Millisecond, time.Second, nil)
	got, err := r.Summarize(context.Background(), "x")
	if err != nil {
		t.Fatalf("expected success on third attempt: %v", err)
	}
	if got != "ok: x" || flaky.calls != 3 {
		t.Fatalf("unexpected result %q after %d calls", got, flaky.calls)
	}

	failing := &flakySummarizer{failures: 10}
	r = NewRetrySummarizer(failing, 3, time.Millisecond, 0, nil)
	if _, err := r.Summarize(context.Background(), "x"); err == nil {
		t.Fatalf("expected failure after exhausting attempts")
	}
	if failing.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", failing.calls)
	}
}

func TestRetrySummarizerCanceled(t *testing.T) {
	failing := &flakySummarizer{failures: 10}
	r := NewRetrySummarizer(failing, 5, time.Hour, 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	if _, err := r.Summarize(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type fakeInvoker struct {
	input *bedrockruntime.InvokeModelInput
	body  string
}

func (f *fakeInvoker) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.input = params
	return &bedrockruntime.InvokeModelOutput{Body: []byte(f.body)}, nil
}

func TestBedrockSummarizer(t *testing.T) {
	cases := []struct {
		name    string
		modelID string
		body    string
		key     string
	}{
		{"claude", "anthropic.claude-3-haiku-20240307-v1:0", `{"content":[{"type":"text","text":" Budget talks. "}]}`, "messages"},
		{"titan", "amazon.titan-text-express-v1", `{"results":[{"outputText":"Budget talks."}]}`, "inputText"},
		{"generic", "meta.llama3-8b-instruct-v1:0", `{"text":"Budget talks."}`, "prompt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inv := &fakeInvoker{body: tc.body}
			s := NewBedrockSummarizer(inv, tc.modelID, 300, 0, 1, 25, 100, zap.NewNop())
			got, err := s.Summarize(context.Background(), "budget budget")
			if err != nil {
				t.Fatalf("Summarize failed: %v", err)
			}
			if got != "Budget talks." {
				t.Fatalf("unexpected summary %q", got)
			}

			var payload map[string]interface{}
			if err := json.Unmarshal(inv.input.Body, &payload); err != nil {
				t.Fatalf("payload is not JSON: %v", err)
			}
			if _, ok := payload[tc.key]; !ok {
				t.Fatalf("expected payload key %q in %v", tc.key, payload)
			}
		})
	}
}
