package utils

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateRunes(t *testing.T) {
	tp := NewTextProcessor(nil)

	cases := []struct {
		text string
		max  int
		want string
	}{
		{"hello world", 5, "hello"},
		{"hello", 10, "hello"},
		{"héllo wörld", 7, "héllo w"},
		{"日本語のテキスト", 3, "日本語"},
		{"unlimited", 0, "unlimited"},
	}
	for _, tc := range cases {
		if got := tp.TruncateRunes(tc.text, tc.max); got != tc.want {
			t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tc.text, tc.max, got, tc.want)
		}
	}
}

func TestProcessText(t *testing.T) {
	tp := NewTextProcessor(nil)

	got := tp.ProcessText("ab\xffcdef", 4)
	if got != "abcd" {
		t.Fatalf("expected invalid bytes dropped before the cut, got %q", got)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("result is not valid UTF-8")
	}

	long := strings.Repeat("é", 2000)
	if n := utf8.RuneCountInString(tp.ProcessText(long, 1024)); n != 1024 {
		t.Fatalf("expected 1024 characters, got %d", n)
	}
}

func TestLimitWords(t *testing.T) {
	if got := LimitWords("  one two\tthree  four ", 3); got != "one two three" {
		t.Fatalf("unexpected result %q", got)
	}
	if got := LimitWords("one  two", 0); got != "one two" {
		t.Fatalf("unexpected result %q", got)
	}
}
