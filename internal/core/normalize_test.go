package core

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name            string
		subject         string
		body            string
		removeStopwords bool
		want            string
	}{
		{
			name:    "strips url",
			subject: "Hi",
			body:    "Check http://x.com now",
			want:    "hi check now",
		},
		{
			name:    "strips html tags",
			subject: "Update",
			body:    "<p>Hello <b>World</b></p>",
			want:    "update hello world",
		},
		{
			name:    "strips signature lines",
			subject: "Re",
			body:    "Meeting moved\n--\nSent from my iPhone",
			want:    "re meeting moved",
		},
		{
			name:    "strips attribution and quoted reply",
			subject: "Lunch",
			body:    "Sounds good\nOn Mon, Jan 1, 2024 at 10:00 AM Bob <bob@example.com> wrote:\n> are we still on?\n>> yes",
			want:    "lunch sounds good",
		},
		{
			name:    "strips email addresses",
			subject: "Contact",
			body:    "write to alice.smith@example.co.uk today",
			want:    "contact write to today",
		},
		{
			name:    "collapses whitespace and lowercases",
			subject: "  MIXED   Case ",
			body:    "\tTabs\r\nand   NEWLINES\n\n",
			want:    "mixed case tabs and newlines",
		},
		{
			name:            "removes stopwords when asked",
			subject:         "The meeting",
			body:            "is at noon",
			removeStopwords: true,
			want:            "meeting noon",
		},
		{
			name:    "keeps stopwords by default",
			subject: "The meeting",
			body:    "is at noon",
			want:    "the meeting is at noon",
		},
		{
			name:    "empty when nothing remains",
			subject: "<br>",
			body:    "https://example.com/a?b=c",
			want:    "",
		},
		{
			name: "empty input",
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.subject, tc.body, tc.removeStopwords)
			if got != tc.want {
				t.Fatalf("Normalize(%q, %q) = %q, want %q", tc.subject, tc.body, got, tc.want)
			}
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := [][2]string{
		{"Hi", "Check http://x.com now"},
		{"Quarterly <i>report</i>", "Numbers attached.\n> old thread\n--\nBob"},
		{"Re: invoice 42", "Please pay by Friday, thanks! contact billing@acme.io"},
		{"", "Sent from my phone\nsee you tomorrow"},
	}
	for _, in := range inputs {
		once := Normalize(in[0], in[1], false)
		twice := Normalize(once, "", false)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
