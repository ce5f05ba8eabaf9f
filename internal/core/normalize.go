package core

import (
	"regexp"
	"strings"
)

var (
	htmlTagPattern   = regexp.MustCompile(`<[^>]+>`)
	signaturePattern = regexp.MustCompile(`(?m)^--.*$|^Sent from.*$|^On .* wrote:.*$`)
	quotedPattern    = regexp.MustCompile(`(?m)^>.*$`)
	urlPattern       = regexp.MustCompile(`https?://\S+`)
	addressPattern   = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
)

// Normalize reduces an email subject and body to lowercase plain text with
// markup, signatures, quoted replies, URLs and addresses removed. An empty
// result means the email carries nothing worth clustering.
func Normalize(subject, body string, removeStopwords bool) string {
	text := subject + " " + body

	text = htmlTagPattern.ReplaceAllString(text, "")
	text = signaturePattern.ReplaceAllString(text, "")
	text = quotedPattern.ReplaceAllString(text, "")
	text = urlPattern.ReplaceAllString(text, "")
	text = addressPattern.ReplaceAllString(text, "")

	// Fields splits on any unicode whitespace, which also trims both ends
	words := strings.Fields(strings.ToLower(text))

	if removeStopwords {
		kept := words[:0]
		for _, w := range words {
			if !EnglishStopwords.Contains(w) {
				kept = append(kept, w)
			}
		}
		words = kept
	}

	return strings.Join(words, " ")
}
