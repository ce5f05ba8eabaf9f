// Package summarizer provides the text summarization backends of cluster summaries.
package summarizer

import (
	"fmt"
	"strings"
)

const systemPrompt = "You summarize groups of related emails. Respond only with the summary text."

const promptFormat = `Summarize the following emails, which were grouped together because they discuss related topics.
Write a single neutral paragraph of between %d and %d words describing what the group is about.
Do not list the emails individually and do not add a preamble.

Emails:
%s`

// buildPrompt formats the user prompt for a cluster text
func buildPrompt(text string, minWords, maxWords int) string {
	return fmt.Sprintf(promptFormat, minWords, maxWords, text)
}

// cleanSummary trims whitespace and wrapping quotes from a model response
func cleanSummary(response string) string {
	s := strings.TrimSpace(response)
	s = strings.TrimPrefix(s, "Summary:")
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return strings.Join(strings.Fields(s), " ")
}
