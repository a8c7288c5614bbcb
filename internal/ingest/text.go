package ingest

import (
	"regexp"
	"strings"
)

// CleanRawText drops empty lines and any line that merely repeats the
// headline, then re-joins paragraphs.
func CleanRawText(text, headline string) string {
	headlineLower := strings.ToLower(strings.TrimSpace(headline))

	var cleaned []string
	for _, ln := range strings.Split(text, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		if strings.ToLower(ln) == headlineLower {
			continue
		}
		cleaned = append(cleaned, ln)
	}
	return strings.TrimSpace(strings.Join(cleaned, "\n\n"))
}

var sentenceSplit = regexp.MustCompile(`\. +`)

func splitSentences(fullText string) []string {
	text := strings.TrimSpace(strings.ReplaceAll(fullText, "\n", " "))
	var out []string
	for _, p := range sentenceSplit.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// BulletSummary renders the first maxSentences sentences as a bullet
// list. Empty input yields an empty string.
func BulletSummary(fullText string, maxSentences int) string {
	if fullText == "" {
		return ""
	}
	sentences := splitSentences(fullText)
	if len(sentences) == 0 {
		return ""
	}
	if len(sentences) > maxSentences {
		sentences = sentences[:maxSentences]
	}
	return " • " + strings.Join(sentences, "\n • ")
}

var topicKeywords = []struct {
	topic string
	words []string
}{
	{"politics", []string{"biden", "trump", "senate", "congress", "election"}},
	{"world", []string{"israel", "gaza", "ukraine", "russia", "china"}},
	{"technology", []string{"ai", "tech", "microsoft", "apple", "google"}},
	{"business", []string{"stock", "market", "inflation", "recession"}},
	{"weather", []string{"hurricane", "storm", "flood", "wildfire"}},
}

// ClassifyTopic buckets text into a coarse topic by keyword lookup.
// First matching bucket wins; anything else is "general".
func ClassifyTopic(text string) string {
	if text == "" {
		return "general"
	}
	t := strings.ToLower(text)
	for _, tk := range topicKeywords {
		for _, w := range tk.words {
			if strings.Contains(t, w) {
				return tk.topic
			}
		}
	}
	return "general"
}

var (
	negativeWords = []string{"killed", "dead", "attack", "crash", "lawsuit"}
	positiveWords = []string{"wins", "surges", "record high", "breakthrough"}
)

// GuessSentiment tags text negative, positive or neutral by keyword
// lookup. Negative words are checked first.
func GuessSentiment(text string) string {
	if text == "" {
		return "neutral"
	}
	t := strings.ToLower(text)
	for _, w := range negativeWords {
		if strings.Contains(t, w) {
			return "negative"
		}
	}
	for _, w := range positiveWords {
		if strings.Contains(t, w) {
			return "positive"
		}
	}
	return "neutral"
}
