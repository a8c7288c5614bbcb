package ingest

import (
	"strings"
	"testing"
)

func TestCleanRawText(t *testing.T) {
	raw := "Senate Passes New Budget Bill\n\nThe vote came after midnight.\n\n\nDebate lasted six hours."
	got := CleanRawText(raw, "Senate Passes New Budget Bill")

	if strings.Contains(got, "Senate Passes New Budget Bill") {
		t.Error("repeated headline line should be stripped")
	}
	want := "The vote came after midnight.\n\nDebate lasted six hours."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBulletSummary(t *testing.T) {
	text := "First point here. Second point here. Third point here. Fourth point here."

	short := BulletSummary(text, 3)
	if !strings.HasPrefix(short, " • ") {
		t.Errorf("summary should start with a bullet, got %q", short)
	}
	if strings.Count(short, "•") != 3 {
		t.Errorf("expected 3 bullets, got %q", short)
	}
	if strings.Contains(short, "Fourth") {
		t.Error("summary must stop at maxSentences")
	}

	if got := BulletSummary("", 3); got != "" {
		t.Errorf("empty input should yield empty summary, got %q", got)
	}
}

func TestClassifyTopic(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Senate passes the spending measure", "politics"},
		{"Ukraine and Russia resume talks", "world"},
		{"Apple unveils a faster chip", "technology"},
		{"Inflation cools as markets rally", "business"},
		{"Hurricane nears the coast", "weather"},
		{"Dog rescued from drainage pipe", "general"},
		{"", "general"},
	}
	for _, c := range cases {
		if got := ClassifyTopic(c.text); got != c.want {
			t.Errorf("ClassifyTopic(%q) = %q, want %q", c.text, got, c.want)
		}
	}
}

func TestGuessSentiment(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Three killed in highway crash", "negative"},
		{"Team wins championship in overtime", "positive"},
		{"Committee schedules hearing for Tuesday", "neutral"},
		{"", "neutral"},
	}
	for _, c := range cases {
		if got := GuessSentiment(c.text); got != c.want {
			t.Errorf("GuessSentiment(%q) = %q, want %q", c.text, got, c.want)
		}
	}
}
