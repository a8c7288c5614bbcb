package ingest

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rushnews/newsstream/pkg/models"
)

// StoryParams carries everything a pipeline knows about one article.
type StoryParams struct {
	Headline     string
	SourceType   string
	SourceName   string
	SourceURL    string
	Topic        string
	Bias         string
	Sentiment    string
	IsBreaking   bool
	RawText      string
	ShortSummary string
	LongSummary  string
	Byline       string
	ImageURL     string
}

// BuildStory assembles a Story with a fresh id and both timestamps set
// to now.
func BuildStory(p StoryParams) models.Story {
	now := time.Now().UTC()
	return models.Story{
		ID:           uuid.NewString(),
		SourceType:   p.SourceType,
		SourceName:   p.SourceName,
		SourceURL:    p.SourceURL,
		Headline:     p.Headline,
		RawText:      p.RawText,
		ShortSummary: p.ShortSummary,
		LongSummary:  p.LongSummary,
		Topic:        p.Topic,
		BiasGuess:    p.Bias,
		Sentiment:    p.Sentiment,
		IsBreaking:   p.IsBreaking,
		Byline:       p.Byline,
		ImageURL:     p.ImageURL,
		FirstSeenAt:  now,
		UpdatedAt:    now,
	}
}

// BuildSuggestions returns the four canned post drafts for a story, one
// per tone. The neutral draft is the bare headline.
func BuildSuggestions(storyID, headline string) []models.Suggestion {
	base := strings.TrimSpace(headline)
	now := time.Now().UTC()

	drafts := []struct {
		tone string
		text string
	}{
		{models.ToneNeutral, base},
		{models.ToneSkeptical, base + " — Are we getting the full story here?"},
		{models.ToneAnalytical, base + " — What this really means in context."},
		{models.ToneSnarky, base + " — Well, that escalated quickly."},
	}

	out := make([]models.Suggestion, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, models.Suggestion{
			ID:        uuid.NewString(),
			StoryID:   storyID,
			Tone:      d.tone,
			Text:      d.text,
			CreatedAt: now,
		})
	}
	return out
}
