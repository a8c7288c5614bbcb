package models

import (
	"time"

	dbtypes "github.com/rushnews/newsstream/internal/db"
)

// Source types for stories.
const (
	SourceTypeRSS    = "rss"
	SourceTypeCustom = "custom"
)

// Suggestion tones. Exactly one suggestion per tone is generated for a story.
const (
	ToneNeutral    = "neutral"
	ToneSkeptical  = "skeptical"
	ToneAnalytical = "analytical"
	ToneSnarky     = "snarky"
)

// TrendTypeXNews tags trends scraped from the X explore tabs.
const TrendTypeXNews = "x_news"

// Story is an ingested news article record. The id is assigned once by the
// ingestion pipeline and stays stable across re-syncs of the same story.
type Story struct {
	ID         string `db:"id" json:"id"`
	SourceType string `db:"source_type" json:"source_type"`
	SourceName string `db:"source_name" json:"source_name"`
	SourceURL  string `db:"source_url" json:"source_url"`

	Headline string `db:"headline" json:"headline"`
	RawText  string `db:"raw_text" json:"raw_text"`

	ShortSummary string `db:"short_summary" json:"short_summary"`
	LongSummary  string `db:"long_summary" json:"long_summary"`

	Topic     string `db:"topic" json:"topic"`
	BiasGuess string `db:"bias_guess" json:"bias_guess"`
	Sentiment string `db:"sentiment" json:"sentiment"`

	IsBreaking bool `db:"is_breaking" json:"is_breaking"`

	Byline   string `db:"byline" json:"byline"`
	ImageURL string `db:"image_url" json:"image_url"`

	FirstSeenAt time.Time `db:"first_seen_at" json:"first_seen_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	// Populated on reads, not a column of the stories table.
	Suggestions []Suggestion `db:"-" json:"suggestions,omitempty"`
}

// Suggestion is a share-ready caption derived from a story headline.
// A story owns its suggestions; they are cascade-deleted with it.
type Suggestion struct {
	ID        string    `db:"id" json:"id"`
	StoryID   string    `db:"story_id" json:"story_id"`
	Tone      string    `db:"tone" json:"tone"`
	Text      string    `db:"text" json:"text"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Trend is a time-stamped topic signal from a social platform, scoped to a
// category. Dedup identity is (normalized keyword, category), not the id.
type Trend struct {
	ID        string `db:"id" json:"id"`
	Keyword   string `db:"keyword" json:"keyword"`
	Category  string `db:"category" json:"category"`
	TrendType string `db:"trend_type" json:"trend_type"`
	Score     int    `db:"score" json:"score"`
	Region    string `db:"region" json:"region"`
	Summary   string `db:"summary" json:"summary"`

	PostURLs dbtypes.URLList `db:"post_urls" json:"post_urls"`
	URL      string              `db:"url" json:"url"`

	IngestedAt time.Time `db:"ingested_at" json:"ingested_at"`
	TrendAge   int       `db:"trend_age" json:"trend_age"`

	FirstSeenAt time.Time `db:"first_seen_at" json:"first_seen_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// StorySummary is the display shape used inside topic blocks.
type StorySummary struct {
	ID          string    `json:"id"`
	Headline    string    `json:"headline"`
	SourceName  string    `json:"source_name"`
	FirstSeenAt time.Time `json:"first_seen_at"`
}

// TopicBlock is one entry of the /trending_topics response: a breaking bucket,
// a headline cluster, or the Other News pool.
type TopicBlock struct {
	Title    string         `json:"title"`
	Keywords []string       `json:"keywords"`
	Stories  []StorySummary `json:"stories"`
}

// TrendBlock is one entry of the /xtrending_topics response.
type TrendBlock struct {
	ClusterTitle string  `json:"cluster_title"`
	Items        []Trend `json:"items"`
}
