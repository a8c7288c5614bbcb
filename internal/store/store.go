package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	dbtypes "github.com/rushnews/newsstream/internal/db"
	"github.com/rushnews/newsstream/pkg/models"
)

type PgStore struct {
	db *sqlx.DB
}

func NewPgStore(db *sql.DB) *PgStore {
	return &PgStore{db: sqlx.NewDb(db, "postgres")}
}

func RunMigrations(db *sql.DB) error {
	initSQL := `
CREATE TABLE IF NOT EXISTS stories(
  id UUID PRIMARY KEY,
  source_type TEXT,
  source_name TEXT,
  source_url TEXT,
  headline TEXT NOT NULL,
  raw_text TEXT,
  short_summary TEXT,
  long_summary TEXT,
  topic TEXT,
  bias_guess TEXT,
  sentiment TEXT,
  is_breaking BOOLEAN DEFAULT FALSE,
  byline TEXT,
  image_url TEXT,
  first_seen_at TIMESTAMPTZ,
  updated_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_stories_first_seen ON stories(first_seen_at);
CREATE INDEX IF NOT EXISTS idx_stories_topic ON stories(topic);
CREATE INDEX IF NOT EXISTS idx_stories_breaking ON stories(is_breaking);

CREATE TABLE IF NOT EXISTS suggestions(
  id UUID PRIMARY KEY,
  story_id UUID NOT NULL REFERENCES stories(id) ON DELETE CASCADE,
  tone TEXT,
  text TEXT NOT NULL,
  created_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_suggestions_story ON suggestions(story_id);

CREATE TABLE IF NOT EXISTS trends(
  id UUID PRIMARY KEY,
  keyword TEXT,
  category TEXT,
  trend_type TEXT,
  score INTEGER,
  region TEXT,
  summary TEXT,
  post_urls JSONB,
  url TEXT,
  ingested_at TIMESTAMPTZ,
  trend_age INTEGER DEFAULT 0,
  first_seen_at TIMESTAMPTZ,
  updated_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_trends_type ON trends(trend_type);
CREATE INDEX IF NOT EXISTS idx_trends_category ON trends(category);
CREATE INDEX IF NOT EXISTS idx_trends_first_seen ON trends(first_seen_at);
`
	_, err := db.Exec(initSQL)
	return err
}

const storyColumns = `id,source_type,source_name,source_url,headline,raw_text,short_summary,long_summary,topic,bias_guess,sentiment,is_breaking,byline,image_url,first_seen_at,updated_at`

const trendColumns = `id,keyword,category,trend_type,score,region,summary,post_urls,url,ingested_at,trend_age,first_seen_at,updated_at`

// UpsertStories writes a sync batch. On conflict every field is overwritten
// except first_seen_at, which stays at the value of the first sync.
func (p *PgStore) UpsertStories(stories []models.Story) error {
	if len(stories) == 0 {
		return nil
	}
	tx, err := p.db.Beginx()
	if err != nil {
		return err
	}

	stmt := `
INSERT INTO stories (` + storyColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
ON CONFLICT (id) DO UPDATE SET
 source_type=EXCLUDED.source_type,
 source_name=EXCLUDED.source_name,
 source_url=EXCLUDED.source_url,
 headline=EXCLUDED.headline,
 raw_text=EXCLUDED.raw_text,
 short_summary=EXCLUDED.short_summary,
 long_summary=EXCLUDED.long_summary,
 topic=EXCLUDED.topic,
 bias_guess=EXCLUDED.bias_guess,
 sentiment=EXCLUDED.sentiment,
 is_breaking=EXCLUDED.is_breaking,
 byline=EXCLUDED.byline,
 image_url=EXCLUDED.image_url,
 updated_at=EXCLUDED.updated_at;
`

	now := time.Now().UTC()
	for i := range stories {
		s := &stories[i]
		if s.ID == "" {
			s.ID = uuid.New().String()
		}
		if s.FirstSeenAt.IsZero() {
			s.FirstSeenAt = now
		}
		s.UpdatedAt = now

		_, err := tx.Exec(stmt,
			s.ID, s.SourceType, s.SourceName, s.SourceURL,
			s.Headline, s.RawText, s.ShortSummary, s.LongSummary,
			s.Topic, s.BiasGuess, s.Sentiment, s.IsBreaking,
			s.Byline, s.ImageURL, s.FirstSeenAt, s.UpdatedAt,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("upsert story id=%s: %w", s.ID, err)
		}
	}

	return tx.Commit()
}

// UpsertSuggestions writes suggestion rows; tone and text refresh on
// conflict, created_at keeps the original value.
func (p *PgStore) UpsertSuggestions(suggestions []models.Suggestion) error {
	if len(suggestions) == 0 {
		return nil
	}
	tx, err := p.db.Beginx()
	if err != nil {
		return err
	}

	stmt := `
INSERT INTO suggestions (id, story_id, tone, text, created_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (id) DO UPDATE SET
 tone=EXCLUDED.tone,
 text=EXCLUDED.text;
`

	now := time.Now().UTC()
	for i := range suggestions {
		sg := &suggestions[i]
		if sg.ID == "" {
			sg.ID = uuid.New().String()
		}
		if sg.CreatedAt.IsZero() {
			sg.CreatedAt = now
		}
		if _, err := tx.Exec(stmt, sg.ID, sg.StoryID, sg.Tone, sg.Text, sg.CreatedAt); err != nil {
			tx.Rollback()
			return fmt.Errorf("upsert suggestion id=%s: %w", sg.ID, err)
		}
	}

	return tx.Commit()
}

// UpsertTrends writes a trend batch by id. Ids are generated when absent.
// first_seen_at is preserved on conflict.
func (p *PgStore) UpsertTrends(trends []models.Trend) error {
	if len(trends) == 0 {
		return nil
	}
	tx, err := p.db.Beginx()
	if err != nil {
		return err
	}

	stmt := `
INSERT INTO trends (` + trendColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8::jsonb,$9,$10,$11,$12,$13)
ON CONFLICT (id) DO UPDATE SET
 keyword=EXCLUDED.keyword,
 category=EXCLUDED.category,
 trend_type=EXCLUDED.trend_type,
 score=EXCLUDED.score,
 region=EXCLUDED.region,
 summary=EXCLUDED.summary,
 post_urls=EXCLUDED.post_urls,
 url=EXCLUDED.url,
 ingested_at=EXCLUDED.ingested_at,
 trend_age=EXCLUDED.trend_age,
 updated_at=EXCLUDED.updated_at;
`

	now := time.Now().UTC()
	for i := range trends {
		t := &trends[i]
		if t.ID == "" {
			t.ID = uuid.New().String()
		}
		if t.PostURLs == nil {
			t.PostURLs = dbtypes.URLList{}
		}
		if t.IngestedAt.IsZero() {
			t.IngestedAt = now
		}
		if t.FirstSeenAt.IsZero() {
			t.FirstSeenAt = now
		}
		t.UpdatedAt = now

		_, err := tx.Exec(stmt,
			t.ID, t.Keyword, t.Category, t.TrendType, t.Score, t.Region,
			t.Summary, t.PostURLs, t.URL, t.IngestedAt, t.TrendAge,
			t.FirstSeenAt, t.UpdatedAt,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("upsert trend id=%s: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

// StoryFilter narrows RecentStories.
type StoryFilter struct {
	Topic      string
	IsBreaking *bool
	After      *time.Time
}

// RecentStories returns stories most-recent-first with suggestions attached.
func (p *PgStore) RecentStories(f StoryFilter, limit int) ([]models.Story, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}

	query := `SELECT ` + storyColumns + ` FROM stories WHERE 1=1`
	args := []interface{}{}
	n := 0
	next := func(v interface{}) string {
		n++
		args = append(args, v)
		return fmt.Sprintf("$%d", n)
	}

	if f.Topic != "" {
		query += ` AND topic = ` + next(f.Topic)
	}
	if f.IsBreaking != nil {
		query += ` AND is_breaking = ` + next(*f.IsBreaking)
	}
	if f.After != nil {
		query += ` AND first_seen_at > ` + next(*f.After)
	}
	query += ` ORDER BY first_seen_at DESC LIMIT ` + next(limit)

	rows := []models.Story{}
	if err := p.db.Select(&rows, query, args...); err != nil {
		return nil, err
	}
	if err := p.attachSuggestions(rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// StoryByID returns one story with suggestions, or nil when unknown.
func (p *PgStore) StoryByID(id string) (*models.Story, error) {
	rows := []models.Story{}
	query := `SELECT ` + storyColumns + ` FROM stories WHERE id = $1 LIMIT 1`
	if err := p.db.Select(&rows, query, id); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if err := p.attachSuggestions(rows); err != nil {
		return nil, err
	}
	return &rows[0], nil
}

// attachSuggestions loads all suggestions for the given stories in one query.
func (p *PgStore) attachSuggestions(stories []models.Story) error {
	if len(stories) == 0 {
		return nil
	}
	ids := make([]string, len(stories))
	byID := make(map[string]int, len(stories))
	for i, s := range stories {
		ids[i] = s.ID
		byID[s.ID] = i
	}

	sugs := []models.Suggestion{}
	query := `
SELECT id, story_id, tone, text, created_at
FROM suggestions
WHERE story_id = ANY($1::uuid[])
ORDER BY created_at
`
	if err := p.db.Select(&sugs, query, pq.Array(ids)); err != nil {
		return err
	}
	for _, sg := range sugs {
		if i, ok := byID[sg.StoryID]; ok {
			stories[i].Suggestions = append(stories[i].Suggestions, sg)
		}
	}
	return nil
}

// TrendFilter narrows ListTrends.
type TrendFilter struct {
	TrendType string
	Category  string
	Region    string
}

// ListTrends returns trends most-recent-first with optional filters.
func (p *PgStore) ListTrends(f TrendFilter, limit int) ([]models.Trend, error) {
	if limit <= 0 || limit > 200 {
		limit = 200
	}

	query := `SELECT ` + trendColumns + ` FROM trends WHERE 1=1`
	args := []interface{}{}
	n := 0
	next := func(v interface{}) string {
		n++
		args = append(args, v)
		return fmt.Sprintf("$%d", n)
	}

	if f.TrendType != "" {
		query += ` AND trend_type = ` + next(f.TrendType)
	}
	if f.Category != "" {
		query += ` AND category = ` + next(f.Category)
	}
	if f.Region != "" {
		query += ` AND region = ` + next(f.Region)
	}
	query += ` ORDER BY first_seen_at DESC LIMIT ` + next(limit)

	rows := []models.Trend{}
	err := p.db.Select(&rows, query, args...)
	return rows, err
}

// TrendsByCategory returns trends of one type and category ranked by batch
// score, recency breaking ties. Feeds the per-category topic blocks.
func (p *PgStore) TrendsByCategory(trendType, category string, limit int) ([]models.Trend, error) {
	if limit <= 0 || limit > 100 {
		limit = 12
	}
	rows := []models.Trend{}
	query := `
SELECT ` + trendColumns + `
FROM trends
WHERE trend_type = $1 AND category = $2
ORDER BY score DESC, first_seen_at DESC
LIMIT $3
`
	err := p.db.Select(&rows, query, trendType, category, limit)
	return rows, err
}

// AllTrendsOfType returns every trend of one type, most-recent-first.
// Input to the purge policy.
func (p *PgStore) AllTrendsOfType(trendType string) ([]models.Trend, error) {
	rows := []models.Trend{}
	query := `
SELECT ` + trendColumns + `
FROM trends
WHERE trend_type = $1
ORDER BY first_seen_at DESC
`
	err := p.db.Select(&rows, query, trendType)
	return rows, err
}

// DeleteTrends removes trends by id.
func (p *PgStore) DeleteTrends(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := p.db.Exec(`DELETE FROM trends WHERE id = ANY($1::uuid[])`, pq.Array(ids))
	return err
}
