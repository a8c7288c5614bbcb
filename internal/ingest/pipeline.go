// Package ingest is the ingestion engine: it pulls stories from RSS
// feeds and scraped homepages, trends from a TrendSource, and ships
// both to the API server.
package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rushnews/newsstream/internal/trends"
	"github.com/rushnews/newsstream/pkg/logger"
	"github.com/rushnews/newsstream/pkg/models"
)

// StoryPipeline runs one full story ingestion pass: RSS sources, then
// HTML sources, then a single sync upload.
type StoryPipeline struct {
	rss  *RSSIngester
	html *HTMLIngester
	sync *SyncClient
}

func NewStoryPipeline(rss *RSSIngester, html *HTMLIngester, sync *SyncClient) *StoryPipeline {
	return &StoryPipeline{rss: rss, html: html, sync: sync}
}

func (p *StoryPipeline) Name() string { return "story-pipeline" }

func (p *StoryPipeline) Run(ctx context.Context) error {
	stories, suggestions := p.rss.Ingest(ctx)

	htmlStories, htmlSuggestions := p.html.Ingest(ctx)
	stories = append(stories, htmlStories...)
	suggestions = append(suggestions, htmlSuggestions...)

	if len(stories) == 0 {
		logger.Info("story run produced nothing")
		return nil
	}

	if err := p.sync.SyncStories(ctx, stories, suggestions); err != nil {
		return fmt.Errorf("sync stories: %w", err)
	}
	logger.Info("story run synced",
		zap.Int("stories", len(stories)),
		zap.Int("suggestions", len(suggestions)),
	)
	return nil
}

// TrendPipeline runs one trend pass: fetch the server's current x_news
// trends, merge the new scrape into them, then replace the server's set
// with the merged result (purge everything, sync the survivors).
type TrendPipeline struct {
	source TrendSource
	sync   *SyncClient
}

func NewTrendPipeline(source TrendSource, sync *SyncClient) *TrendPipeline {
	return &TrendPipeline{source: source, sync: sync}
}

func (p *TrendPipeline) Name() string { return "trend-pipeline" }

func (p *TrendPipeline) Run(ctx context.Context) error {
	items, err := p.source.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch trend source: %w", err)
	}
	incoming := BuildTrends(items)
	logger.Info("trends collected", zap.Int("count", len(incoming)))

	existing, err := p.sync.FetchXTrends(ctx)
	if err != nil {
		// Merging against nothing still yields a valid replacement set.
		logger.Warn("fetch existing trends failed", zap.Error(err))
		existing = nil
	}

	merged := trends.Merge(existing, incoming)
	logger.Info("trends merged",
		zap.Int("existing", len(existing)),
		zap.Int("incoming", len(incoming)),
		zap.Int("final", len(merged)),
	)

	if err := p.sync.PurgeTrends(ctx, models.TrendTypeXNews, 0); err != nil {
		return fmt.Errorf("purge trends: %w", err)
	}
	if err := p.sync.SyncTrends(ctx, merged); err != nil {
		return fmt.Errorf("sync trends: %w", err)
	}
	return nil
}
