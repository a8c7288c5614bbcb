package service

import (
	"context"
	"fmt"

	"github.com/rushnews/newsstream/internal/cluster"
	"github.com/rushnews/newsstream/internal/store"
	"github.com/rushnews/newsstream/internal/trends"
	"github.com/rushnews/newsstream/pkg/models"
)

// NewsStore is the persistence surface the service needs. *store.PgStore
// satisfies it; handler tests substitute a fake.
type NewsStore interface {
	UpsertStories([]models.Story) error
	UpsertSuggestions([]models.Suggestion) error
	UpsertTrends([]models.Trend) error

	RecentStories(f store.StoryFilter, limit int) ([]models.Story, error)
	StoryByID(id string) (*models.Story, error)
	ListTrends(f store.TrendFilter, limit int) ([]models.Trend, error)
	TrendsByCategory(trendType, category string, limit int) ([]models.Trend, error)
	AllTrendsOfType(trendType string) ([]models.Trend, error)
	DeleteTrends(ids []string) error
}

type Service struct {
	repo NewsStore
}

func NewService(repo NewsStore) *Service {
	return &Service{repo: repo}
}

// SyncStories upserts a sync batch of stories plus their suggestions.
// A record is stored whole or not at all; a failed batch returns the error
// without partial bookkeeping (the engine re-syncs next run).
func (s *Service) SyncStories(ctx context.Context, stories []models.Story, suggestions []models.Suggestion) error {
	if err := s.repo.UpsertStories(stories); err != nil {
		return fmt.Errorf("sync stories: %w", err)
	}
	if err := s.repo.UpsertSuggestions(suggestions); err != nil {
		return fmt.Errorf("sync suggestions: %w", err)
	}
	return nil
}

// SyncTrends upserts a trend batch.
func (s *Service) SyncTrends(ctx context.Context, batch []models.Trend) error {
	if err := s.repo.UpsertTrends(batch); err != nil {
		return fmt.Errorf("sync trends: %w", err)
	}
	return nil
}

// PurgeTrends keeps the keepLatest most-recently-seen trends of one type and
// deletes the rest. keepLatest 0 wipes the type (used by merge-then-replace).
func (s *Service) PurgeTrends(ctx context.Context, trendType string, keepLatest int) (kept, deleted int, err error) {
	all, err := s.repo.AllTrendsOfType(trendType)
	if err != nil {
		return 0, 0, fmt.Errorf("load trends: %w", err)
	}

	keep, drop := trends.Purge(all, keepLatest)
	ids := make([]string, len(drop))
	for i, t := range drop {
		ids[i] = t.ID
	}
	if err := s.repo.DeleteTrends(ids); err != nil {
		return 0, 0, fmt.Errorf("delete trends: %w", err)
	}
	return len(keep), len(drop), nil
}

func (s *Service) Stories(ctx context.Context, f store.StoryFilter, limit int) ([]models.Story, error) {
	return s.repo.RecentStories(f, limit)
}

func (s *Service) Story(ctx context.Context, id string) (*models.Story, error) {
	return s.repo.StoryByID(id)
}

func (s *Service) Trends(ctx context.Context, f store.TrendFilter, limit int) ([]models.Trend, error) {
	return s.repo.ListTrends(f, limit)
}

// XTrendingTopics returns the fixed per-category blocks of the X explore
// view: For You capped at 3, News and Entertainment at 12, each ranked by
// (score desc, recency desc).
func (s *Service) XTrendingTopics(ctx context.Context) ([]models.TrendBlock, error) {
	blocks := []models.TrendBlock{}
	for _, tab := range []struct {
		category string
		limit    int
	}{
		{trends.CategoryForYou, trends.Cap(trends.CategoryForYou)},
		{"News", trends.Cap("News")},
		{"Entertainment", trends.Cap("Entertainment")},
	} {
		items, err := s.repo.TrendsByCategory(models.TrendTypeXNews, tab.category, tab.limit)
		if err != nil {
			return nil, fmt.Errorf("trends for %s: %w", tab.category, err)
		}
		blocks = append(blocks, models.TrendBlock{ClusterTitle: tab.category, Items: items})
	}
	return blocks, nil
}

// TrendingTopics clusters the storyLimit most recent stories into the
// dashboard block list. The clustering is recomputed on every call; nothing
// is cached or persisted.
func (s *Service) TrendingTopics(ctx context.Context, limitClusters, storyLimit int) ([]models.TopicBlock, error) {
	if storyLimit < 10 || storyLimit > 500 {
		storyLimit = 200
	}
	stories, err := s.repo.RecentStories(store.StoryFilter{}, storyLimit)
	if err != nil {
		return nil, fmt.Errorf("load stories: %w", err)
	}
	if len(stories) == 0 {
		return []models.TopicBlock{}, nil
	}
	return cluster.Blocks(cluster.Cluster(stories, limitClusters)), nil
}
