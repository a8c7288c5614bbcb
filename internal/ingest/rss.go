package ingest

import (
	"context"
	"strings"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/rushnews/newsstream/pkg/logger"
	"github.com/rushnews/newsstream/pkg/models"
)

// RSSSource is one syndicated feed to poll.
type RSSSource struct {
	ID      string
	Display string
	FeedURL string
	Bias    string
}

// DefaultRSSSources is the feed roster polled on every story run.
var DefaultRSSSources = []RSSSource{
	{ID: "cnn", Display: "CNN", FeedURL: "http://rss.cnn.com/rss/cnn_latest.rss", Bias: "Left"},
	{ID: "nbc", Display: "NBC News", FeedURL: "https://feeds.nbcnews.com/nbcnews/public/news", Bias: "Center-Left"},
	{ID: "abc", Display: "ABC News", FeedURL: "https://abcnews.go.com/abcnews/topstories", Bias: "Center-Left"},
	{ID: "cbs", Display: "CBS News", FeedURL: "https://www.cbsnews.com/latest/rss/main", Bias: "Center-Left"},
}

const maxRSSItemsPerSource = 5

// RSSIngester turns feed entries into fully built stories.
type RSSIngester struct {
	sources   []RSSSource
	parser    *gofeed.Parser
	extractor *Extractor
	seen      SeenChecker
}

func NewRSSIngester(sources []RSSSource, extractor *Extractor, seen SeenChecker) *RSSIngester {
	return &RSSIngester{
		sources:   sources,
		parser:    gofeed.NewParser(),
		extractor: extractor,
		seen:      seen,
	}
}

// Ingest polls every source and returns the built stories plus their
// suggestions. A failing source is logged and skipped; partial results
// are still returned.
func (r *RSSIngester) Ingest(ctx context.Context) ([]models.Story, []models.Suggestion) {
	var stories []models.Story
	var suggestions []models.Suggestion

	for _, src := range r.sources {
		feed, err := r.parser.ParseURLWithContext(src.FeedURL, ctx)
		if err != nil {
			logger.Warn("rss parse failed",
				zap.String("source", src.Display),
				zap.Error(err),
			)
			continue
		}
		if len(feed.Items) == 0 {
			logger.Info("rss feed empty", zap.String("source", src.Display))
			continue
		}

		items := feed.Items
		if len(items) > maxRSSItemsPerSource {
			items = items[:maxRSSItemsPerSource]
		}
		before := len(stories)

		for _, entry := range items {
			headline := strings.TrimSpace(entry.Title)
			link := entry.Link
			if link == "" {
				link = entry.GUID
			}
			if headline == "" || link == "" {
				continue
			}
			if r.seen != nil && r.seen.Seen(ctx, link) {
				continue
			}

			story, sugg, err := buildFromLink(ctx, r.extractor, headline, link, models.SourceTypeRSS, src.Display, src.Bias)
			if err != nil {
				logger.Debug("rss item skipped",
					zap.String("source", src.Display),
					zap.String("headline", headline),
					zap.Error(err),
				)
				continue
			}
			stories = append(stories, story)
			suggestions = append(suggestions, sugg...)
		}

		logger.Info("rss source done",
			zap.String("source", src.Display),
			zap.Int("stories", len(stories)-before),
		)
	}

	return stories, suggestions
}

// buildFromLink fetches one article and assembles the story record with
// summaries, classification and the four tone suggestions.
func buildFromLink(ctx context.Context, ex *Extractor, headline, link, sourceType, sourceName, bias string) (models.Story, []models.Suggestion, error) {
	meta, err := ex.FetchArticle(ctx, link, headline)
	if err != nil {
		return models.Story{}, nil, err
	}

	classifyInput := meta.FullText
	if classifyInput == "" {
		classifyInput = headline
	}

	story := BuildStory(StoryParams{
		Headline:     headline,
		SourceType:   sourceType,
		SourceName:   sourceName,
		SourceURL:    link,
		Topic:        ClassifyTopic(classifyInput),
		Bias:         bias,
		Sentiment:    GuessSentiment(classifyInput),
		RawText:      meta.FullText,
		ShortSummary: BulletSummary(meta.FullText, 3),
		LongSummary:  BulletSummary(meta.FullText, 6),
		Byline:       meta.Byline,
		ImageURL:     meta.ImageURL,
	})
	return story, BuildSuggestions(story.ID, headline), nil
}
