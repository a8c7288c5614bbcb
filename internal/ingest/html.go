package ingest

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/rushnews/newsstream/pkg/logger"
	"github.com/rushnews/newsstream/pkg/models"
)

// HTMLSource is one homepage to scrape for headline links.
type HTMLSource struct {
	BaseURL string
	Display string
	Bias    string
}

// DefaultHTMLSources lists outlets without a usable feed; their
// homepages are scraped directly.
var DefaultHTMLSources = []HTMLSource{
	{BaseURL: "https://justthenews.com", Display: "Just The News", Bias: "Right"},
	{BaseURL: "https://www.washingtonpost.com", Display: "Washington Post", Bias: "Left"},
	{BaseURL: "https://www.nytimes.com", Display: "New York Times", Bias: "Left"},
}

const (
	maxScrapedItemsPerSource = 10

	// Anchor text under this length is a nav label, not a headline.
	minHeadlineChars = 40
)

// HTMLIngester scrapes homepage anchors and builds stories from the
// linked articles.
type HTMLIngester struct {
	sources   []HTMLSource
	extractor *Extractor
	seen      SeenChecker
}

func NewHTMLIngester(sources []HTMLSource, extractor *Extractor, seen SeenChecker) *HTMLIngester {
	return &HTMLIngester{sources: sources, extractor: extractor, seen: seen}
}

func (h *HTMLIngester) Ingest(ctx context.Context) ([]models.Story, []models.Suggestion) {
	var stories []models.Story
	var suggestions []models.Suggestion

	for _, src := range h.sources {
		s, g := h.scrapeHomepage(ctx, src)
		stories = append(stories, s...)
		suggestions = append(suggestions, g...)
	}
	return stories, suggestions
}

func (h *HTMLIngester) scrapeHomepage(ctx context.Context, src HTMLSource) ([]models.Story, []models.Suggestion) {
	html, err := h.extractor.fetchHTML(ctx, src.BaseURL)
	if err != nil {
		logger.Warn("homepage fetch failed",
			zap.String("source", src.Display),
			zap.Error(err),
		)
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		logger.Warn("homepage parse failed",
			zap.String("source", src.Display),
			zap.Error(err),
		)
		return nil, nil
	}

	var stories []models.Story
	var suggestions []models.Suggestion
	linksSeen := map[string]struct{}{}

	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if len(stories) >= maxScrapedItemsPerSource {
			return false
		}

		href := sel.AttrOr("href", "")
		text := strings.TrimSpace(sel.Text())
		if text == "" || len(text) < minHeadlineChars {
			return true
		}
		if _, ok := linksSeen[href]; ok {
			return true
		}
		linksSeen[href] = struct{}{}

		var articleURL string
		switch {
		case strings.HasPrefix(href, "/"):
			articleURL = strings.TrimRight(src.BaseURL, "/") + href
		case strings.HasPrefix(href, "http"):
			articleURL = href
		default:
			return true
		}

		if h.seen != nil && h.seen.Seen(ctx, articleURL) {
			return true
		}

		story, sugg, err := buildFromLink(ctx, h.extractor, text, articleURL, models.SourceTypeCustom, src.Display, src.Bias)
		if err != nil {
			logger.Debug("scraped item skipped",
				zap.String("source", src.Display),
				zap.String("headline", text),
				zap.Error(err),
			)
			return true
		}
		stories = append(stories, story)
		suggestions = append(suggestions, sugg...)
		return true
	})

	logger.Info("homepage scrape done",
		zap.String("source", src.Display),
		zap.Int("stories", len(stories)),
	)
	return stories, suggestions
}
