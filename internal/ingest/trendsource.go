package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/rushnews/newsstream/internal/db"
	"github.com/rushnews/newsstream/pkg/models"
)

// TrendSource supplies the raw trend items of one run. Browser-driven
// scrapers, export files and HTTP feeds all hide behind this.
type TrendSource interface {
	Fetch(ctx context.Context) ([]TrendItem, error)
}

// TrendItem is one scraped trend before it becomes a Trend record.
type TrendItem struct {
	Keyword  string   `json:"keyword"`
	Category string   `json:"category"`
	URL      string   `json:"url"`
	Summary  string   `json:"summary"`
	PostURLs []string `json:"post_urls"`
}

// BuildTrends turns raw items into Trend records. Score is a running
// position counter per category, starting at 1.
func BuildTrends(items []TrendItem) []models.Trend {
	now := time.Now().UTC()
	position := map[string]int{}

	out := make([]models.Trend, 0, len(items))
	for _, item := range items {
		if item.Keyword == "" {
			continue
		}
		position[item.Category]++

		postURLs := dbtypes.URLList{}
		if item.PostURLs != nil {
			postURLs = dbtypes.URLList(item.PostURLs)
		}

		out = append(out, models.Trend{
			ID:          uuid.NewString(),
			Keyword:     item.Keyword,
			Category:    item.Category,
			TrendType:   models.TrendTypeXNews,
			Score:       position[item.Category],
			Region:      "global",
			Summary:     item.Summary,
			PostURLs:    postURLs,
			URL:         item.URL,
			IngestedAt:  now,
			FirstSeenAt: now,
			UpdatedAt:   now,
		})
	}
	return out
}

// FileTrendSource reads trend items from a JSON export on disk, the
// handoff format of the external explore-tab scraper.
type FileTrendSource struct {
	Path string
}

func (f FileTrendSource) Fetch(ctx context.Context) ([]TrendItem, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read trends file: %w", err)
	}
	var items []TrendItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse trends file %s: %w", f.Path, err)
	}
	return items, nil
}

// URLTrendSource fetches the same JSON shape over HTTP.
type URLTrendSource struct {
	URL    string
	Client *http.Client
}

func (u URLTrendSource) Fetch(ctx context.Context) ([]TrendItem, error) {
	client := u.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch trends: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch trends: status %d", resp.StatusCode)
	}
	var items []TrendItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode trends: %w", err)
	}
	return items, nil
}
