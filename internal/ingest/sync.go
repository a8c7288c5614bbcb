package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rushnews/newsstream/pkg/models"
)

// SyncClient pushes ingestion output to the API server. Story batches
// can be large, so /sync gets a much longer timeout than the trend
// endpoints.
type SyncClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewSyncClient(baseURL, apiKey string) *SyncClient {
	return &SyncClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{},
	}
}

func (c *SyncClient) postJSON(ctx context.Context, path string, payload any, timeout time.Duration) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("post %s: status %d: %s", path, resp.StatusCode, msg)
	}
	return nil
}

// SyncStories uploads a story batch with its suggestions.
func (c *SyncClient) SyncStories(ctx context.Context, stories []models.Story, suggestions []models.Suggestion) error {
	if len(stories) == 0 {
		return nil
	}
	payload := map[string]any{
		"api_key":     c.apiKey,
		"stories":     stories,
		"suggestions": suggestions,
	}
	return c.postJSON(ctx, "/sync", payload, 120*time.Second)
}

// SyncTrends uploads a trend batch.
func (c *SyncClient) SyncTrends(ctx context.Context, trends []models.Trend) error {
	if len(trends) == 0 {
		return nil
	}
	payload := map[string]any{
		"api_key": c.apiKey,
		"trends":  trends,
	}
	return c.postJSON(ctx, "/sync_trends", payload, 60*time.Second)
}

// PurgeTrends asks the server to keep only the keepLatest most recent
// trends of trendType. Arguments go as query parameters.
func (c *SyncClient) PurgeTrends(ctx context.Context, trendType string, keepLatest int) error {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("keep_latest", strconv.Itoa(keepLatest))
	q.Set("trend_type", trendType)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/purge_trends?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post /purge_trends: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("post /purge_trends: status %d: %s", resp.StatusCode, msg)
	}
	return nil
}

// FetchXTrends pulls the server's current x_news trends, the baseline
// for the merge step. A failed fetch returns nil so the run proceeds
// with incoming trends only.
func (c *SyncClient) FetchXTrends(ctx context.Context) ([]models.Trend, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/xtrends", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get /xtrends: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get /xtrends: status %d", resp.StatusCode)
	}

	var trends []models.Trend
	if err := json.NewDecoder(resp.Body).Decode(&trends); err != nil {
		return nil, fmt.Errorf("decode /xtrends: %w", err)
	}
	return trends, nil
}
