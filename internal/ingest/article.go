package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36"

	// Articles shorter than this are navigation pages or paywalled stubs.
	minArticleChars = 400
)

// ArticleMeta is the usable content extracted from one article page.
type ArticleMeta struct {
	FullText       string
	FirstParagraph string
	Byline         string
	ImageURL       string
}

// Extractor fetches article pages and pulls readable text plus byline
// and image metadata out of them.
type Extractor struct {
	client *http.Client
}

func NewExtractor() *Extractor {
	return &Extractor{client: &http.Client{Timeout: 15 * time.Second}}
}

func (e *Extractor) fetchHTML(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d from %s", resp.StatusCode, pageURL)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchArticle downloads pageURL and returns its cleaned text and
// metadata. Pages whose readable text is shorter than minArticleChars
// come back as a nil meta with an error.
func (e *Extractor) FetchArticle(ctx context.Context, pageURL, headline string) (*ArticleMeta, error) {
	html, err := e.fetchHTML(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse url %s: %w", pageURL, err)
	}

	article, err := readability.FromReader(strings.NewReader(html), parsed)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", pageURL, err)
	}

	fullText := strings.TrimSpace(article.TextContent)
	if len(fullText) < minArticleChars {
		return nil, fmt.Errorf("article too short (%d chars) from %s", len(fullText), pageURL)
	}

	cleaned := CleanRawText(fullText, headline)
	first := cleaned
	for _, p := range strings.Split(cleaned, "\n") {
		if p = strings.TrimSpace(p); p != "" {
			first = p
			break
		}
	}

	byline, imageURL := extractBylineAndImage(html)
	if byline == "" {
		byline = strings.TrimSpace(article.Byline)
	}
	if imageURL == "" {
		imageURL = strings.TrimSpace(article.Image)
	}

	return &ArticleMeta{
		FullText:       cleaned,
		FirstParagraph: first,
		Byline:         byline,
		ImageURL:       imageURL,
	}, nil
}

// extractBylineAndImage scans meta tags for an author credit and a lead
// image. Bylines under 5 characters are junk values like "-".
func extractBylineAndImage(html string) (byline, imageURL string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", ""
	}

	doc.Find("meta").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		name := strings.ToLower(sel.AttrOr("name", ""))
		prop := strings.ToLower(sel.AttrOr("property", ""))
		if name == "byl" || name == "byline" || name == "author" || prop == "article:author" {
			if content := strings.TrimSpace(sel.AttrOr("content", "")); len(content) >= 5 {
				byline = content
				return false
			}
		}
		return true
	})

	if og := doc.Find(`meta[property="og:image"]`).First(); og.Length() > 0 {
		imageURL = strings.TrimSpace(og.AttrOr("content", ""))
	}
	if imageURL == "" {
		if img := doc.Find("img[src]").First(); img.Length() > 0 {
			imageURL = strings.TrimSpace(img.AttrOr("src", ""))
		}
	}
	return byline, imageURL
}
