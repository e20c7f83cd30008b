package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/iconidentify/xcourier/internal/config"
	"github.com/iconidentify/xcourier/internal/domain"
)

// ogDescriptionPattern pulls the human-readable error out of the HTML page
// the API serves instead of JSON for deleted or protected posts.
var ogDescriptionPattern = regexp.MustCompile(`<meta content="(.*?)" property="og:description" />`)

// Client fetches post metadata from the scraping API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// NewClient creates a new scrape API client.
func NewClient(cfg config.ScraperConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
}

// apiResponse is the JSON payload of the scraping API. Only the fields the
// pipeline consumes are mapped.
type apiResponse struct {
	MediaExtended []struct {
		Type string `json:"type"`
		URL  string `json:"url"`
	} `json:"media_extended"`
	Text string `json:"text"`
}

// Scrape retrieves media metadata for one post. Any failure is returned as a
// *domain.ScrapeError classified by kind.
func (c *Client) Scrape(ctx context.Context, id domain.PostID) (*domain.ScrapeResult, error) {
	url := fmt.Sprintf("%s/Twitter/status/%s", c.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, domain.NewScrapeError(id, domain.ScrapeTransport, fmt.Errorf("create request: %w", err))
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewScrapeError(id, domain.ScrapeTransport, fmt.Errorf("send request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewScrapeError(id, domain.ScrapeTransport, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.NewScrapeError(id, domain.ScrapeTransport, fmt.Errorf("API error (status %d)", resp.StatusCode))
	}

	var payload apiResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		// The API answers some failures with an HTML page whose
		// og:description carries the reason.
		if match := ogDescriptionPattern.FindSubmatch(body); match != nil {
			return nil, &domain.ScrapeError{
				PostID:  id,
				Kind:    domain.ScrapeAPIReported,
				Message: html.UnescapeString(string(match[1])),
			}
		}
		return nil, domain.NewScrapeError(id, domain.ScrapeMalformed, fmt.Errorf("decode response: %w", err))
	}

	result := &domain.ScrapeResult{
		Media: make([]domain.MediaItem, 0, len(payload.MediaExtended)),
		Text:  payload.Text,
	}
	for _, m := range payload.MediaExtended {
		result.Media = append(result.Media, domain.MediaItem{
			Type: domain.MediaType(m.Type),
			URL:  m.URL,
		})
	}

	return result, nil
}
