package downloader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/iconidentify/xcourier/internal/config"
	"github.com/iconidentify/xcourier/internal/domain"
)

// HTTPDownloader implements Downloader using HTTP requests.
type HTTPDownloader struct {
	// client is used for short requests (Probe) with an overall timeout
	client *http.Client
	// streamClient is used for streaming downloads without overall timeout
	streamClient *http.Client
	userAgent    string
	logger       *slog.Logger
}

// NewHTTPDownloader creates a new HTTP-based media downloader.
func NewHTTPDownloader(cfg config.DeliveryConfig) *HTTPDownloader {
	probeTimeout := cfg.ProbeTimeout
	if probeTimeout <= 0 {
		probeTimeout = 10 * time.Second
	}

	// Transport for streaming downloads - no overall timeout, but header timeout
	streamTransport := &http.Transport{
		ResponseHeaderTimeout: 30 * time.Second,
	}

	return &HTTPDownloader{
		client: &http.Client{
			Timeout: probeTimeout,
		},
		streamClient: &http.Client{
			Transport: streamTransport,
		},
		userAgent: cfg.UserAgent,
		logger:    slog.Default(),
	}
}

// SetLogger sets the logger for download progress reporting.
func (d *HTTPDownloader) SetLogger(logger *slog.Logger) {
	d.logger = logger
}

// Download opens a streaming GET for the media at url. The returned size is
// the single authoritative measurement for tier decisions. Returns
// domain.ErrSizeUnknown when the response declares no usable content length.
func (d *HTTPDownloader) Download(ctx context.Context, url string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	// Set headers to mimic browser request
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "video/mp4,video/*;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Referer", "https://x.com/")

	resp, err := d.streamClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("send request: %w", err)
	}

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		return nil, 0, domain.ErrURLExpired
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		resp.Body.Close()
		return nil, 0, domain.ErrRateLimited
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	size := resp.ContentLength
	if size < 0 {
		// Try to parse from header
		if cl := resp.Header.Get("Content-Length"); cl != "" {
			size, _ = strconv.ParseInt(cl, 10, 64)
		}
	}
	if size < 0 {
		resp.Body.Close()
		return nil, 0, domain.ErrSizeUnknown
	}

	return newProgressReader(resp.Body, size, d.logger), size, nil
}

// Probe checks URL accessibility without downloading full content.
func (d *HTTPDownloader) Probe(ctx context.Context, url string) (*ProbeResult, error) {
	req, err := http.NewRequestWithContext(ctx, "HEAD", url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Referer", "https://x.com/")

	resp, err := d.client.Do(req)
	if err != nil {
		return &ProbeResult{
			Accessible: false,
			Error:      err.Error(),
		}, nil
	}
	defer resp.Body.Close()

	result := &ProbeResult{
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
		Accessible:    resp.StatusCode == http.StatusOK,
	}

	if !result.Accessible {
		result.Error = fmt.Sprintf("status code %d", resp.StatusCode)
	}

	return result, nil
}

// progressReader wraps an io.ReadCloser to log transfer progress for large
// files.
type progressReader struct {
	reader     io.ReadCloser
	total      int64
	downloaded int64
	lastLog    time.Time
	logger     *slog.Logger
	mu         sync.Mutex
	closed     bool
}

func newProgressReader(r io.ReadCloser, total int64, logger *slog.Logger) *progressReader {
	return &progressReader{
		reader:  r,
		total:   total,
		lastLog: time.Now(),
		logger:  logger,
	}
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.reader.Read(buf)

	p.mu.Lock()
	defer p.mu.Unlock()

	if n > 0 {
		p.downloaded += int64(n)

		// Log progress every 30 seconds
		if time.Since(p.lastLog) > 30*time.Second {
			p.logProgress()
			p.lastLog = time.Now()
		}
	}

	return n, err
}

func (p *progressReader) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true

	// Log final progress
	if p.downloaded > 0 {
		p.logProgress()
	}
	p.mu.Unlock()

	return p.reader.Close()
}

func (p *progressReader) logProgress() {
	if p.total > 0 {
		pct := float64(p.downloaded) / float64(p.total) * 100
		p.logger.Info("download progress",
			"downloaded_mb", p.downloaded/(1024*1024),
			"total_mb", p.total/(1024*1024),
			"percent", fmt.Sprintf("%.1f%%", pct),
		)
	} else {
		p.logger.Info("download progress",
			"downloaded_mb", p.downloaded/(1024*1024),
		)
	}
}
