package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/iconidentify/xcourier/internal/config"
	"github.com/iconidentify/xcourier/internal/domain"
)

var (
	// shortLinkPattern matches t.co redirect tokens embedded in free text.
	shortLinkPattern = regexp.MustCompile(`t\.co/[a-zA-Z0-9]+`)

	// postIDPattern matches status links on both host families and
	// captures the numeric post ID.
	postIDPattern = regexp.MustCompile(`(?:twitter|x)\.com/.{1,15}/(?:web|status(?:es)?)/([0-9]{1,20})`)
)

// Resolver extracts post IDs from message text, resolving t.co short
// links to their final URLs first.
type Resolver struct {
	client *http.Client
	logger *slog.Logger
}

// NewResolver creates a resolver with the configured HTTP timeout.
func NewResolver(cfg config.ResolverConfig, logger *slog.Logger) *Resolver {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Resolver{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// ExtractPostIDs returns the unique post IDs found in text, in order of
// first appearance. Short links are resolved best-effort first; a failed
// resolution only excludes that link's final URL from matching.
func (r *Resolver) ExtractPostIDs(ctx context.Context, text string) []domain.PostID {
	searchText := text
	for _, link := range shortLinkPattern.FindAllString(text, -1) {
		resolved, err := r.resolveShortLink(ctx, link)
		if err != nil {
			r.logger.Info("could not unshorten link", "link", link, "error", err)
			continue
		}
		r.logger.Info("unshortened link", "link", link, "resolved", resolved)
		searchText += "\n" + resolved
	}

	var ids []domain.PostID
	seen := make(map[string]struct{})
	for _, match := range postIDPattern.FindAllStringSubmatch(searchText, -1) {
		id := match[1]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, domain.PostID(id))
	}
	return ids
}

// resolveShortLink follows redirects for one short link and returns the
// final URL. The final page's status does not matter, only where the
// redirect chain ends.
func (r *Resolver) resolveShortLink(ctx context.Context, link string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://"+link, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	return resp.Request.URL.String(), nil
}
