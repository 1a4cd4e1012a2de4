package discover

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// Discoverer confirms whether a custom domain hosts a Substack
// publication by inspecting its RSS feed. Substack serves every
// publication's feed at /feed and stamps it with recognizable
// markers (generator, substackcdn assets, substack.com links).
type Discoverer struct {
	httpClient *http.Client
	parser     *gofeed.Parser
	userAgent  string
}

func NewDiscoverer(userAgent string, timeout time.Duration) *Discoverer {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Discoverer{
		httpClient: &http.Client{Timeout: timeout},
		parser:     gofeed.NewParser(),
		userAgent:  userAgent,
	}
}

// Confirm fetches and inspects https://<host>/feed. Any fetch or
// parse failure simply means "not confirmed": discovery is an
// optimization, never a gate that can fail a run.
func (d *Discoverer) Confirm(ctx context.Context, host string) bool {
	feed, err := d.fetchFeed(ctx, host)
	if err != nil {
		slog.Debug("Feed discovery failed", "host", host, "error", err)
		return false
	}

	if isSubstackFeed(feed) {
		slog.Info("Custom domain confirmed as Substack", "host", host, "publication", feed.Title)
		return true
	}
	return false
}

func (d *Discoverer) fetchFeed(ctx context.Context, host string) (*gofeed.Feed, error) {
	feedURL := "https://" + host + "/feed"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	feed, err := d.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return feed, nil
}

// isSubstackFeed checks the Substack markers a publication feed
// carries regardless of the domain it is served from.
func isSubstackFeed(feed *gofeed.Feed) bool {
	if strings.Contains(strings.ToLower(feed.Generator), "substack") {
		return true
	}

	if feed.Image != nil && strings.Contains(feed.Image.URL, "substackcdn.com") {
		return true
	}

	for _, link := range feed.Links {
		if strings.Contains(link, "substack.com") {
			return true
		}
	}

	// Post images and inline assets are served from substackcdn even
	// on custom domains; one item is enough to check.
	for i, item := range feed.Items {
		if i >= 3 {
			break
		}
		if strings.Contains(item.Content, "substackcdn.com") ||
			strings.Contains(item.Description, "substackcdn.com") {
			return true
		}
	}

	return false
}
