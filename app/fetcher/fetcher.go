package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/temoto/robotstxt"
	"golang.org/x/time/rate"
)

const (
	// DefaultUserAgent mimics a browser; Substack serves a reduced
	// page to obvious bots.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	DefaultTimeout = 15 * time.Second

	pageCacheTTL   = 30 * time.Minute
	robotsCacheTTL = 6 * time.Hour

	maxBodySize = 4 << 20 // 4 MiB is plenty for any article page
)

// ErrUnavailable marks fetch failures the pipeline treats as
// "metadata unavailable" for the item rather than as fatal errors.
var ErrUnavailable = fmt.Errorf("page unavailable")

// Fetcher downloads pages politely: a shared rate limit across all
// hosts, robots.txt honored per host, and a short-lived page cache so
// a batch run and a re-run during development don't hammer anyone.
type Fetcher struct {
	httpClient  *http.Client
	userAgent   string
	limiter     *rate.Limiter
	pageCache   *cache.Cache
	robotsCache *cache.Cache
}

func NewFetcher(userAgent string, timeout time.Duration, requestsPerSecond float64) *Fetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 2
	}

	return &Fetcher{
		httpClient:  &http.Client{Timeout: timeout},
		userAgent:   userAgent,
		limiter:     rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		pageCache:   cache.New(pageCacheTTL, 10*time.Minute),
		robotsCache: cache.New(robotsCacheTTL, time.Hour),
	}
}

// Run downloads a page and returns its HTML. Network failures,
// non-200 responses and robots.txt denials all return ErrUnavailable-
// wrapped errors; the caller leaves the item unchanged.
func (f *Fetcher) Run(ctx context.Context, pageURL string) (string, error) {
	if cached, ok := f.pageCache.Get(pageURL); ok {
		return cached.(string), nil
	}

	allowed, err := f.robotsAllowed(ctx, pageURL)
	if err == nil && !allowed {
		slog.Debug("Fetch disallowed by robots.txt", "url", pageURL)
		return "", fmt.Errorf("%w: disallowed by robots.txt", ErrUnavailable)
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return "", err
	}

	html, err := f.get(ctx, pageURL)
	if err != nil {
		return "", err
	}

	f.pageCache.Set(pageURL, html, cache.DefaultExpiration)
	return html, nil
}

func (f *Fetcher) get(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return string(body), nil
}

// robotsAllowed checks the host's robots.txt, cached per host. An
// unreachable or missing robots.txt means allowed.
func (f *Fetcher) robotsAllowed(ctx context.Context, pageURL string) (bool, error) {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return true, nil
	}

	var robots *robotstxt.RobotsData
	if cached, ok := f.robotsCache.Get(u.Host); ok {
		robots = cached.(*robotstxt.RobotsData)
	} else {
		robots = f.fetchRobots(ctx, u)
		f.robotsCache.Set(u.Host, robots, cache.DefaultExpiration)
	}

	if robots == nil {
		return true, nil
	}
	return robots.TestAgent(u.Path, f.userAgent), nil
}

func (f *Fetcher) fetchRobots(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	robots, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil
	}
	return robots
}
