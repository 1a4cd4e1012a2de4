package zotero

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
)

const (
	// DefaultBaseURL is the Zotero Web API endpoint.
	DefaultBaseURL = "https://api.zotero.org"

	// PageLimit is the listing page size; the API caps limit at 100.
	PageLimit = 100

	// UpdateBatchSize is the number of items written per update call;
	// the API caps multi-object writes at 50.
	UpdateBatchSize = 50
)

// Client is a minimal Zotero Web API v3 client covering what the comb
// needs: paged item listing, batch updates, and incremental sync via
// library versions.
type Client struct {
	baseURL     string
	apiKey      string
	libraryID   string
	libraryType string
	userAgent   string
	httpClient  *http.Client
}

// NewClient builds a client for the given library. libraryType is
// "user" or "group".
func NewClient(baseURL, apiKey, libraryID, libraryType, userAgent string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		libraryID:   libraryID,
		libraryType: libraryType,
		userAgent:   userAgent,
		httpClient:  httpClient,
	}
}

// LibraryPrefix returns the API path prefix for the configured
// library, e.g. /users/12345 or /groups/67890.
func (c *Client) LibraryPrefix() string {
	if c.libraryType == "group" {
		return "/groups/" + c.libraryID
	}
	return "/users/" + c.libraryID
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + c.LibraryPrefix() + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Zotero-API-Version", "3")
	req.Header.Set("Zotero-API-Key", c.apiKey)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// Items fetches one page of items of the given type.
func (c *Client) Items(ctx context.Context, itemType string, start, limit int) ([]Item, error) {
	query := url.Values{}
	query.Set("itemType", itemType)
	query.Set("start", strconv.Itoa(start))
	query.Set("limit", strconv.Itoa(limit))
	query.Set("format", "json")

	req, err := c.newRequest(ctx, http.MethodGet, "/items", query, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d listing items", resp.StatusCode)
	}

	var items []Item
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}

	return items, nil
}

// AllItems pages through every item of the given types. Zotero stores
// saved web entries as webpage, blogPost or forumPost, so a full comb
// passes all three.
func (c *Client) AllItems(ctx context.Context, itemTypes ...string) ([]Item, error) {
	var all []Item

	for _, itemType := range itemTypes {
		start := 0
		for {
			page, err := c.Items(ctx, itemType, start, PageLimit)
			if err != nil {
				return nil, fmt.Errorf("listing %s items at offset %d: %w", itemType, start, err)
			}
			if len(page) == 0 {
				break
			}

			all = append(all, page...)
			start += len(page)

			if len(page) < PageLimit {
				break
			}
		}
	}

	slog.Debug("Library listing complete", "items", len(all), "types", itemTypes)
	return all, nil
}

// UpdateItem writes a single partial item update.
func (c *Client) UpdateItem(ctx context.Context, data ItemData) error {
	return c.UpdateItems(ctx, []ItemData{data})
}

// UpdateItems writes partial updates in batches of UpdateBatchSize.
// Every payload must carry its item key and last-known version.
func (c *Client) UpdateItems(ctx context.Context, updates []ItemData) error {
	for start := 0; start < len(updates); start += UpdateBatchSize {
		end := start + UpdateBatchSize
		if end > len(updates) {
			end = len(updates)
		}

		if err := c.postBatch(ctx, updates[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) postBatch(ctx context.Context, batch []ItemData) error {
	payload, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to encode update batch: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/items", nil, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post update batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("unexpected status %d updating items: %s", resp.StatusCode, string(body))
	}

	// Multi-object writes succeed with 200 even when individual
	// objects fail; those come back under "failed".
	var result struct {
		Failed map[string]struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"failed"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil && len(result.Failed) > 0 {
		for idx, failure := range result.Failed {
			slog.Error("Item update rejected", "index", idx, "code", failure.Code, "message", failure.Message)
		}
		return fmt.Errorf("%d of %d item updates rejected", len(result.Failed), len(batch))
	}

	slog.Debug("Update batch applied", "items", len(batch))
	return nil
}

// Version returns the library's current version from a cheap
// single-item request.
func (c *Client) Version(ctx context.Context) (int, error) {
	query := url.Values{}
	query.Set("format", "versions")
	query.Set("limit", "1")

	req, err := c.newRequest(ctx, http.MethodGet, "/items", query, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch library version: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %d fetching library version", resp.StatusCode)
	}

	return parseVersionHeader(resp)
}

// ChangedItems returns items modified since the given library version
// together with the library's new version.
func (c *Client) ChangedItems(ctx context.Context, since int) ([]Item, int, error) {
	query := url.Values{}
	query.Set("since", strconv.Itoa(since))
	query.Set("format", "json")
	query.Set("limit", strconv.Itoa(PageLimit))

	req, err := c.newRequest(ctx, http.MethodGet, "/items", query, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch changed items: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("unexpected status %d fetching changed items", resp.StatusCode)
	}

	version, err := parseVersionHeader(resp)
	if err != nil {
		return nil, 0, err
	}

	var items []Item
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, 0, fmt.Errorf("failed to decode changed items: %w", err)
	}

	return items, version, nil
}

func parseVersionHeader(resp *http.Response) (int, error) {
	header := resp.Header.Get("Last-Modified-Version")
	if header == "" {
		return 0, fmt.Errorf("response missing Last-Modified-Version header")
	}
	version, err := strconv.Atoi(header)
	if err != nil {
		return 0, fmt.Errorf("invalid Last-Modified-Version %q: %w", header, err)
	}
	return version, nil
}

// MaskKey renders an API key safe for logging.
func MaskKey(key string) string {
	if len(key) < 8 {
		return "***"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
