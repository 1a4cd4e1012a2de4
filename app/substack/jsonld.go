package substack

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StructuredData is one JSON-LD object found on a page: its schema.org
// @type plus the raw field mapping. Pages frequently carry several
// (article, breadcrumbs, organization, @graph bundles).
type StructuredData struct {
	Type   string
	Fields map[string]any
}

// contentSchemaTypes are the @type values that describe the actual
// content of a page, as opposed to boilerplate like WebPage or
// Organization. Ordered by selection priority: a Comment record on a
// comment page beats the enclosing article.
var contentSchemaTypes = []string{
	"Comment",
	"NewsArticle",
	"BlogPosting",
	"SocialMediaPosting",
	"DiscussionForumPosting",
	"Article",
}

// ParseStructuredData collects every JSON-LD block in the document.
// Malformed blocks are skipped silently; one broken script must not
// abort extraction for the page.
func ParseStructuredData(doc *goquery.Document) []StructuredData {
	var records []StructuredData

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}

		var payload any
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return
		}

		records = append(records, flattenPayload(payload)...)
	})

	return records
}

// flattenPayload normalizes a decoded JSON-LD payload into flat
// records, descending into top-level arrays and @graph bundles.
func flattenPayload(payload any) []StructuredData {
	switch v := payload.(type) {
	case []any:
		var records []StructuredData
		for _, entry := range v {
			records = append(records, flattenPayload(entry)...)
		}
		return records
	case map[string]any:
		if graph, ok := v["@graph"].([]any); ok {
			var records []StructuredData
			for _, entry := range graph {
				records = append(records, flattenPayload(entry)...)
			}
			return records
		}
		if rec, ok := newRecord(v); ok {
			return []StructuredData{rec}
		}
	}
	return nil
}

func newRecord(fields map[string]any) (StructuredData, bool) {
	switch t := fields["@type"].(type) {
	case string:
		return StructuredData{Type: t, Fields: fields}, true
	case []any:
		// Multi-typed records keep the first content type if any,
		// otherwise the first type listed.
		first := ""
		for _, entry := range t {
			name, ok := entry.(string)
			if !ok {
				continue
			}
			if first == "" {
				first = name
			}
			for _, content := range contentSchemaTypes {
				if name == content {
					return StructuredData{Type: name, Fields: fields}, true
				}
			}
		}
		if first != "" {
			return StructuredData{Type: first, Fields: fields}, true
		}
	}
	return StructuredData{}, false
}

// String returns a trimmed string field, or "" when absent or not a
// string.
func (r StructuredData) String(key string) string {
	s, _ := r.Fields[key].(string)
	return strings.TrimSpace(s)
}

// AuthorName resolves the author field, which appears as a plain
// string, an object with a name, or an array of such objects.
func (r StructuredData) AuthorName() string {
	return authorNameOf(r.Fields["author"])
}

func authorNameOf(field any) string {
	switch v := field.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		name, _ := v["name"].(string)
		return strings.TrimSpace(name)
	case []any:
		for _, entry := range v {
			if name := authorNameOf(entry); name != "" {
				return name
			}
		}
	}
	return ""
}

// PublisherName returns the publisher's name when the publisher is an
// object carrying one.
func (r StructuredData) PublisherName() string {
	pub, ok := r.Fields["publisher"].(map[string]any)
	if !ok {
		return ""
	}
	name, _ := pub["name"].(string)
	return strings.TrimSpace(name)
}

// Date returns the first populated publication date field.
func (r StructuredData) Date() string {
	for _, key := range []string{"datePublished", "dateCreated", "dateModified"} {
		if v := r.String(key); v != "" {
			return v
		}
	}
	return ""
}

// BodyText returns the record's textual content, preferring the
// dedicated text field over articleBody.
func (r StructuredData) BodyText() string {
	if v := r.String("text"); v != "" {
		return v
	}
	return r.String("articleBody")
}

func (r StructuredData) hasAuthorOrDate() bool {
	return r.AuthorName() != "" || r.String("datePublished") != ""
}

// NestedComment returns the first entry of the record's comment array
// as its own record, for LinkedIn /feed/update/ pages where the
// comment being referenced is nested inside a SocialMediaPosting.
func (r StructuredData) NestedComment() (StructuredData, bool) {
	comments, ok := r.Fields["comment"].([]any)
	if !ok || len(comments) == 0 {
		return StructuredData{}, false
	}
	fields, ok := comments[0].(map[string]any)
	if !ok {
		return StructuredData{}, false
	}
	rec, ok := newRecord(fields)
	if !ok {
		// Nested comments sometimes omit @type; treat them as comments.
		return StructuredData{Type: "Comment", Fields: fields}, true
	}
	return rec, true
}

// SelectRecord picks the record extraction should read from.
// Priority: LinkedIn nested comments, then top-level comments, then
// content records in contentSchemaTypes order. Among records of the
// same type, one carrying an author or publication date wins.
func SelectRecord(records []StructuredData, rawURL string) *StructuredData {
	if isLinkedInFeedUpdate(rawURL) {
		for _, rec := range records {
			if rec.Type != "SocialMediaPosting" {
				continue
			}
			if nested, ok := rec.NestedComment(); ok {
				return &nested
			}
		}
	}

	for _, schemaType := range contentSchemaTypes {
		var fallback *StructuredData
		for i := range records {
			if records[i].Type != schemaType {
				continue
			}
			if records[i].hasAuthorOrDate() {
				return &records[i]
			}
			if fallback == nil {
				fallback = &records[i]
			}
		}
		if fallback != nil {
			return fallback
		}
	}

	return nil
}

func isLinkedInFeedUpdate(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	return strings.Contains(lower, "linkedin.com") && strings.Contains(lower, "/feed/update/")
}

// IsLinkedInURL reports whether a URL belongs to LinkedIn.
func IsLinkedInURL(rawURL string) bool {
	host := hostOf(rawURL)
	return host == "linkedin.com" || strings.HasSuffix(host, ".linkedin.com")
}

// IsSubstackPage inspects JSON-LD content markers to recognize a
// Substack-rendered page regardless of its host. This is how
// custom-domain publications are confirmed without an allow-list.
func IsSubstackPage(records []StructuredData) bool {
	for _, rec := range records {
		if rec.Type != "NewsArticle" {
			continue
		}
		if strings.Contains(rec.String("url"), "substack.com") {
			return true
		}
		if strings.Contains(imageURLOf(rec.Fields["image"]), "substackcdn.com") {
			return true
		}
		if pub, ok := rec.Fields["publisher"].(map[string]any); ok {
			if u, _ := pub["url"].(string); strings.HasSuffix(strings.TrimSpace(u), "substack.com") {
				return true
			}
			if id, _ := pub["identifier"].(string); strings.HasPrefix(id, "pub:") {
				return true
			}
		}
	}
	return false
}

func imageURLOf(field any) string {
	switch v := field.(type) {
	case string:
		return v
	case map[string]any:
		u, _ := v["url"].(string)
		return u
	case []any:
		for _, entry := range v {
			if u := imageURLOf(entry); u != "" {
				return u
			}
		}
	}
	return ""
}
