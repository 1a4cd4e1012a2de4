package substack

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

// Extractor combines JSON-LD parsing with DOM fallback scraping into a
// single normalized Metadata record. Run is total over its input:
// malformed or empty pages produce best-effort defaults, never an
// error, so one broken page cannot halt a batch run.
type Extractor struct {
	titlePolicy *TitlePolicy
}

func NewExtractor() *Extractor {
	return &Extractor{titlePolicy: NewTitlePolicy()}
}

// page bundles the parsed artifacts the extraction strategies share.
type page struct {
	doc     *goquery.Document
	records []StructuredData
	target  *StructuredData
	rawURL  string
}

// Run extracts normalized metadata from a page.
func (e *Extractor) Run(html string, rawURL string, contentType ContentType) Metadata {
	meta := Metadata{
		ContentType: contentType,
		ItemType:    ItemTypeFor(contentType, ""),
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil || html == "" {
		meta.Title = DefaultTitle(contentType)
		return meta
	}

	records := ParseStructuredData(doc)
	target := SelectRecord(records, rawURL)
	pg := &page{doc: doc, records: records, target: target, rawURL: rawURL}

	if target != nil {
		meta.SchemaType = target.Type
		meta.Publisher = target.PublisherName()
	}
	meta.ItemType = ItemTypeFor(contentType, meta.SchemaType)

	meta.Title = e.titlePolicy.Run(contentType, target, doc)
	meta.Author = e.extractAuthor(pg)
	meta.Date = e.extractDate(pg)

	slog.Debug("Metadata extracted",
		"url", rawURL,
		"schema_type", meta.SchemaType,
		"title_len", len(meta.Title),
		"author", meta.Author)

	return meta
}

// Author strategies run in order; the first non-empty trimmed result
// wins and no further strategies run. Each strategy is independent so
// it can be reasoned about (and tested) on its own.
func (e *Extractor) extractAuthor(pg *page) string {
	strategies := []func(*page) string{
		authorFromRecord,
		authorFromMetaTags,
		authorFromSocialTags,
		authorFromProfileLinks,
		authorFromAnyRecord,
	}

	for _, strategy := range strategies {
		if author := strategy(pg); author != "" {
			return author
		}
	}
	return ""
}

func authorFromRecord(pg *page) string {
	if pg.target == nil {
		return ""
	}
	return pg.target.AuthorName()
}

func authorFromMetaTags(pg *page) string {
	for _, selector := range []string{
		`meta[name="author"]`,
		`meta[property="article:author"]`,
	} {
		if content, ok := pg.doc.Find(selector).First().Attr("content"); ok {
			if author := strings.TrimSpace(content); author != "" {
				return author
			}
		}
	}
	return ""
}

func authorFromSocialTags(pg *page) string {
	for _, selector := range []string{
		`meta[property="og:author"]`,
		`meta[property="author"]`,
		`meta[name="twitter:creator"]`,
	} {
		if content, ok := pg.doc.Find(selector).First().Attr("content"); ok {
			author := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(content), "@"))
			if author != "" {
				return author
			}
		}
	}
	return ""
}

var profileHrefPattern = regexp.MustCompile(`/@([\w.-]+)`)

// authorFromProfileLinks scans author-like DOM elements: Substack
// profile links of the shape /@username and elements classed author or
// byline. When matched via href, the username is taken from the link
// target rather than its text.
func authorFromProfileLinks(pg *page) string {
	author := ""

	pg.doc.Find(`a[href*="/@"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if !ok {
			return true
		}
		if m := profileHrefPattern.FindStringSubmatch(href); m != nil {
			author = m[1]
			return false
		}
		return true
	})
	if author != "" {
		return author
	}

	for _, selector := range []string{".author", ".byline", `[class*="author-name"]`} {
		if text := CollapseWhitespace(pg.doc.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// authorFromAnyRecord is the last resort: a second pass over every
// JSON-LD record on the page, not just the selected one.
func authorFromAnyRecord(pg *page) string {
	for _, rec := range pg.records {
		if author := rec.AuthorName(); author != "" {
			return author
		}
	}
	return ""
}

// extractDate reads the publication date from the selected record,
// falling back to the article:published_time meta tag. Parseable
// values are normalized to YYYY-MM-DD; unparseable ones are passed
// through raw; absent ones stay empty, a date is never invented.
func (e *Extractor) extractDate(pg *page) string {
	raw := ""
	if pg.target != nil {
		raw = pg.target.Date()
	}
	if raw == "" {
		if content, ok := pg.doc.Find(`meta[property="article:published_time"]`).First().Attr("content"); ok {
			raw = strings.TrimSpace(content)
		}
	}
	if raw == "" {
		return ""
	}
	return NormalizeDate(raw)
}

// NormalizeDate parses a date string in any common format and returns
// it as YYYY-MM-DD. Unparseable input is returned trimmed, unchanged.
func NormalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return raw
	}
	return t.Format("2006-01-02")
}
