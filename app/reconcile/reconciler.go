package reconcile

import (
	"context"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/lysyi3m/zot-comb/app/substack"
	"github.com/lysyi3m/zot-comb/app/zotero"
)

const (
	// ProcessedTag marks items that have already been reconciled so
	// repeat runs skip them unless forced.
	ProcessedTag = "zot-comb:processed"

	WebsiteTypeSubstack = "Substack Newsletter"
	WebsiteTypeLinkedIn = "LinkedIn"

	TagSubstack = "Substack"
	TagLinkedIn = "LinkedIn"
)

// Fetcher downloads a page and returns its HTML.
type Fetcher interface {
	Run(ctx context.Context, pageURL string) (string, error)
}

// DomainStore persists custom domains confirmed to host Substack
// publications.
type DomainStore interface {
	Contains(host string) bool
	Add(host, source string) error
}

// Confirmer checks a host through an out-of-band channel (its RSS
// feed) when page content alone is inconclusive.
type Confirmer interface {
	Confirm(ctx context.Context, host string) bool
}

type Options struct {
	Force      bool // reprocess items already tagged
	NoSubstack bool
	NoLinkedIn bool
}

// Result describes what the reconciler decided for one item. Update
// is nil when the item needs no changes.
type Result struct {
	Update      *zotero.ItemData
	ContentType substack.ContentType
	WebsiteType string
	Publication string
	Title       string
	Authors     string
	Date        string
	URLCleaned  bool
}

// Reconciler compares a library item against the live page behind its
// URL and produces the minimal partial update that brings the item in
// line: corrected item type, title, publication, date, creators and
// tags. Updates never touch fields that already hold the right value.
type Reconciler struct {
	validator  *substack.Validator
	classifier *substack.Classifier
	extractor  *substack.Extractor
	fetcher    Fetcher
	domains    DomainStore
	discoverer Confirmer
	opts       Options
}

func NewReconciler(fetcher Fetcher, domains DomainStore, discoverer Confirmer, opts Options) *Reconciler {
	return &Reconciler{
		validator:  substack.NewValidator(domains),
		classifier: substack.NewClassifier(),
		extractor:  substack.NewExtractor(),
		fetcher:    fetcher,
		domains:    domains,
		discoverer: discoverer,
		opts:       opts,
	}
}

// Run reconciles a single item. A nil Result means the item was
// skipped or needs nothing. A non-nil error means the page could not
// be fetched and the item should be retried or counted as failed.
func (r *Reconciler) Run(ctx context.Context, item zotero.Item) (*Result, error) {
	rawURL := strings.TrimSpace(item.Data.URL)
	if rawURL == "" {
		return nil, nil
	}

	if item.Data.HasTag(ProcessedTag) && !r.opts.Force {
		slog.Debug("Skipping already processed item", "item_key", item.Key)
		return nil, nil
	}

	cleaned := substack.CleanURL(rawURL)
	res := &Result{URLCleaned: cleaned != rawURL}

	if substack.IsLinkedInURL(cleaned) {
		if r.opts.NoLinkedIn {
			return urlOnlyResult(item, cleaned, res), nil
		}
		return r.reconcileLinkedIn(ctx, item, cleaned, res)
	}

	contentType := r.classifier.Run(cleaned)
	if contentType == substack.ContentTypeNone || r.opts.NoSubstack {
		return urlOnlyResult(item, cleaned, res), nil
	}

	return r.reconcileSubstack(ctx, item, cleaned, contentType, res)
}

func (r *Reconciler) reconcileSubstack(ctx context.Context, item zotero.Item, cleaned string, contentType substack.ContentType, res *Result) (*Result, error) {
	var html string

	if !r.validator.IsSubstackDomain(cleaned) {
		// A /p/<slug> path on an unconfirmed host. Fetch the page and
		// look for Substack markers before trusting the pattern match.
		// Unreachable pages are treated as "not Substack", not as an
		// error: the pattern alone is not evidence enough.
		page, err := r.fetcher.Run(ctx, cleaned)
		if err != nil {
			slog.Debug("Could not fetch candidate page", "url", cleaned, "error", err)
			return urlOnlyResult(item, cleaned, res), nil
		}
		if !r.confirmCustomDomain(ctx, cleaned, page) {
			return urlOnlyResult(item, cleaned, res), nil
		}
		html = page
	}

	if html == "" {
		page, err := r.fetcher.Run(ctx, cleaned)
		if err != nil {
			return nil, err
		}
		html = page
	}

	meta := r.extractor.Run(html, cleaned, contentType)

	res.ContentType = contentType
	res.WebsiteType = WebsiteTypeSubstack
	res.Publication = meta.Publisher
	res.Title = meta.Title
	res.Authors = meta.Author
	res.Date = meta.Date
	res.Update = buildUpdate(item, cleaned, meta, WebsiteTypeSubstack, TagSubstack)

	return res, nil
}

func (r *Reconciler) reconcileLinkedIn(ctx context.Context, item zotero.Item, cleaned string, res *Result) (*Result, error) {
	html, err := r.fetcher.Run(ctx, cleaned)
	if err != nil {
		return nil, err
	}

	meta := r.extractor.Run(html, cleaned, substack.ContentTypeNone)

	res.WebsiteType = WebsiteTypeLinkedIn
	res.Publication = meta.Publisher
	res.Title = meta.Title
	res.Authors = meta.Author
	res.Date = meta.Date
	res.Update = buildUpdate(item, cleaned, meta, WebsiteTypeLinkedIn, TagLinkedIn)

	return res, nil
}

// confirmCustomDomain decides whether an unknown host really serves a
// Substack publication: first by the page's own content markers, then
// by its RSS feed. Confirmed hosts are persisted so later items on
// the same domain skip this check.
func (r *Reconciler) confirmCustomDomain(ctx context.Context, pageURL, html string) bool {
	host := substack.Host(pageURL)
	if host == "" {
		return false
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err == nil {
		if substack.IsSubstackPage(substack.ParseStructuredData(doc)) {
			r.addDomain(host, "content-marker")
			return true
		}
	}

	if r.discoverer != nil && r.discoverer.Confirm(ctx, host) {
		r.addDomain(host, "feed")
		return true
	}

	return false
}

func (r *Reconciler) addDomain(host, source string) {
	if err := r.domains.Add(host, source); err != nil {
		slog.Error("Failed to persist confirmed domain", "host", host, "error", err)
		return
	}
	slog.Info("Confirmed custom Substack domain", "host", host, "source", source)
}

// buildUpdate assembles the partial update payload. Only fields whose
// value actually differs from the item are set; an update that would
// change nothing comes back nil.
func buildUpdate(item zotero.Item, cleaned string, meta substack.Metadata, websiteType, tag string) *zotero.ItemData {
	upd := zotero.ItemData{Key: item.Key, Version: item.Version}

	if cleaned != item.Data.URL {
		upd.URL = cleaned
	}
	if string(meta.ItemType) != item.Data.ItemType {
		upd.ItemType = string(meta.ItemType)
	}
	if meta.Title != "" && meta.Title != item.Data.Title {
		upd.Title = meta.Title
	}
	if websiteType != item.Data.WebsiteType {
		upd.WebsiteType = websiteType
	}

	// blogTitle and forumTitle are mutually exclusive per the item
	// type schema; sending the wrong one fails validation.
	if meta.Publisher != "" {
		if meta.ItemType == substack.ItemTypeForumPost {
			if meta.Publisher != item.Data.ForumTitle {
				upd.ForumTitle = meta.Publisher
			}
		} else if meta.Publisher != item.Data.BlogTitle {
			upd.BlogTitle = meta.Publisher
		}
	}

	if date := reconcileDate(item.Data.Date, meta.Date); date != "" {
		upd.Date = date
	}

	if len(item.Data.Creators) == 0 {
		upd.Creators = creatorsFromAuthor(meta.Author)
	}

	if merged := mergeTags(item.Data.Tags, tag, ProcessedTag); len(merged) != len(item.Data.Tags) {
		upd.Tags = merged
	}

	if upd.IsEmpty() {
		return nil
	}
	return &upd
}

var normalizedDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// reconcileDate returns the date to write, or "" to leave the field
// alone. Both sides are normalized before comparing so an item
// holding "Jan 29, 2024" is not rewritten to an equal "2024-01-29".
// An extracted date that failed to normalize is used as-is only when
// the item has no date at all.
func reconcileDate(existing, extracted string) string {
	if extracted == "" {
		return ""
	}
	if !normalizedDatePattern.MatchString(extracted) {
		if strings.TrimSpace(existing) == "" {
			return extracted
		}
		return ""
	}
	if substack.NormalizeDate(existing) == extracted {
		return ""
	}
	return extracted
}

// creatorsFromAuthor splits a display name on its last whitespace
// into first/last. Single-token names go into the name field.
func creatorsFromAuthor(author string) []zotero.Creator {
	fields := strings.Fields(author)
	switch len(fields) {
	case 0:
		return nil
	case 1:
		return []zotero.Creator{{CreatorType: "author", Name: fields[0]}}
	default:
		return []zotero.Creator{{
			CreatorType: "author",
			FirstName:   strings.Join(fields[:len(fields)-1], " "),
			LastName:    fields[len(fields)-1],
		}}
	}
}

func mergeTags(existing []zotero.Tag, add ...string) []zotero.Tag {
	merged := slices.Clone(existing)
	for _, tag := range add {
		if !slices.ContainsFunc(merged, func(t zotero.Tag) bool { return t.Tag == tag }) {
			merged = append(merged, zotero.Tag{Tag: tag})
		}
	}
	return merged
}

func urlOnlyResult(item zotero.Item, cleaned string, res *Result) *Result {
	if !res.URLCleaned {
		return nil
	}
	res.Update = &zotero.ItemData{Key: item.Key, Version: item.Version, URL: cleaned}
	return res
}
