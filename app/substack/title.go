package substack

import (
	"strings"

	"codeberg.org/readeck/go-readability"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

// DefaultTitleWordLimit caps generated titles for social postings and
// comments that carry no dedicated title field (APA style: first 20
// words). Notes and chats are exempt: their full text is the title.
const DefaultTitleWordLimit = 20

// noteBodySelectors is the ordered CSS cascade for locating note/chat
// body text when structured data carries none. Most specific Substack
// containers first, generic article containers last.
var noteBodySelectors = []string{
	"div.markup",
	".markup",
	`div[class*="feedItemBody"]`,
	`div[class*="note-body"]`,
	".post-content",
	"article",
	".available-content",
}

// TitlePolicy derives the final title string for an extracted record,
// applying per-content-type rules.
type TitlePolicy struct {
	wordLimit int
}

func NewTitlePolicy() *TitlePolicy {
	return &TitlePolicy{wordLimit: DefaultTitleWordLimit}
}

// Run selects or derives a title. rec may be nil when the page carried
// no usable structured data; doc may be nil in unit contexts. The
// result is never empty: a content-type default backstops every path.
func (p *TitlePolicy) Run(contentType ContentType, rec *StructuredData, doc *goquery.Document) string {
	var title string

	switch contentType {
	case ContentTypeNote, ContentTypeChat:
		title = p.noteTitle(rec, doc)
	default:
		title = p.articleTitle(rec)
	}

	if strings.TrimSpace(title) == "" {
		return DefaultTitle(contentType)
	}
	return title
}

// noteTitle returns the full normalized body text of a note or chat
// message. No truncation and no ellipsis, regardless of length: short-
// form content has no natural title, so the whole text is the title.
func (p *TitlePolicy) noteTitle(rec *StructuredData, doc *goquery.Document) string {
	if rec != nil {
		if text := CollapseWhitespace(rec.BodyText()); text != "" {
			return text
		}
	}

	if doc == nil {
		return ""
	}

	for _, selector := range noteBodySelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if text := CollapseWhitespace(sel.Text()); text != "" {
			return text
		}
	}

	return p.readabilityText(doc)
}

// articleTitle handles Article-shaped records. The name field wins
// over headline: on Substack's markup headline frequently holds the
// opening body text, and picking it produced wrong titles before the
// order was fixed.
func (p *TitlePolicy) articleTitle(rec *StructuredData) string {
	if rec == nil {
		return ""
	}

	if name := rec.String("name"); name != "" {
		return name
	}
	if headline := rec.String("headline"); headline != "" {
		return headline
	}

	return p.generatedTitle(rec.BodyText())
}

// generatedTitle builds a word-limited title from body text. The
// trailing ellipsis is added only when text was actually cut and the
// source does not already end with one.
func (p *TitlePolicy) generatedTitle(text string) string {
	words := strings.Fields(norm.NFC.String(text))
	if len(words) == 0 {
		return ""
	}

	if len(words) <= p.wordLimit {
		return strings.Join(words, " ")
	}

	title := strings.Join(words[:p.wordLimit], " ")
	if strings.HasSuffix(title, "...") || strings.HasSuffix(title, "…") {
		return title
	}
	return title + " ..."
}

// readabilityText is the last resort for note bodies: let readability
// find the main content block and flatten it to text.
func (p *TitlePolicy) readabilityText(doc *goquery.Document) string {
	html, err := doc.Html()
	if err != nil {
		return ""
	}

	article, err := readability.FromReader(strings.NewReader(html), nil)
	if err != nil || article.Content == "" {
		return ""
	}

	content, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return ""
	}

	return CollapseWhitespace(content.Text())
}

// DefaultTitle is the fallback title for a content type, used whenever
// derivation produced an empty string.
func DefaultTitle(contentType ContentType) string {
	switch contentType {
	case ContentTypeChat:
		return "Substack Chat"
	case ContentTypeNote:
		return "Substack Note"
	default:
		return "Substack Post"
	}
}

// CollapseWhitespace normalizes text to NFC and collapses all
// whitespace runs to single spaces.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}
