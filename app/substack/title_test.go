package substack

import (
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("Failed to parse test HTML: %v", err)
	}
	return doc
}

func TestTitlePolicy_ArticleNameBeatsHeadline(t *testing.T) {
	policy := NewTitlePolicy()

	rec := &StructuredData{
		Type: "NewsArticle",
		Fields: map[string]any{
			"name":     "Real Title",
			"headline": "Opening sentence of the body that is not a title...",
		},
	}

	title := policy.Run(ContentTypePost, rec, nil)
	if title != "Real Title" {
		t.Errorf("Expected name field to win over headline, got %q", title)
	}
}

func TestTitlePolicy_ArticleHeadlineFallback(t *testing.T) {
	policy := NewTitlePolicy()

	rec := &StructuredData{
		Type: "BlogPosting",
		Fields: map[string]any{
			"headline": "The Only Title Available",
		},
	}

	title := policy.Run(ContentTypePost, rec, nil)
	if title != "The Only Title Available" {
		t.Errorf("Expected headline fallback, got %q", title)
	}
}

func TestTitlePolicy_NoteUsesFullText(t *testing.T) {
	policy := NewTitlePolicy()

	// 250 words, far past the generated-title limit. Notes are never
	// truncated and never get an ellipsis.
	words := make([]string, 250)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i+1)
	}
	body := strings.Join(words, " ")

	rec := &StructuredData{
		Type:   "SocialMediaPosting",
		Fields: map[string]any{"text": body},
	}

	title := policy.Run(ContentTypeNote, rec, nil)
	if title != body {
		t.Errorf("Note title should be the full text: got %d words, want 250", len(strings.Fields(title)))
	}
	if strings.HasSuffix(title, "...") {
		t.Error("Note title must not get an ellipsis")
	}
}

func TestTitlePolicy_NoteDOMFallback(t *testing.T) {
	policy := NewTitlePolicy()

	doc := docFromHTML(t, `
		<html><body>
			<div class="markup">
				This is a test note with   uneven
				whitespace across several lines.
			</div>
		</body></html>`)

	title := policy.Run(ContentTypeNote, nil, doc)
	expected := "This is a test note with uneven whitespace across several lines."
	if title != expected {
		t.Errorf("Expected collapsed DOM text %q, got %q", expected, title)
	}
}

func TestTitlePolicy_NoteSelectorPriority(t *testing.T) {
	policy := NewTitlePolicy()

	// Both a specific note container and a generic article element are
	// present; the specific one must win.
	doc := docFromHTML(t, `
		<html><body>
			<article>Generic article text.</article>
			<div class="markup">Specific note body.</div>
		</body></html>`)

	title := policy.Run(ContentTypeChat, nil, doc)
	if title != "Specific note body." {
		t.Errorf("Expected specific container to win, got %q", title)
	}
}

func TestTitlePolicy_NoteDefaults(t *testing.T) {
	policy := NewTitlePolicy()

	doc := docFromHTML(t, `<html><body></body></html>`)

	if title := policy.Run(ContentTypeNote, nil, doc); title != "Substack Note" {
		t.Errorf("Expected note default, got %q", title)
	}
	if title := policy.Run(ContentTypeChat, nil, doc); title != "Substack Chat" {
		t.Errorf("Expected chat default, got %q", title)
	}
}

func TestTitlePolicy_GeneratedTitleEllipsis(t *testing.T) {
	policy := NewTitlePolicy()

	longWords := make([]string, 25)
	shortWords := make([]string, 15)
	exactWords := make([]string, 20)
	for i := range longWords {
		longWords[i] = fmt.Sprintf("w%d", i+1)
	}
	copy(shortWords, longWords[:15])
	copy(exactWords, longWords[:20])

	cases := []struct {
		text         string
		wantWords    int
		wantEllipsis bool
		desc         string
	}{
		{strings.Join(longWords, " "), 20, true, "25 words cut to 20 with ellipsis"},
		{strings.Join(shortWords, " "), 15, false, "15 words untouched"},
		{strings.Join(exactWords, " "), 20, false, "exactly 20 words, no ellipsis"},
	}

	for _, tc := range cases {
		rec := &StructuredData{
			Type:   "SocialMediaPosting",
			Fields: map[string]any{"text": tc.text},
		}
		title := policy.Run(ContentTypePost, rec, nil)

		hasEllipsis := strings.HasSuffix(title, "...")
		if hasEllipsis != tc.wantEllipsis {
			t.Errorf("%s: ellipsis presence = %v, want %v (%q)", tc.desc, hasEllipsis, tc.wantEllipsis, title)
		}

		gotWords := len(strings.Fields(strings.TrimSuffix(title, " ...")))
		if gotWords != tc.wantWords {
			t.Errorf("%s: got %d words, want %d", tc.desc, gotWords, tc.wantWords)
		}
	}
}

func TestTitlePolicy_NoDoubleEllipsis(t *testing.T) {
	policy := NewTitlePolicy()

	words := make([]string, 25)
	for i := range words {
		words[i] = "w"
	}
	// Source already ends in an ellipsis right at the cut point.
	words[19] = "done..."

	rec := &StructuredData{
		Type:   "SocialMediaPosting",
		Fields: map[string]any{"text": strings.Join(words, " ")},
	}

	title := policy.Run(ContentTypePost, rec, nil)
	if strings.HasSuffix(title, "... ...") || strings.HasSuffix(title, "......") {
		t.Errorf("Ellipsis duplicated: %q", title)
	}
}

func TestTitlePolicy_EmptyEverything(t *testing.T) {
	policy := NewTitlePolicy()

	rec := &StructuredData{Type: "SocialMediaPosting", Fields: map[string]any{}}
	if title := policy.Run(ContentTypePost, rec, nil); title != "Substack Post" {
		t.Errorf("Expected post default for empty record, got %q", title)
	}
}
