package substack

import (
	"net/url"
	"regexp"
	"strings"
)

// URL path patterns, first match wins. Chat/comment shapes are common
// across platforms, so they are only evaluated on validated Substack
// hosts (or an unambiguous /chat/ path). The /p/<slug> post shape is
// distinctive enough to match on any host, which is what catches
// custom-domain publications missed by naive host checks.
var (
	chatPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^/chat/\d+/post/`),
		regexp.MustCompile(`(?i)^/chat/posts/`),
		regexp.MustCompile(`(?i)^/p/[\w-]+/comment/`),
		regexp.MustCompile(`(?i)^/p/[\w-]+/comments/?$`),
	}

	notePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^/@[\w.-]+/note/`),
		regexp.MustCompile(`(?i)^/notes/[\w-]+`),
		regexp.MustCompile(`(?i)^/profile/\d+-[\w-]+/note/`),
	}

	postPattern = regexp.MustCompile(`(?i)^/p/[\w-]+`)
)

// Classifier assigns a ContentType to a URL using path patterns
// guarded by domain validation.
type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

// Run classifies a URL. It is a pure function of the URL string:
// no network access, same input always yields the same result.
func (c *Classifier) Run(rawURL string) ContentType {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return ContentTypeNone
	}

	path := u.EscapedPath()

	if IsSubstackFamily(rawURL) || strings.Contains(path, "/chat/") {
		for _, p := range chatPatterns {
			if p.MatchString(path) {
				return ContentTypeChat
			}
		}
	}

	for _, p := range notePatterns {
		if p.MatchString(path) {
			return ContentTypeNote
		}
	}

	if postPattern.MatchString(path) {
		return ContentTypePost
	}

	return ContentTypeNone
}
