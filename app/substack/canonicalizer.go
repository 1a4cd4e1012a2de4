package substack

import (
	"net/url"
	"strings"
)

// trackingParams is the deny-list of query keys stripped from stored
// URLs. Matched case-insensitively. Covers the usual campaign keys,
// Substack's own share-tracking keys (r, s, ref) and assorted
// click identifiers.
var trackingParams = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_term":     true,
	"utm_content":  true,
	"source":       true,
	"ref":          true,
	"referral":     true,
	"etype":        true,
	"mc_cid":       true,
	"mc_eid":       true,
	"fbclid":       true,
	"ref_src":      true,
	"ref_url":      true,
	"_hsenc":       true,
	"_hsmi":        true,
	"hs_preview":   true,
	"preview":      true,
	"r":            true,
	"s":            true,
	"gclid":        true,
	"ocid":         true,
	"msclkid":      true,
	"dclid":        true,
	"igshid":       true,
}

// CleanURL strips deny-listed tracking parameters and the fragment
// from a URL, preserving all other query parameters in their original
// order. A single trailing slash is removed from non-root paths.
// Idempotent: CleanURL(CleanURL(x)) == CleanURL(x). Unparseable input
// is returned unchanged.
func CleanURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return rawURL
	}

	u.RawQuery = cleanQuery(u.RawQuery)
	u.Fragment = ""
	u.RawFragment = ""

	if len(u.Path) > 1 && strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimSuffix(u.Path, "/")
		u.RawPath = strings.TrimSuffix(u.RawPath, "/")
	}

	return u.String()
}

// cleanQuery filters the raw query string pair by pair rather than
// through url.Values, which would lose the original parameter order.
func cleanQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}

	kept := make([]string, 0, 4)
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key := pair
		if i := strings.Index(pair, "="); i >= 0 {
			key = pair[:i]
		}
		if decoded, err := url.QueryUnescape(key); err == nil {
			key = decoded
		}
		if trackingParams[strings.ToLower(key)] {
			continue
		}
		kept = append(kept, pair)
	}

	return strings.Join(kept, "&")
}
