package substack

import (
	"net/url"
	"strings"
)

// KnownDomains is a read-mostly store of custom domains already
// confirmed to host Substack publications. Implementations must be
// safe for concurrent reads with single-writer appends.
type KnownDomains interface {
	Contains(host string) bool
}

// Validator guards pattern-only detection against spoofed hosts.
// Matching is exact host or dot-suffix, never substring:
// evilsubstack.com, substack.com.evil.com and substackcdn.com
// must all fail.
type Validator struct {
	known KnownDomains
}

func NewValidator(known KnownDomains) *Validator {
	return &Validator{known: known}
}

// IsSubstackDomain reports whether the URL's host is the Substack
// apex domain, a publication subdomain, or a confirmed custom domain.
func (v *Validator) IsSubstackDomain(rawURL string) bool {
	host := hostOf(rawURL)
	if host == "" {
		return false
	}

	if isFamilyHost(host) {
		return true
	}

	if v.known != nil && v.known.Contains(host) {
		return true
	}

	return false
}

// IsSubstackFamily reports whether the URL's host is the Substack apex
// domain or one of its publication subdomains. Confirmed custom
// domains are excluded on purpose: chat/comment pattern matching is
// fenced to the substack.com family only.
func IsSubstackFamily(rawURL string) bool {
	return isFamilyHost(hostOf(rawURL))
}

func isFamilyHost(host string) bool {
	return host == "substack.com" || strings.HasSuffix(host, ".substack.com")
}

// Host extracts the lowercased host (without port or www prefix)
// from a raw URL string, tolerating scheme-less input.
func Host(rawURL string) string {
	return hostOf(rawURL)
}

func hostOf(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}
