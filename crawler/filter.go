package crawler

import (
	"net/url"
	"regexp"
	"strings"
)

// nonHTMLExtensions are file types the crawler never enqueues as ordinary
// pages (spec.md §4.11 "non-HTML file (image/video/archive extensions)").
var nonHTMLExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".svg": true,
	".webp": true, ".ico": true, ".bmp": true,
	".mp4": true, ".mp3": true, ".avi": true, ".mov": true, ".wav": true,
	".zip": true, ".tar": true, ".gz": true, ".rar": true, ".7z": true,
	".css": true, ".js": true, ".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
}

// documentExtensions are content-bearing file types worth enqueueing even
// though they aren't HTML (spec.md §4.11 "unless it is a PDF/document
// targeted for extraction").
var documentExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true, ".csv": true, ".txt": true,
}

func extOf(p string) string {
	if idx := strings.LastIndex(p, "."); idx != -1 {
		return strings.ToLower(p[idx:])
	}
	return ""
}

// LinkFilter implements the static portion of filterLinks (spec.md §4.11):
// everything except the discovered-set and robots checks, which need
// mutable crawl state and are applied by Frontier.
type LinkFilter struct {
	Includes                  *regexp.Regexp
	Excludes                  *regexp.Regexp
	RegexOnFullURL            bool
	AllowSubdomains           bool
	AllowExternalContentLinks bool
	AllowBackwardCrawling     bool
	InitialURL                *url.URL
	initialPathPrefix         string
}

// NewLinkFilter builds a LinkFilter anchored at initialURL.
func NewLinkFilter(initialURL *url.URL, includes, excludes *regexp.Regexp, regexOnFullURL, allowSubdomains, allowExternalContentLinks, allowBackwardCrawling bool) *LinkFilter {
	prefix := initialURL.Path
	if !strings.HasSuffix(prefix, "/") {
		if idx := strings.LastIndex(prefix, "/"); idx >= 0 {
			prefix = prefix[:idx+1]
		} else {
			prefix = "/"
		}
	}
	return &LinkFilter{
		Includes:                  includes,
		Excludes:                  excludes,
		RegexOnFullURL:            regexOnFullURL,
		AllowSubdomains:           allowSubdomains,
		AllowExternalContentLinks: allowExternalContentLinks,
		AllowBackwardCrawling:     allowBackwardCrawling,
		InitialURL:                initialURL,
		initialPathPrefix:         prefix,
	}
}

// Match applies every stateless rule from spec.md §4.11's filterLinks in
// order, short-circuiting on the first rejection.
func (f *LinkFilter) Match(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	target := rawURL
	if !f.RegexOnFullURL {
		target = u.Scheme + "://" + u.Host + u.Path
	}

	if f.Excludes != nil && f.Excludes.MatchString(target) {
		return false
	}
	if f.Includes != nil && !f.Includes.MatchString(target) {
		return false
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	sameHost := strings.EqualFold(u.Host, f.InitialURL.Host)
	if !f.AllowSubdomains && !sameHost {
		return false
	}

	inScope := sameHost || sameRegisteredDomain(u.Host, f.InitialURL.Host)
	if !f.AllowExternalContentLinks && !inScope {
		if !documentExtensions[extOf(u.Path)] {
			return false
		}
	}

	if !f.AllowBackwardCrawling {
		if !strings.HasPrefix(u.Path, f.initialPathPrefix) {
			return false
		}
	}

	if nonHTMLExtensions[extOf(u.Path)] {
		return false
	}

	return true
}

// sameRegisteredDomain is a heuristic registered-domain equality check,
// consistent with Blocklist.baseName's leftmost-label heuristic.
func sameRegisteredDomain(hostA, hostB string) bool {
	return strings.EqualFold(registeredDomain(hostA), registeredDomain(hostB))
}

func registeredDomain(host string) string {
	host = stripPort(host)
	parts := strings.Split(host, ".")
	if len(parts) <= 2 {
		return host
	}
	return strings.Join(parts[len(parts)-2:], ".")
}
