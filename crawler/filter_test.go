package crawler

import (
	"net/url"
	"regexp"
	"testing"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q) error = %v", raw, err)
	}
	return u
}

func TestLinkFilter_RejectsOtherHostWithoutSubdomains(t *testing.T) {
	f := NewLinkFilter(mustURL(t, "https://example.com/"), nil, nil, false, false, false, true)
	if f.Match("https://other.com/page") {
		t.Errorf("expected cross-host link rejected")
	}
	if !f.Match("https://example.com/page") {
		t.Errorf("expected same-host link accepted")
	}
}

func TestLinkFilter_AllowsSubdomainsWhenEnabled(t *testing.T) {
	f := NewLinkFilter(mustURL(t, "https://example.com/"), nil, nil, false, true, false, true)
	if !f.Match("https://docs.example.com/page") {
		t.Errorf("expected subdomain accepted when allowSubdomains is set")
	}
}

func TestLinkFilter_ExternalContentLinkRequiresDocumentExtension(t *testing.T) {
	f := NewLinkFilter(mustURL(t, "https://example.com/"), nil, nil, false, true, false, true)
	if f.Match("https://cdn.other.com/page") {
		t.Errorf("expected non-document external link rejected")
	}
	if !f.Match("https://cdn.other.com/report.pdf") {
		t.Errorf("expected .pdf external link accepted as content-bearing")
	}
}

func TestLinkFilter_BackwardCrawlingRestriction(t *testing.T) {
	f := NewLinkFilter(mustURL(t, "https://example.com/blog/post"), nil, nil, false, false, false, false)
	if f.Match("https://example.com/other") {
		t.Errorf("expected link outside initial path prefix rejected")
	}
	if !f.Match("https://example.com/blog/another") {
		t.Errorf("expected link under initial path prefix accepted")
	}
}

func TestLinkFilter_ExcludesAndIncludes(t *testing.T) {
	f := NewLinkFilter(mustURL(t, "https://example.com/"), regexp.MustCompile(`/keep/`), regexp.MustCompile(`/skip/`), false, false, false, true)
	if f.Match("https://example.com/skip/x") {
		t.Errorf("expected excludes match rejected")
	}
	if f.Match("https://example.com/other") {
		t.Errorf("expected non-matching includes rejected")
	}
	if !f.Match("https://example.com/keep/x") {
		t.Errorf("expected includes match accepted")
	}
}

func TestLinkFilter_RejectsNonHTTPScheme(t *testing.T) {
	f := NewLinkFilter(mustURL(t, "https://example.com/"), nil, nil, false, false, false, true)
	if f.Match("javascript:void(0)") {
		t.Errorf("expected non-http scheme rejected")
	}
}

func TestLinkFilter_RejectsNonHTMLFileExtension(t *testing.T) {
	f := NewLinkFilter(mustURL(t, "https://example.com/"), nil, nil, false, false, false, true)
	if f.Match("https://example.com/image.png") {
		t.Errorf("expected image extension rejected")
	}
}
