package models

import (
	"encoding/json"
	"testing"
)

func TestParsers_UnmarshalBareStrings(t *testing.T) {
	var p Parsers
	if err := json.Unmarshal([]byte(`["pdf"]`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(p) != 1 || p[0].Type != "pdf" || p[0].MaxPages != 0 {
		t.Errorf("got %+v", p)
	}
}

func TestParsers_UnmarshalObjectForm(t *testing.T) {
	var p Parsers
	if err := json.Unmarshal([]byte(`[{"type":"pdf","maxPages":10}]`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(p) != 1 || p[0].Type != "pdf" || p[0].MaxPages != 10 {
		t.Errorf("got %+v", p)
	}
}

func TestParsers_UnmarshalInvalidEntry(t *testing.T) {
	var p Parsers
	if err := json.Unmarshal([]byte(`[42]`), &p); err == nil {
		t.Error("expected error for non-string non-object entry")
	}
}

func TestParsers_HasAndGet(t *testing.T) {
	p := Parsers{{Type: "pdf", MaxPages: 5}}
	if !p.Has("pdf") {
		t.Error("expected Has(pdf) to be true")
	}
	if p.Has("document") {
		t.Error("expected Has(document) to be false")
	}
	spec, ok := p.Get("pdf")
	if !ok || spec.MaxPages != 5 {
		t.Errorf("got %+v, %v", spec, ok)
	}
}

func TestScrapeOptions_NormalizeDefaults(t *testing.T) {
	n, err := ScrapeOptions{}.Normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !n.Formats[FormatMarkdown] || len(n.Formats) != 1 {
		t.Errorf("expected default format {markdown}, got %v", n.Formats)
	}
	if !n.OnlyMainContent {
		t.Error("expected onlyMainContent default true")
	}
	if !n.RemoveBase64Images {
		t.Error("expected removeBase64Images default true")
	}
	if !n.SkipTLSVerification {
		t.Error("expected skipTlsVerification default true when no headers supplied")
	}
}

func TestScrapeOptions_SkipTLSVerificationFalseWithHeaders(t *testing.T) {
	n, err := ScrapeOptions{Headers: map[string]string{"Authorization": "Bearer x"}}.Normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if n.SkipTLSVerification {
		t.Error("expected skipTlsVerification to default false when headers are supplied")
	}
}

func TestScrapeOptions_ExplicitSkipTLSOverridesHeaderDefault(t *testing.T) {
	skip := true
	n, err := ScrapeOptions{
		Headers:             map[string]string{"X-Test": "1"},
		SkipTLSVerification: &skip,
	}.Normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !n.SkipTLSVerification {
		t.Error("explicit true should override the headers-present default")
	}
}

func TestScrapeOptions_InvalidFormat(t *testing.T) {
	_, err := ScrapeOptions{Formats: []Format{"bogus"}}.Normalize()
	if err == nil {
		t.Error("expected error for unrecognized format")
	}
}

func TestCrawlOptions_NormalizeDefaults(t *testing.T) {
	n, err := CrawlOptions{}.Normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if n.Limit != 100 {
		t.Errorf("expected default limit 100, got %d", n.Limit)
	}
	if n.MaxDepth != 2 {
		t.Errorf("expected default maxDepth 2, got %d", n.MaxDepth)
	}
	if !n.ScrapeOptions.Formats[FormatRawHTML] {
		t.Error("expected rawHtml to be force-enabled for link extraction")
	}
}

func TestCrawlOptions_LimitTooLarge(t *testing.T) {
	if _, err := (CrawlOptions{Limit: 10001}).Normalize(); err == nil {
		t.Error("expected error for limit > 10000")
	}
}

func TestCrawlOptions_MaxDepthTooLarge(t *testing.T) {
	if _, err := (CrawlOptions{MaxDepth: 21}).Normalize(); err == nil {
		t.Error("expected error for maxDepth > 20")
	}
}
