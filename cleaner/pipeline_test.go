package cleaner

import (
	"strings"
	"testing"

	"github.com/use-agent/purify-crawl/models"
)

func normalizedFor(t *testing.T, o models.ScrapeOptions) models.Normalized {
	t.Helper()
	n, err := o.Normalize()
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	return n
}

func TestCleaner_Clean_DefaultMarkdown(t *testing.T) {
	c := New()
	html := `<html><head><title>Example</title></head><body><main><p>` + strings.Repeat("word ", 60) + `</p></main></body></html>`

	opts := normalizedFor(t, models.ScrapeOptions{})
	doc, err := c.Clean(html, "https://example.com/", opts)
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	if doc.Markdown == nil || *doc.Markdown == "" {
		t.Fatalf("expected non-empty markdown, got %+v", doc)
	}
	if doc.HTML != nil || doc.RawHTML != nil {
		t.Errorf("expected only markdown format populated, got %+v", doc)
	}
}

func TestCleaner_Clean_RawHTMLFormat(t *testing.T) {
	c := New()
	html := `<html><body><p>hello</p></body></html>`
	opts := normalizedFor(t, models.ScrapeOptions{Formats: []models.Format{models.FormatRawHTML}})
	doc, err := c.Clean(html, "https://example.com/", opts)
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	if doc.RawHTML == nil || *doc.RawHTML != html {
		t.Fatalf("expected raw HTML passthrough, got %+v", doc)
	}
	if doc.Markdown != nil {
		t.Errorf("expected markdown unset, got %+v", doc)
	}
}

func TestCleaner_Clean_LinksAndImages(t *testing.T) {
	c := New()
	html := `<html><body><a href="/a">A</a><img src="/x.png"></body></html>`
	opts := normalizedFor(t, models.ScrapeOptions{Formats: []models.Format{models.FormatLinks, models.FormatImages}})
	doc, err := c.Clean(html, "https://example.com/page", opts)
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	if len(doc.Links) != 1 || doc.Links[0] != "https://example.com/a" {
		t.Errorf("Links = %v", doc.Links)
	}
	if len(doc.Images) != 1 || doc.Images[0] != "https://example.com/x.png" {
		t.Errorf("Images = %v", doc.Images)
	}
}

func TestCleaner_Clean_MetadataPopulated(t *testing.T) {
	c := New()
	html := `<html lang="fr"><head><title>Bonjour</title></head><body><p>hi</p></body></html>`
	opts := normalizedFor(t, models.ScrapeOptions{})
	doc, err := c.Clean(html, "https://example.com/", opts)
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	if doc.Metadata.SourceURL != "https://example.com/" {
		t.Errorf("SourceURL = %q", doc.Metadata.SourceURL)
	}
	if doc.Metadata.Language != "fr" {
		t.Errorf("Language = %q", doc.Metadata.Language)
	}
}
