package crawler

import (
	"context"
	"fmt"
	"testing"

	"github.com/use-agent/purify-crawl/models"
)

// fakeSite maps a URL to its raw HTML, simulating the scrape pipeline
// without a real HTTP server or orchestrator.
type fakeSite struct {
	pages map[string]string
	hits  map[string]int
}

func (s *fakeSite) scrape(_ context.Context, rawURL string, _ map[string]string) (*models.Document, error) {
	s.hits[rawURL]++
	html, ok := s.pages[rawURL]
	if !ok {
		return nil, models.NewScrapeError(models.ErrCodeEngine, "not found", nil)
	}
	return &models.Document{RawHTML: &html}, nil
}

func TestFrontier_BFSRespectsDepthAndLimit(t *testing.T) {
	site := &fakeSite{
		hits: map[string]int{},
		pages: map[string]string{
			"https://example.com/":  `<a href="https://example.com/a">a</a><a href="https://example.com/b">b</a>`,
			"https://example.com/a": `<a href="https://example.com/deep">deep</a>`,
			"https://example.com/b": `no links`,
		},
	}

	f := New(Config{
		InitialURL: "https://example.com/",
		Limit:      10,
		MaxDepth:   1,
	}, site.scrape, nil, nil, nil)

	resp := f.Run(context.Background())
	if resp.Stats.Processed != 3 {
		t.Fatalf("Processed = %d, want 3 (root + a + b, deep exceeds maxDepth)", resp.Stats.Processed)
	}
	if _, ok := site.hits["https://example.com/deep"]; ok {
		t.Errorf("expected /deep never scraped beyond maxDepth")
	}
}

func TestFrontier_StopsAtLimit(t *testing.T) {
	pages := map[string]string{}
	links := ""
	for i := 0; i < 20; i++ {
		u := fmt.Sprintf("https://example.com/p%d", i)
		pages[u] = "leaf"
		links += fmt.Sprintf(`<a href="%s">x</a>`, u)
	}
	pages["https://example.com/"] = links

	site := &fakeSite{hits: map[string]int{}, pages: pages}
	f := New(Config{
		InitialURL: "https://example.com/",
		Limit:      5,
		MaxDepth:   2,
	}, site.scrape, nil, nil, nil)

	resp := f.Run(context.Background())
	if resp.Stats.Processed > 5 {
		t.Fatalf("Processed = %d, want <= 5 (limit)", resp.Stats.Processed)
	}
}

func TestFrontier_RecordsPerURLErrors(t *testing.T) {
	site := &fakeSite{
		hits: map[string]int{},
		pages: map[string]string{
			"https://example.com/": `<a href="https://example.com/missing">x</a>`,
		},
	}
	f := New(Config{
		InitialURL: "https://example.com/",
		Limit:      10,
		MaxDepth:   1,
	}, site.scrape, nil, nil, nil)

	resp := f.Run(context.Background())
	if len(resp.Errors) != 1 || resp.Errors[0].URL != "https://example.com/missing" {
		t.Fatalf("Errors = %+v", resp.Errors)
	}
}

func TestFrontier_BlocklistDeniesDomain(t *testing.T) {
	site := &fakeSite{
		hits: map[string]int{},
		pages: map[string]string{
			"https://example.com/": `<a href="https://blocked.com/x">x</a>`,
		},
	}
	f := New(Config{
		InitialURL:                "https://example.com/",
		Limit:                     10,
		MaxDepth:                  1,
		AllowSubdomains:           true,
		AllowExternalContentLinks: true,
	}, site.scrape, NewBlocklist([]string{"blocked.com"}, nil), nil, nil)

	resp := f.Run(context.Background())
	if resp.Stats.Discovered != 1 {
		t.Fatalf("Discovered = %d, want 1 (blocked.com link excluded)", resp.Stats.Discovered)
	}
}
