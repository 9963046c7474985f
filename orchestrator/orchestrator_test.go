package orchestrator

import (
	"testing"

	"github.com/use-agent/purify-crawl/cleaner"
	"github.com/use-agent/purify-crawl/engine"
	"github.com/use-agent/purify-crawl/gatekeeper"
	"github.com/use-agent/purify-crawl/models"
)

// stubEngine returns its results in order regardless of input, one per
// call, repeating the last one once the list is exhausted.
type stubEngine struct {
	name    string
	results []engine.Result
	calls   int
}

func (s *stubEngine) Name() string { return s.name }

func (s *stubEngine) Fetch(meta *models.Meta) engine.Result {
	r := s.results[s.calls]
	if s.calls < len(s.results)-1 {
		s.calls++
	}
	return r
}

func newMeta(formats ...models.Format) *models.Meta {
	norm := models.Normalized{Formats: map[models.Format]bool{}, OnlyMainContent: false}
	for _, f := range formats {
		norm.Formats[f] = true
	}
	return models.NewMeta("req-1", "https://example.com/", norm, nil)
}

func TestScrape_FirstEngineOkAccepted(t *testing.T) {
	fetch := &stubEngine{name: "fetch", results: []engine.Result{
		engine.Ok(&models.EngineResult{FinalURL: "https://example.com/", HTML: "<html><body><p>hello world this is a long enough page to pass extraction thresholds without any trouble at all</p></body></html>", StatusCode: 200}),
	}}
	o := New(fetch, nil, nil, nil, gatekeeper.New(nil), cleaner.New())

	doc, err := o.Scrape(newMeta(models.FormatMarkdown, models.FormatRawHTML))
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if doc.RawHTML == nil {
		t.Errorf("expected rawHtml populated when requested")
	}
}

func TestScrape_UnsuccessfulAdvancesToNextEngine(t *testing.T) {
	document := &stubEngine{name: "document", results: []engine.Result{
		engine.Unsuccessful(models.NewScrapeError(models.ErrCodeEngineUnsuccessful, "empty body", nil)),
	}}
	fetch := &stubEngine{name: "fetch", results: []engine.Result{
		engine.Ok(&models.EngineResult{FinalURL: "https://example.com/f.pdf", HTML: "<html><body>content content content content content</body></html>", StatusCode: 200}),
	}}
	o := New(fetch, nil, nil, document, gatekeeper.New(nil), cleaner.New())

	meta := newMeta(models.FormatMarkdown)
	meta.Features.Add(models.FeatureDocument)

	doc, err := o.Scrape(meta)
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if doc == nil {
		t.Fatalf("expected a document from the fetch engine fallback")
	}
}

func TestScrape_EscalateRestartsWithNewFeature(t *testing.T) {
	fetch := &stubEngine{name: "fetch", results: []engine.Result{
		engine.Escalate(models.FeaturePDF),
	}}
	pdf := &stubEngine{name: "pdf", results: []engine.Result{
		engine.Ok(&models.EngineResult{FinalURL: "https://example.com/f.pdf", HTML: "pdf body content long enough to pass thresholds surely yes", StatusCode: 200}),
	}}
	o := New(fetch, nil, pdf, nil, gatekeeper.New(nil), cleaner.New())

	doc, err := o.Scrape(newMeta(models.FormatRawHTML))
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if doc.RawHTML == nil || *doc.RawHTML == "" {
		t.Errorf("expected pdf engine result after escalation, got %+v", doc)
	}
}

func TestScrape_AllEnginesFailReturnsLastError(t *testing.T) {
	wantErr := models.NewScrapeError(models.ErrCodeEngine, "boom", nil)
	fetch := &stubEngine{name: "fetch", results: []engine.Result{
		engine.TransportErr(wantErr),
	}}
	o := New(fetch, nil, nil, nil, gatekeeper.New(nil), cleaner.New())

	_, err := o.Scrape(newMeta(models.FormatMarkdown))
	if err != wantErr {
		t.Fatalf("Scrape() error = %v, want %v", err, wantErr)
	}
}

// sniffingEngine mimics FetchEngine.finalize/BrowserEngine.attempt: it
// checks meta.Features itself, without mutating it, before deciding
// whether to escalate. This is the shape that regressed when the real
// engines called meta.Features.Add before returning Escalate, which made
// the orchestrator's own Add call always report "already set".
type sniffingEngine struct {
	name    string
	flag    models.FeatureFlag
	okAfter engine.Result
}

func (s *sniffingEngine) Name() string { return s.name }

func (s *sniffingEngine) Fetch(meta *models.Meta) engine.Result {
	if !meta.Features[s.flag] {
		return engine.Escalate(s.flag)
	}
	return s.okAfter
}

func TestScrape_EscalateFromNonMutatingEngineRestarts(t *testing.T) {
	fetch := &sniffingEngine{
		name: "fetch",
		flag: models.FeaturePDF,
		okAfter: engine.Ok(&models.EngineResult{
			FinalURL:   "https://example.com/f",
			HTML:       "pdf body content long enough to pass thresholds surely yes",
			StatusCode: 200,
		}),
	}
	pdf := &stubEngine{name: "pdf", results: []engine.Result{
		engine.Ok(&models.EngineResult{FinalURL: "https://example.com/f", HTML: "pdf body content long enough to pass thresholds surely yes", StatusCode: 200}),
	}}
	o := New(fetch, nil, pdf, nil, gatekeeper.New(nil), cleaner.New())

	doc, err := o.Scrape(newMeta(models.FormatRawHTML))
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if doc.RawHTML == nil || *doc.RawHTML == "" {
		t.Errorf("expected a document after the round restarted with the pdf flag set, got %+v", doc)
	}
}

func TestScrape_NonSuccessStatusAcceptedImmediately(t *testing.T) {
	fetch := &stubEngine{name: "fetch", results: []engine.Result{
		engine.Ok(&models.EngineResult{FinalURL: "https://example.com/missing", HTML: "", StatusCode: 404}),
	}}
	o := New(fetch, nil, nil, nil, gatekeeper.New(nil), cleaner.New())

	doc, err := o.Scrape(newMeta(models.FormatMarkdown))
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if doc.Metadata.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want 404", doc.Metadata.StatusCode)
	}
}
