package orchestrator

import (
	"github.com/use-agent/purify-crawl/cleaner"
	"github.com/use-agent/purify-crawl/gatekeeper"
	"github.com/use-agent/purify-crawl/models"
)

// finalize assembles the Document returned to the caller from the
// winning engine result (spec.md §4.7 Finalization): gatekeeper
// classification always runs first since later transformers don't need
// it, then the requested transformers run in a fixed order so that later
// steps (Markdown, links, images) can rely on earlier ones (metadata,
// HTML cleanup) having already run.
func (o *Orchestrator) finalize(res *models.EngineResult, meta *models.Meta) *models.Document {
	evidence := res.GatekeeperEvidence
	if evidence == nil {
		evidence = o.gatekeeper.Classify(gatekeeperInput(res))
	}

	doc, err := o.cleaner.Clean(res.HTML, res.FinalURL, meta.Options)
	if err != nil {
		doc = &models.Document{}
		rh := res.HTML
		doc.RawHTML = &rh
	}

	doc.Metadata.URL = meta.OriginalURL
	doc.Metadata.SourceURL = res.FinalURL
	doc.Metadata.StatusCode = res.StatusCode
	doc.Metadata.ContentType = res.ContentType
	doc.Metadata.ProxyUsed = res.ProxyUsed
	doc.Metadata.Gatekeeper = evidence
	if res.PDF != nil {
		doc.Metadata.NumPages = res.PDF.Pages
		if res.PDF.Title != "" {
			doc.Metadata.Title = res.PDF.Title
		}
	}

	if !meta.Options.Formats[models.FormatRawHTML] {
		doc.RawHTML = nil
	}

	return doc
}

func gatekeeperInput(res *models.EngineResult) gatekeeper.Input {
	return gatekeeper.Input{
		RawHTML:    res.HTML,
		StatusCode: res.StatusCode,
		FinalURL:   res.FinalURL,
		Title:      cleaner.ExtractPageMetadata(res.HTML).Title,
	}
}
