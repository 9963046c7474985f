// Package orchestrator implements the Fallback Orchestrator (C8): builds
// the engine-order list from feature flags, runs the attempt loop with
// feature-escalation rounds, applies the acceptance predicate, and
// finalizes the winning engine result into a Document (spec.md §4.7).
// Grounded on the teacher's scraper/page.go DoScrape/doScrapeRod, whose
// numbered-step structure and comment style this package follows.
package orchestrator

import (
	"strings"

	"github.com/use-agent/purify-crawl/cleaner"
	"github.com/use-agent/purify-crawl/engine"
	"github.com/use-agent/purify-crawl/gatekeeper"
	"github.com/use-agent/purify-crawl/models"
)

const maxOuterRounds = 3

// Orchestrator wires the four acquisition engines, the gatekeeper, and
// the transformer pipeline into the single-scrape pipeline.
type Orchestrator struct {
	fetch    engine.Engine
	browser  *engine.BrowserEngine // nil-checked via Available(); may be non-nil but unconfigured
	pdf      engine.Engine
	document engine.Engine

	gatekeeper *gatekeeper.Gatekeeper
	cleaner    *cleaner.Cleaner
}

// New builds an Orchestrator. browser may be nil when no rendering
// microservice is ever wanted; a non-nil BrowserEngine with an empty
// MicroserviceURL is also treated as absent (spec.md §4.7 step 2).
func New(fetch engine.Engine, browser *engine.BrowserEngine, pdf, document engine.Engine, gk *gatekeeper.Gatekeeper, cl *cleaner.Cleaner) *Orchestrator {
	return &Orchestrator{fetch: fetch, browser: browser, pdf: pdf, document: document, gatekeeper: gk, cleaner: cl}
}

// buildEngineOrder implements spec.md §4.7's deterministic engine-order
// construction from the current feature set.
func (o *Orchestrator) buildEngineOrder(features models.FeatureSet) []engine.Engine {
	var order []engine.Engine

	switch {
	case features[models.FeatureDocument] && o.document != nil:
		order = append(order, o.document)
	case features[models.FeaturePDF] && o.pdf != nil:
		order = append(order, o.pdf)
	}

	if o.browser != nil && o.browser.Available() {
		order = append(order, o.browser)
	}

	order = append(order, o.fetch)
	return order
}

// Scrape runs the full engine-fallback attempt loop for one URL and
// returns the finalized Document.
//
// Steps (numbered to match spec.md §4.7):
//  1. Build the engine order for the current feature set.
//  2. Run each engine in order; an Escalate result restarts the round
//     with the expanded feature set (up to maxOuterRounds).
//  3. Non-recoverable errors and unsuccessful results advance to the
//     next engine within the same round.
//  4. On Ok, apply the acceptance predicate.
//  5. On acceptance, finalize into a Document.
func (o *Orchestrator) Scrape(meta *models.Meta) (*models.Document, error) {
	var lastErr *models.ScrapeError

	for round := 0; round < maxOuterRounds; round++ {
		order := o.buildEngineOrder(meta.Features)
		escalated := false

		for _, e := range order {
			result := e.Fetch(meta)

			switch result.Kind {
			case engine.KindEscalate:
				added := false
				for _, f := range result.NewFeatures {
					if meta.Features.Add(f) {
						added = true
					}
				}
				if added {
					escalated = true
				} else {
					lastErr = models.NewScrapeError(models.ErrCodeEngine, "engine escalated a feature already set", nil)
				}

			case engine.KindTransportError, engine.KindUnsuccessful:
				lastErr = result.Err

			case engine.KindOk:
				if o.accept(result.Engine) {
					return o.finalize(result.Engine, meta), nil
				}
				lastErr = models.NewScrapeError(models.ErrCodeEngineUnsuccessful, "engine produced no usable content", nil)
			}

			if escalated {
				break
			}
		}

		if !escalated {
			break
		}
	}

	if lastErr == nil {
		lastErr = models.NewScrapeError(models.ErrCodeNoEnginesLeft, "no engines produced an acceptable result", nil)
	}
	return nil, lastErr
}

// accept implements the acceptance predicate of spec.md §4.7 step 4: a
// result is accepted when it produced non-empty derived Markdown or
// trimmed HTML, or when the status code lies outside 200-299/304 (the
// engine authoritatively answered, e.g. a 404, and no engine further
// down the fallback list would do better).
func (o *Orchestrator) accept(res *models.EngineResult) bool {
	if !res.IsSuccessStatus() {
		return true
	}
	if _, ok := o.cleaner.ProbeContent(res.HTML, res.FinalURL); ok {
		return true
	}
	return strings.TrimSpace(res.HTML) != ""
}
