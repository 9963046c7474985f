// Package engine implements the acquisition engines (C2-C5) and the
// Specialty Sniffer (C6). Every engine returns a Result, the tagged
// outcome from spec.md §9 Design Notes replacing exceptions-as-control-
// flow: {Escalate(flags) | TransportError(kind) | Unsuccessful | Ok(result)}.
package engine

import "github.com/use-agent/purify-crawl/models"

// Kind discriminates the tagged Result.
type Kind int

const (
	KindOk Kind = iota
	KindEscalate
	KindTransportError
	KindUnsuccessful
)

// Result is the tagged outcome of one engine attempt. Exactly one branch
// of fields is meaningful depending on Kind.
type Result struct {
	Kind Kind

	// KindOk
	Engine *models.EngineResult

	// KindEscalate
	NewFeatures []models.FeatureFlag

	// KindTransportError, KindUnsuccessful
	Err *models.ScrapeError
}

// Ok wraps a successful engine result.
func Ok(r *models.EngineResult) Result {
	return Result{Kind: KindOk, Engine: r}
}

// Escalate signals that new feature flags were discovered mid-attempt and
// the orchestrator should restart the fallback list with an expanded
// feature set (spec.md §4.5, §4.7 step 1).
func Escalate(flags ...models.FeatureFlag) Result {
	return Result{Kind: KindEscalate, NewFeatures: flags}
}

// TransportErr records a non-recoverable transport/engine-domain error
// that advances to the next engine without restarting the round.
func TransportErr(err *models.ScrapeError) Result {
	return Result{Kind: KindTransportError, Err: err}
}

// Unsuccessful records that the engine ran without a hard error but
// produced content the acceptance predicate rejects.
func Unsuccessful(err *models.ScrapeError) Result {
	return Result{Kind: KindUnsuccessful, Err: err}
}

// Engine is a module capable of acquiring bytes for a URL.
type Engine interface {
	Name() string
	Fetch(meta *models.Meta) Result
}
