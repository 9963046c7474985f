// Package gatekeeper implements the block-class classifier (C7): pure,
// deterministic given the same html/status/final-url/title inputs
// (spec.md §4.6, P6).
package gatekeeper

import (
	"net/url"
	"sort"
	"strings"

	"github.com/use-agent/purify-crawl/models"
)

// Input bundles the classification inputs spec.md §4.6/P6 name.
type Input struct {
	RawHTML    string
	StatusCode int
	FinalURL   string
	Title      string
}

// Gatekeeper classifies a fetched response using an optional rules Store.
type Gatekeeper struct {
	store *Store
}

// New builds a Gatekeeper backed by store. A nil store behaves as if no
// rules file were configured.
func New(store *Store) *Gatekeeper {
	return &Gatekeeper{store: store}
}

// Classify runs the full algorithm of spec.md §4.6 and returns the
// evidence record to attach to document metadata.
func (g *Gatekeeper) Classify(in Input) *models.GatekeeperEvidence {
	quality := computeQuality(in.RawHTML)

	var rf *RulesFile
	if g.store != nil {
		rf, _ = g.store.Get()
	}
	if rf == nil {
		rf = &RulesFile{}
	}

	host := ""
	if u, err := url.Parse(in.FinalURL); err == nil {
		host = u.Hostname()
	}
	section := rf.sectionFor(host)

	thresholds := models.DefaultThresholds()
	if section.Thresholds != nil {
		thresholds = mergeThresholds(thresholds, *section.Thresholds)
	}

	type fired struct {
		rule    Rule
		matched []string
	}
	var candidates []fired
	for _, rule := range section.Rules {
		matched, ok := evaluateRule(rule, in, quality)
		if ok {
			candidates = append(candidates, fired{rule: rule, matched: matched})
		}
	}

	if len(candidates) > 0 {
		sort.SliceStable(candidates, func(i, j int) bool {
			return confidenceOf(candidates[i].rule) > confidenceOf(candidates[j].rule)
		})
		winner := candidates[0]
		bc := winner.rule.BlockClass
		return &models.GatekeeperEvidence{
			RuleID:         winner.rule.ID,
			MatchedSignals: winner.matched,
			BlockClass:     bc,
			ContentStatus:  models.ContentStatusFor(bc),
			Confidence:     confidenceOf(winner.rule),
			Quality:        quality,
			Thresholds:     thresholds,
		}
	}

	failing := 0
	if quality.HTMLBytes < thresholds.MinHTMLBytes {
		failing++
	}
	if quality.VisibleTextChars < thresholds.MinVisibleTextChars {
		failing++
	}
	if quality.MainContentChars < thresholds.MinMainContentChars {
		failing++
	}
	if thresholds.RequireStructuredData && !quality.HasStructuredData {
		failing++
	}

	if failing > 0 {
		confidence := 0.4 + 0.15*float64(failing)
		if confidence > 1.0 {
			confidence = 1.0
		}
		return &models.GatekeeperEvidence{
			BlockClass:    models.BlockThin,
			ContentStatus: models.StatusThin,
			Confidence:    confidence,
			Quality:       quality,
			Thresholds:    thresholds,
		}
	}

	return &models.GatekeeperEvidence{
		BlockClass:    models.BlockNone,
		ContentStatus: models.StatusUsable,
		Confidence:    1.0,
		Quality:       quality,
		Thresholds:    thresholds,
	}
}

func confidenceOf(r Rule) float64 {
	if r.Confidence > 0 {
		return r.Confidence
	}
	return 0.9
}

func mergeThresholds(base, override models.Thresholds) models.Thresholds {
	if override.MinHTMLBytes != 0 {
		base.MinHTMLBytes = override.MinHTMLBytes
	}
	if override.MinVisibleTextChars != 0 {
		base.MinVisibleTextChars = override.MinVisibleTextChars
	}
	if override.MinMainContentChars != 0 {
		base.MinMainContentChars = override.MinMainContentChars
	}
	base.RequireStructuredData = override.RequireStructuredData
	return base
}

// evaluateRule reports whether all of rule's signals match, and the list
// of matched signal type names for evidence.
func evaluateRule(rule Rule, in Input, quality models.QualityRecord) ([]string, bool) {
	matched := make([]string, 0, len(rule.Signals))
	for _, sig := range rule.Signals {
		if !signalMatches(sig, in, quality) {
			return nil, false
		}
		matched = append(matched, string(sig.Type))
	}
	if len(rule.Signals) == 0 {
		return nil, false
	}
	return matched, true
}

func signalMatches(sig Signal, in Input, quality models.QualityRecord) bool {
	switch sig.Type {
	case SignalContainsScript:
		return strings.Contains(in.RawHTML, sig.Substring)
	case SignalTitleMatches:
		return strings.Contains(in.Title, sig.Substring)
	case SignalBodyTextLenLT:
		return quality.VisibleTextChars < sig.N
	case SignalStatusIn:
		for _, s := range sig.Statuses {
			if s == in.StatusCode {
				return true
			}
		}
		return false
	case SignalRedirectToLogin:
		for _, sub := range sig.Substrings {
			if strings.Contains(in.FinalURL, sub) {
				return true
			}
		}
		return false
	case SignalHTMLBytesLT:
		return quality.HTMLBytes < sig.N
	case SignalVisibleTextLenLT:
		return quality.VisibleTextChars < sig.N
	case SignalMainContentLenLT:
		return quality.MainContentChars < sig.N
	case SignalHasStructuredData:
		return quality.HasStructuredData == sig.BoolValue
	default:
		return false
	}
}
