package models

import (
	"context"
	"log/slog"
	"net/url"
	"path"
	"strings"
)

// FeatureFlag is a closed-set marker that influences engine-list
// construction. Feature flags are additive within a scrape: once set they
// are never cleared.
type FeatureFlag string

const (
	FeaturePDF      FeatureFlag = "pdf"
	FeatureDocument FeatureFlag = "document"
	FeatureWaitFor  FeatureFlag = "waitFor"
)

// FeatureSet is a small closed set of FeatureFlag values.
type FeatureSet map[FeatureFlag]bool

// Add returns true if the flag was newly added (not already present).
func (fs FeatureSet) Add(f FeatureFlag) bool {
	if fs[f] {
		return false
	}
	fs[f] = true
	return true
}

// Meta is the per-scrape working record: request id, original and
// canonicalized URL, normalized options, feature flags, and logger/abort
// context. It is created once at request entry and disposed when the
// pipeline returns.
type Meta struct {
	RequestID     string
	OriginalURL   string
	URL           string // canonicalized
	Options       Normalized
	Features      FeatureSet
	Log           *slog.Logger
	Ctx           context.Context
	CancelSignal  CancelSignal
}

// CancelSignal exposes the composite abort signal built by the
// Abort/Timeout Manager (abortctx package). Defined here, not in abortctx,
// so models has no dependency on abortctx and abortctx can depend on
// models instead.
type CancelSignal interface {
	Done() <-chan struct{}
	Err() error
	// Tier reports which cancellation tier fired, if any ("timeout",
	// "abort", or "" if not yet fired).
	Tier() string
}

// NewMeta constructs a Meta, seeding its feature set from the URL's path
// suffix and the caller's options before the first engine attempt
// (spec.md §3): a recognized document/PDF file extension sets the
// matching flag up front so PDFEngine/DocumentEngine are already in the
// engine order even if the origin sends a wrong or missing Content-Type;
// the Specialty Sniffer (engine.Sniff) can still add the same flags
// later, mid-attempt, from the observed Content-Type.
func NewMeta(requestID, originalURL string, opts Normalized, log *slog.Logger) *Meta {
	return &Meta{
		RequestID:   requestID,
		OriginalURL: originalURL,
		URL:         originalURL,
		Options:     opts,
		Features:    initialFeatures(originalURL, opts),
		Log:         log,
	}
}

// pdfExtensions and documentExtensions map a URL path's file extension to
// the feature flag it should pre-seed, mirroring engine.Sniff's
// Content-Type table but keyed on the URL instead of the response.
var (
	pdfExtensions = map[string]bool{
		".pdf": true,
	}
	documentExtensions = map[string]bool{
		".doc": true, ".docx": true, ".rtf": true,
		".odt": true, ".xls": true, ".xlsx": true,
	}
)

func initialFeatures(rawURL string, opts Normalized) FeatureSet {
	fs := FeatureSet{}

	ext := ""
	if u, err := url.Parse(rawURL); err == nil {
		ext = strings.ToLower(path.Ext(u.Path))
	}
	switch {
	case pdfExtensions[ext]:
		fs.Add(FeaturePDF)
	case documentExtensions[ext]:
		fs.Add(FeatureDocument)
	}

	if opts.WaitFor > 0 {
		fs.Add(FeatureWaitFor)
	}

	return fs
}
