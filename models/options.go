package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Format is one of the requested output formats.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatRawHTML  Format = "rawHtml"
	FormatLinks    Format = "links"
	FormatImages   Format = "images"
)

var validFormats = map[Format]bool{
	FormatMarkdown: true,
	FormatHTML:     true,
	FormatRawHTML:  true,
	FormatLinks:    true,
	FormatImages:   true,
}

// ParserSpec describes an optional document parser request, currently only
// the "pdf" parser. The wire format is polymorphic: either a bare string
// entry in a list (["pdf"]) or an object ({"type":"pdf","maxPages":N}).
type ParserSpec struct {
	Type     string
	MaxPages int // 0 means unbounded
}

// Parsers is the ScrapeOptions.parsers field: a list of ParserSpec entries,
// each of which may have arrived as a bare string or an object.
type Parsers []ParserSpec

// UnmarshalJSON accepts a JSON array whose elements are either bare strings
// ("pdf") or objects ({"type":"pdf","maxPages":10}).
func (p *Parsers) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsers: expected array: %w", err)
	}
	out := make(Parsers, 0, len(raw))
	for _, item := range raw {
		var asString string
		if err := json.Unmarshal(item, &asString); err == nil {
			out = append(out, ParserSpec{Type: asString})
			continue
		}
		var asObject struct {
			Type     string `json:"type"`
			MaxPages int    `json:"maxPages"`
		}
		if err := json.Unmarshal(item, &asObject); err != nil {
			return fmt.Errorf("parsers: entry is neither a string nor a parser object: %w", err)
		}
		out = append(out, ParserSpec{Type: asObject.Type, MaxPages: asObject.MaxPages})
	}
	*p = out
	return nil
}

// Has reports whether the parser list requests the given type.
func (p Parsers) Has(kind string) bool {
	for _, spec := range p {
		if spec.Type == kind {
			return true
		}
	}
	return false
}

// Get returns the ParserSpec for the given type, if requested.
func (p Parsers) Get(kind string) (ParserSpec, bool) {
	for _, spec := range p {
		if spec.Type == kind {
			return spec, true
		}
	}
	return ParserSpec{}, false
}

// ScrapeOptions holds the immutable, per-request options for a single-page
// scrape. Fields mirror spec.md's data model exactly; JSON tags match the
// wire contract of the /scrape and (nested) /crawl endpoints.
type ScrapeOptions struct {
	Formats             []Format          `json:"formats,omitempty"`
	OnlyMainContent     *bool             `json:"onlyMainContent,omitempty"`
	Headers             map[string]string `json:"headers,omitempty"`
	IncludeTags         []string          `json:"includeTags,omitempty"`
	ExcludeTags         []string          `json:"excludeTags,omitempty"`
	TimeoutMs           int               `json:"timeout,omitempty"`
	WaitForMs           int               `json:"waitFor,omitempty"`
	Parsers             Parsers           `json:"parsers,omitempty"`
	SkipTLSVerification *bool             `json:"skipTlsVerification,omitempty"`
	RemoveBase64Images  *bool             `json:"removeBase64Images,omitempty"`
}

// Normalized is the fully-resolved (defaulted) view of ScrapeOptions used
// internally after validation. Meta carries a Normalized, never the raw
// wire struct, so downstream code never re-derives defaults.
type Normalized struct {
	Formats              map[Format]bool
	OnlyMainContent      bool
	Headers              map[string]string
	IncludeTags          []string
	ExcludeTags          []string
	Timeout              time.Duration
	WaitFor              time.Duration
	Parsers              Parsers
	SkipTLSVerification  bool
	RemoveBase64Images   bool
}

// Normalize validates o and applies spec.md §3 defaults, returning a
// precise per-field error on the first violation found.
func (o ScrapeOptions) Normalize() (Normalized, error) {
	n := Normalized{
		Formats:            map[Format]bool{},
		OnlyMainContent:    true,
		Headers:            map[string]string{},
		Timeout:            30 * time.Second,
		RemoveBase64Images: true,
	}

	if len(o.Formats) == 0 {
		n.Formats[FormatMarkdown] = true
	} else {
		for _, f := range o.Formats {
			if !validFormats[f] {
				return Normalized{}, NewScrapeError(ErrCodeInvalidInput,
					fmt.Sprintf("formats: unrecognized value %q", f), nil)
			}
			n.Formats[f] = true
		}
	}

	if o.OnlyMainContent != nil {
		n.OnlyMainContent = *o.OnlyMainContent
	}

	for k, v := range o.Headers {
		n.Headers[k] = v
	}
	n.IncludeTags = o.IncludeTags
	n.ExcludeTags = o.ExcludeTags

	if o.TimeoutMs > 0 {
		n.Timeout = time.Duration(o.TimeoutMs) * time.Millisecond
	}
	if o.WaitForMs > 0 {
		n.WaitFor = time.Duration(o.WaitForMs) * time.Millisecond
	}
	n.Parsers = o.Parsers

	// skipTlsVerification defaults to true unless the caller supplied
	// custom headers (spec.md §3, §9 Open Question — documented policy,
	// not silently guessed).
	if o.SkipTLSVerification != nil {
		n.SkipTLSVerification = *o.SkipTLSVerification
	} else {
		n.SkipTLSVerification = len(o.Headers) == 0
	}

	if o.RemoveBase64Images != nil {
		n.RemoveBase64Images = *o.RemoveBase64Images
	}

	return n, nil
}

// ScrapeRequest is the wire body of POST /scrape: the target URL plus the
// scrape options inlined at the top level (spec.md §6).
type ScrapeRequest struct {
	URL string `json:"url" binding:"required"`
	ScrapeOptions
}

// CrawlOptions holds the immutable, per-request options for a bounded
// site crawl.
type CrawlOptions struct {
	Limit                     int               `json:"limit,omitempty"`
	MaxDepth                  int               `json:"maxDepth,omitempty"`
	Includes                  []string          `json:"includes,omitempty"`
	Excludes                  []string          `json:"excludes,omitempty"`
	AllowBackwardCrawling     bool              `json:"allowBackwardCrawling,omitempty"`
	AllowExternalContentLinks bool              `json:"allowExternalContentLinks,omitempty"`
	AllowSubdomains           bool              `json:"allowSubdomains,omitempty"`
	RegexOnFullURL            bool              `json:"regexOnFullURL,omitempty"`
	Headers                   map[string]string `json:"headers,omitempty"`
	ScrapeOptions             ScrapeOptions     `json:"scrapeOptions,omitempty"`
}

// CrawlRequest is the wire body of POST /crawl: the target URL plus the
// crawl options inlined at the top level, with nested scrapeOptions.
type CrawlRequest struct {
	URL string `json:"url" binding:"required"`
	CrawlOptions
}

// NormalizedCrawl is the defaulted view of CrawlOptions.
type NormalizedCrawl struct {
	Limit                     int
	MaxDepth                  int
	Includes                  []string
	Excludes                  []string
	AllowBackwardCrawling     bool
	AllowExternalContentLinks bool
	AllowSubdomains           bool
	RegexOnFullURL            bool
	Headers                   map[string]string
	ScrapeOptions             Normalized
}

// Normalize validates c and applies spec.md §3 defaults.
func (c CrawlOptions) Normalize() (NormalizedCrawl, error) {
	n := NormalizedCrawl{
		Limit:    100,
		MaxDepth: 2,
		Headers:  map[string]string{},
	}
	if c.Limit > 0 {
		if c.Limit > 10000 {
			return NormalizedCrawl{}, NewScrapeError(ErrCodeInvalidInput, "limit: must be <= 10000", nil)
		}
		n.Limit = c.Limit
	}
	if c.MaxDepth > 0 {
		if c.MaxDepth > 20 {
			return NormalizedCrawl{}, NewScrapeError(ErrCodeInvalidInput, "maxDepth: must be <= 20", nil)
		}
		n.MaxDepth = c.MaxDepth
	}
	n.Includes = c.Includes
	n.Excludes = c.Excludes
	n.AllowBackwardCrawling = c.AllowBackwardCrawling
	n.AllowExternalContentLinks = c.AllowExternalContentLinks
	n.AllowSubdomains = c.AllowSubdomains
	n.RegexOnFullURL = c.RegexOnFullURL
	for k, v := range c.Headers {
		n.Headers[k] = v
	}

	scrapeNorm, err := c.ScrapeOptions.Normalize()
	if err != nil {
		return NormalizedCrawl{}, err
	}
	// rawHtml is always needed internally for link extraction (spec.md
	// §4.11 step 3), so it is forced on here; as a result every crawled
	// page in the crawl response carries rawHtml, whether or not the
	// caller asked for it.
	scrapeNorm.Formats[FormatRawHTML] = true
	n.ScrapeOptions = scrapeNorm

	return n, nil
}
