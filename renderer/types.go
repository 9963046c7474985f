// Package renderer implements the standalone rendering microservice the
// Browser engine (C3) delegates JavaScript execution to, speaking the
// wire contract of spec.md §6 "Rendering microservice protocol".
// Grounded on the teacher's scraper package (browser lifecycle, page
// pool, stealth injection, hijack-based resource blocking), generalized
// from an always-embedded browser into a standalone HTTP service and
// wired to this repo's own gatekeeper package for content classification.
package renderer

import "github.com/use-agent/purify-crawl/models"

// Request is the JSON body the Browser engine posts.
type Request struct {
	URL                 string            `json:"url"`
	WaitAfterLoadMs     int               `json:"wait_after_load"`
	TimeoutMs           int               `json:"timeout"`
	Headers             map[string]string `json:"headers,omitempty"`
	SkipTLSVerification bool              `json:"skip_tls_verification"`
	UseStealth          bool              `json:"use_stealth"`
}

// Response is the JSON body returned to the Browser engine.
type Response struct {
	Content       string                     `json:"content"`
	PageStatus    int                        `json:"pageStatusCode"`
	ContentType   string                     `json:"contentType"`
	RenderStatus  string                     `json:"render_status"`
	ContentStatus models.ContentStatus       `json:"content_status"`
	Evidence      *models.GatekeeperEvidence `json:"evidence,omitempty"`
	PageError     string                     `json:"pageError,omitempty"`
}
