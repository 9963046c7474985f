package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/use-agent/purify-crawl/models"
)

// renderRequest is the JSON contract posted to the rendering microservice
// (spec.md §4.3/§6).
type renderRequest struct {
	URL                 string            `json:"url"`
	WaitAfterLoadMs     int               `json:"wait_after_load"`
	TimeoutMs           int               `json:"timeout"`
	Headers             map[string]string `json:"headers,omitempty"`
	SkipTLSVerification bool              `json:"skip_tls_verification"`
	UseStealth          bool              `json:"use_stealth"`
}

// renderResponse is the JSON contract read back from the rendering
// microservice.
type renderResponse struct {
	Content       string                      `json:"content"`
	PageStatus    int                         `json:"pageStatusCode"`
	ContentType   string                      `json:"contentType"`
	RenderStatus  string                      `json:"render_status"`
	ContentStatus string                      `json:"content_status"`
	Evidence      *models.GatekeeperEvidence  `json:"evidence,omitempty"`
	PageError     string                      `json:"pageError,omitempty"`
}

// BrowserEngine delegates JS rendering to an external microservice,
// satisfying the Non-goal "JavaScript execution inside the core"
// (spec.md §1). MicroserviceURL empty means the engine is not configured
// and Available() reports false, so the orchestrator omits it from
// the engine list (spec.md §4.7 step 2).
type BrowserEngine struct {
	MicroserviceURL string
	Client          *http.Client
	UseStealth      bool

	// Retries401403 controls the browser-specialized retry policy for
	// 401/403/Set-Cookie responses (spec.md §4.7 "Retry policy for the
	// Browser engine"). Configurable per §9 Design Notes rather than a
	// hardcoded constant, since the source narrative did not clearly
	// implement it.
	Retries401403 int
}

// NewBrowserEngine builds a BrowserEngine pointed at microserviceURL.
func NewBrowserEngine(microserviceURL string, useStealth bool) *BrowserEngine {
	return &BrowserEngine{
		MicroserviceURL: microserviceURL,
		Client:          &http.Client{},
		UseStealth:      useStealth,
		Retries401403:   2,
	}
}

func (e *BrowserEngine) Name() string { return "browser" }

// Available reports whether a rendering microservice is configured.
func (e *BrowserEngine) Available() bool {
	return e.MicroserviceURL != ""
}

func (e *BrowserEngine) Fetch(meta *models.Meta) Result {
	if !e.Available() {
		return TransportErr(models.NewScrapeError(models.ErrCodeEngine, "browser engine not configured", nil))
	}

	attempts := e.Retries401403 + 1
	var lastResult Result
	for i := 0; i < attempts; i++ {
		lastResult = e.attempt(meta)
		if lastResult.Kind != KindOk {
			return lastResult
		}
		if lastResult.Engine.StatusCode != 401 && lastResult.Engine.StatusCode != 403 &&
			len(lastResult.Engine.Headers["Set-Cookie"]) == 0 {
			return lastResult
		}
	}
	return lastResult
}

func (e *BrowserEngine) attempt(meta *models.Meta) Result {
	reqBody := renderRequest{
		URL:                 meta.URL,
		WaitAfterLoadMs:     int(meta.Options.WaitFor.Milliseconds()),
		TimeoutMs:           int(meta.Options.Timeout.Milliseconds()),
		Headers:             meta.Options.Headers,
		SkipTLSVerification: meta.Options.SkipTLSVerification,
		UseStealth:          e.UseStealth,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return TransportErr(models.NewScrapeError(models.ErrCodeEngine, "browser: marshal request", err))
	}

	httpReq, err := http.NewRequestWithContext(meta.Ctx, http.MethodPost, e.MicroserviceURL, bytes.NewReader(payload))
	if err != nil {
		return TransportErr(models.NewScrapeError(models.ErrCodeEngine, "browser: build request", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.Client.Do(httpReq)
	if err != nil {
		return TransportErr(models.NewScrapeError(models.ErrCodeEngine, "browser: microservice request failed", err))
	}
	defer resp.Body.Close()

	var rr renderResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return TransportErr(models.NewScrapeError(models.ErrCodeEngine, "browser: decode microservice response", err))
	}
	if resp.StatusCode >= 500 {
		return TransportErr(models.NewScrapeError(models.ErrCodeEngine,
			fmt.Sprintf("browser: microservice returned %d", resp.StatusCode), nil))
	}

	if flags := Sniff(rr.ContentType); flags != nil {
		newFlags := make([]models.FeatureFlag, 0, len(flags))
		for _, f := range flags {
			if !meta.Features[f] {
				newFlags = append(newFlags, f)
			}
		}
		if len(newFlags) > 0 {
			return Escalate(newFlags...)
		}
	}

	proxyUsed := models.ProxyBasic
	if e.UseStealth {
		proxyUsed = models.ProxyStealth
	}

	headers := map[string]string{}
	if len(resp.Header.Get("Set-Cookie")) > 0 {
		headers["Set-Cookie"] = resp.Header.Get("Set-Cookie")
	}

	return Ok(&models.EngineResult{
		FinalURL:           meta.URL,
		HTML:               rr.Content,
		StatusCode:         rr.PageStatus,
		ContentType:        rr.ContentType,
		Headers:            headers,
		ProxyUsed:          proxyUsed,
		RenderStatus:       models.RenderStatus(rr.RenderStatus),
		GatekeeperEvidence: rr.Evidence,
	})
}
