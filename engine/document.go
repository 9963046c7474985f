package engine

import (
	"encoding/base64"
	"io"
	"net/http"

	"github.com/use-agent/purify-crawl/httpx"
	"github.com/use-agent/purify-crawl/models"
)

// DocumentEngine downloads office-document bytes (docx/odt/rtf/xlsx/xls/
// doc); full parsing is delegated to the transformer stage and treated as
// opaque by this engine (spec.md §4.4).
type DocumentEngine struct {
	fabric *httpx.Fabric
}

// NewDocumentEngine builds a DocumentEngine over the given Secure
// Dispatcher fabric.
func NewDocumentEngine(fabric *httpx.Fabric) *DocumentEngine {
	return &DocumentEngine{fabric: fabric}
}

func (e *DocumentEngine) Name() string { return "document" }

func (e *DocumentEngine) Fetch(meta *models.Meta) Result {
	dispatcher := e.fabric.Get(httpx.Key{
		SkipTLS:      meta.Options.SkipTLSVerification,
		AllowCookies: false,
	})

	req, err := http.NewRequestWithContext(meta.Ctx, http.MethodGet, meta.URL, nil)
	if err != nil {
		return TransportErr(models.NewScrapeError(models.ErrCodeEngine, "document: build request", err))
	}
	for k, v := range meta.Options.Headers {
		req.Header.Set(k, v)
	}

	resp, err := dispatcher.Do(req)
	if err != nil {
		code, wrapped := httpx.ClassifyDialError(err)
		return TransportErr(models.NewScrapeError(code, "document: request failed", wrapped))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBody))
	if err != nil {
		return TransportErr(models.NewScrapeError(models.ErrCodeEngine, "document: read body", err))
	}

	if resp.StatusCode >= 400 {
		return Unsuccessful(models.NewScrapeError(models.ErrCodeDocumentAntibot,
			"document: non-2xx response, possibly an antibot page", nil))
	}

	encoded := base64.StdEncoding.EncodeToString(body)
	return Ok(&models.EngineResult{
		FinalURL:    meta.URL,
		HTML:        encoded,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		ProxyUsed:   models.ProxyBasic,
	})
}
