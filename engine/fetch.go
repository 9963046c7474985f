package engine

import (
	"io"
	"net/http"

	"golang.org/x/net/html/charset"

	"github.com/use-agent/purify-crawl/cache"
	"github.com/use-agent/purify-crawl/httpx"
	"github.com/use-agent/purify-crawl/models"
)

const maxFetchBody = 10 << 20 // 10 MB, matching the teacher's cap

// FetchEngine issues a single HTTP request with redirects followed,
// consulting a conditional-GET validator cache and the Specialty Sniffer
// (spec.md §4.2).
type FetchEngine struct {
	fabric *httpx.Fabric
	cache  *cache.ConditionalGET
}

// NewFetchEngine builds a FetchEngine over the given Secure Dispatcher
// fabric and conditional-GET cache.
func NewFetchEngine(fabric *httpx.Fabric, cg *cache.ConditionalGET) *FetchEngine {
	return &FetchEngine{fabric: fabric, cache: cg}
}

func (e *FetchEngine) Name() string { return "fetch" }

func (e *FetchEngine) Fetch(meta *models.Meta) Result {
	dispatcher := e.fabric.Get(httpx.Key{
		SkipTLS:      meta.Options.SkipTLSVerification,
		AllowCookies: len(meta.Options.Headers) > 0,
	})

	req, err := http.NewRequestWithContext(meta.Ctx, http.MethodGet, meta.URL, nil)
	if err != nil {
		return TransportErr(models.NewScrapeError(models.ErrCodeEngine, "fetch: build request", err))
	}
	for k, v := range meta.Options.Headers {
		req.Header.Set(k, v)
	}

	var cached *cache.Validator
	if v, ok := e.cache.Get(meta.URL); ok {
		cached = v
		if req.Header.Get("If-None-Match") == "" && v.ETag != "" {
			req.Header.Set("If-None-Match", v.ETag)
		}
		if req.Header.Get("If-Modified-Since") == "" && v.LastModified != "" {
			req.Header.Set("If-Modified-Since", v.LastModified)
		}
	}

	resp, err := dispatcher.Do(req)
	if err != nil {
		code, wrapped := httpx.ClassifyDialError(err)
		return TransportErr(models.NewScrapeError(code, "fetch: request failed", wrapped))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified && cached != nil {
		return e.finalize(meta, resp, cached.Body, cached.ContentType, cached.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBody))
	if err != nil {
		return TransportErr(models.NewScrapeError(models.ErrCodeEngine, "fetch: read body", err))
	}

	ct := resp.Header.Get("Content-Type")
	body = decodeCharset(body, ct)

	if etag := resp.Header.Get("ETag"); etag != "" {
		e.cache.Set(meta.URL, &cache.Validator{
			ETag:         etag,
			LastModified: resp.Header.Get("Last-Modified"),
			Body:         body,
			StatusCode:   resp.StatusCode,
			ContentType:  ct,
		})
	}

	return e.finalize(meta, resp, body, ct, resp.StatusCode)
}

func (e *FetchEngine) finalize(meta *models.Meta, resp *http.Response, body []byte, contentType string, statusCode int) Result {
	if flags := Sniff(contentType); flags != nil {
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

	headers := map[string]string{}
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}

	finalURL := meta.URL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return Ok(&models.EngineResult{
		FinalURL:    finalURL,
		HTML:        string(body),
		StatusCode:  statusCode,
		ContentType: contentType,
		Headers:     headers,
		ProxyUsed:   models.ProxyBasic,
	})
}

// decodeCharset decodes body to UTF-8, first consulting the Content-Type
// header and a scan of the document's <meta charset> hint (spec.md §4.2).
// With no usable declaration, bytes that are valid UTF-8 are kept as-is and
// anything else is decoded as windows-1252; the raw bytes are returned only
// when decoding fails.
func decodeCharset(body []byte, contentType string) []byte {
	enc, name, _ := charset.DetermineEncoding(body, contentType)
	if name == "utf-8" || enc == nil {
		return body
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return body
	}
	return decoded
}
