package engine

import (
	"encoding/base64"
	"fmt"
	"html"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/use-agent/purify-crawl/httpx"
	"github.com/use-agent/purify-crawl/models"
)

// perPageBudget is the time-per-page estimate spec.md §4.4 uses to fail
// fast rather than parse a PDF that cannot possibly finish within the
// remaining scrape budget.
const perPageBudget = 150 * time.Millisecond

// PDFEngine downloads a PDF through the Secure Dispatcher and either
// passes the raw bytes through (base64) or extracts page count, title,
// and text, depending on the requested parsers (spec.md §4.4).
type PDFEngine struct {
	fabric *httpx.Fabric
}

// NewPDFEngine builds a PDFEngine over the given Secure Dispatcher fabric.
func NewPDFEngine(fabric *httpx.Fabric) *PDFEngine {
	return &PDFEngine{fabric: fabric}
}

func (e *PDFEngine) Name() string { return "pdf" }

func (e *PDFEngine) Fetch(meta *models.Meta) Result {
	dispatcher := e.fabric.Get(httpx.Key{
		SkipTLS:      meta.Options.SkipTLSVerification,
		AllowCookies: false,
	})

	req, err := http.NewRequestWithContext(meta.Ctx, http.MethodGet, meta.URL, nil)
	if err != nil {
		return TransportErr(models.NewScrapeError(models.ErrCodeEngine, "pdf: build request", err))
	}
	for k, v := range meta.Options.Headers {
		req.Header.Set(k, v)
	}

	resp, err := dispatcher.Do(req)
	if err != nil {
		code, wrapped := httpx.ClassifyDialError(err)
		return TransportErr(models.NewScrapeError(code, "pdf: request failed", wrapped))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBody))
	if err != nil {
		return TransportErr(models.NewScrapeError(models.ErrCodeEngine, "pdf: read body", err))
	}
	contentType := resp.Header.Get("Content-Type")

	spec, parse := meta.Options.Parsers.Get("pdf")
	if !parse {
		return e.passThrough(meta, resp.StatusCode, contentType, body)
	}
	return e.parse(meta, resp.StatusCode, contentType, body, spec.MaxPages)
}

// passThrough implements spec.md §4.4's pass-through mode: the caller did
// not request PDF parsing, so raw bytes are returned base64-encoded
// unless the response isn't actually a PDF and the "pdf" feature flag was
// never set (in which case there is nothing useful to return).
func (e *PDFEngine) passThrough(meta *models.Meta, statusCode int, contentType string, body []byte) Result {
	if !strings.HasPrefix(strings.ToLower(contentType), "application/pdf") && !meta.Features[models.FeaturePDF] {
		return Unsuccessful(models.NewScrapeError(models.ErrCodeEngineUnsuccessful,
			"pdf: response is not a pdf and pdf feature flag not set", nil))
	}

	encoded := base64.StdEncoding.EncodeToString(body)
	return Ok(&models.EngineResult{
		FinalURL:    meta.URL,
		HTML:        encoded,
		StatusCode:  statusCode,
		ContentType: contentType,
		ProxyUsed:   models.ProxyBasic,
	})
}

// parse implements spec.md §4.4's parse mode.
func (e *PDFEngine) parse(meta *models.Meta, statusCode int, contentType string, body []byte, maxPages int) Result {
	tmpFile, err := os.CreateTemp("", "purify-pdf-*.pdf")
	if err != nil {
		return TransportErr(models.NewScrapeError(models.ErrCodeEngine, "pdf: create temp file", err))
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpFile.Write(body); err != nil {
		tmpFile.Close()
		return TransportErr(models.NewScrapeError(models.ErrCodeEngine, "pdf: write temp file", err))
	}
	tmpFile.Close()

	file, reader, err := pdf.Open(tmpPath)
	if err != nil {
		return TransportErr(models.NewScrapeError(models.ErrCodePDFAntibot, "pdf: open failed (likely antibot page)", err))
	}
	defer file.Close()

	actualPages := reader.NumPage()
	effectivePages := actualPages
	if maxPages > 0 && maxPages < effectivePages {
		effectivePages = maxPages
	}

	title := ""
	if info := reader.Trailer().Key("Info"); !info.IsNull() {
		title = info.Key("Title").Text()
	}

	if remaining, ok := remainingBudget(meta); ok {
		estimated := time.Duration(effectivePages) * perPageBudget
		if estimated > remaining {
			return TransportErr(models.NewScrapeError(models.ErrCodePDFInsufficientTime,
				fmt.Sprintf("pdf: %d pages would exceed remaining budget of %s", effectivePages, remaining), nil))
		}
	}

	var text strings.Builder
	for i := 1; i <= effectivePages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text.WriteString(pageText)
		text.WriteByte('\n')
	}

	escaped := html.EscapeString(text.String())

	return Ok(&models.EngineResult{
		FinalURL:    meta.URL,
		HTML:        escaped,
		StatusCode:  statusCode,
		ContentType: contentType,
		ProxyUsed:   models.ProxyBasic,
		PDF: &models.PDFMeta{
			Pages: effectivePages,
			Title: title,
		},
	})
}

// remainingBudget returns the time left before meta's context deadline,
// if one is set.
func remainingBudget(meta *models.Meta) (time.Duration, bool) {
	if meta.Ctx == nil {
		return 0, false
	}
	deadline, ok := meta.Ctx.Deadline()
	if !ok {
		return 0, false
	}
	return time.Until(deadline), true
}
