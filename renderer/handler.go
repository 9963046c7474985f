package renderer

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/use-agent/purify-crawl/cleaner"
	"github.com/use-agent/purify-crawl/gatekeeper"
)

// Handler serves the render contract over HTTP: one POST endpoint that
// navigates a page and returns extracted content plus gatekeeper
// evidence computed in-process (this microservice owns the only browser,
// so it is the only place that can observe rendered-DOM signals).
type Handler struct {
	browser *Browser
	gk      *gatekeeper.Gatekeeper
	log     *slog.Logger
}

func NewHandler(browser *Browser, gk *gatekeeper.Gatekeeper, log *slog.Logger) *Handler {
	return &Handler{browser: browser, gk: gk, log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.URL == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}

	html, finalURL, status, renderStatus, pageErr := h.browser.render(r.Context(), req)

	resp := Response{
		Content:      html,
		PageStatus:   status,
		ContentType:  "text/html",
		RenderStatus: string(renderStatus),
	}
	if pageErr != nil {
		resp.PageError = pageErr.Error()
		h.log.Warn("renderer: page error", "url", req.URL, "error", pageErr)
	}

	evidence := h.gk.Classify(gatekeeper.Input{
		RawHTML:    html,
		StatusCode: status,
		FinalURL:   finalURL,
		Title:      cleaner.ExtractPageMetadata(html).Title,
	})
	resp.Evidence = evidence
	resp.ContentStatus = evidence.ContentStatus

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.Error("renderer: failed to encode response", "error", err)
	}
}
