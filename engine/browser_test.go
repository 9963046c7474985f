package engine

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/use-agent/purify-crawl/models"
)

func TestBrowserEngine_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req renderRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(renderResponse{
			Content:      "<html><body>rendered</body></html>",
			PageStatus:   200,
			ContentType:  "text/html",
			RenderStatus: "loaded",
		})
	}))
	defer srv.Close()

	be := NewBrowserEngine(srv.URL, false)
	meta := newTestMeta(t, "https://example.com/")
	res := be.Fetch(meta)
	if res.Kind != KindOk {
		t.Fatalf("expected KindOk, got %v (err=%v)", res.Kind, res.Err)
	}
	if res.Engine.RenderStatus != models.RenderLoaded {
		t.Errorf("RenderStatus = %q", res.Engine.RenderStatus)
	}
}

func TestBrowserEngine_NotConfigured(t *testing.T) {
	be := NewBrowserEngine("", false)
	if be.Available() {
		t.Error("expected Available() false with empty microservice URL")
	}
	meta := newTestMeta(t, "https://example.com/")
	res := be.Fetch(meta)
	if res.Kind != KindTransportError {
		t.Errorf("expected KindTransportError, got %v", res.Kind)
	}
}

func TestBrowserEngine_RetriesOn403(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		status := 403
		if calls == 3 {
			status = 200
		}
		json.NewEncoder(w).Encode(renderResponse{
			Content:     "body",
			PageStatus:  status,
			ContentType: "text/html",
		})
	}))
	defer srv.Close()

	be := NewBrowserEngine(srv.URL, false)
	meta := newTestMeta(t, "https://example.com/")
	res := be.Fetch(meta)
	if res.Kind != KindOk {
		t.Fatalf("expected eventual KindOk, got %v", res.Kind)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts (1 + 2 retries), got %d", calls)
	}
}
