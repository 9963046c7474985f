package engine

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/use-agent/purify-crawl/httpx"
	"github.com/use-agent/purify-crawl/models"
)

func TestPDFEngine_PassThroughRejectsNonPDF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	pe := NewPDFEngine(httpx.NewFabric(true, httpx.ProxyConfig{}))
	meta := newTestMeta(t, srv.URL)
	res := pe.Fetch(meta)
	if res.Kind != KindUnsuccessful {
		t.Fatalf("expected KindUnsuccessful, got %v", res.Kind)
	}
}

func TestPDFEngine_PassThroughAcceptsFeatureFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer srv.Close()

	pe := NewPDFEngine(httpx.NewFabric(true, httpx.ProxyConfig{}))
	meta := newTestMeta(t, srv.URL)
	meta.Features.Add(models.FeaturePDF)
	res := pe.Fetch(meta)
	if res.Kind != KindOk {
		t.Fatalf("expected KindOk when pdf feature flag set, got %v", res.Kind)
	}
}
