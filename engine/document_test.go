package engine

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/use-agent/purify-crawl/httpx"
)

func TestDocumentEngine_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
		w.Write([]byte("fake docx bytes"))
	}))
	defer srv.Close()

	de := NewDocumentEngine(httpx.NewFabric(true, httpx.ProxyConfig{}))
	meta := newTestMeta(t, srv.URL)
	res := de.Fetch(meta)
	if res.Kind != KindOk {
		t.Fatalf("expected KindOk, got %v (err=%v)", res.Kind, res.Err)
	}
	if res.Engine.HTML == "" {
		t.Error("expected non-empty base64 body")
	}
}

func TestDocumentEngine_AntibotOnErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	de := NewDocumentEngine(httpx.NewFabric(true, httpx.ProxyConfig{}))
	meta := newTestMeta(t, srv.URL)
	res := de.Fetch(meta)
	if res.Kind != KindUnsuccessful {
		t.Fatalf("expected KindUnsuccessful, got %v", res.Kind)
	}
}
