package cleaner

import (
	"reflect"
	"testing"
)

func TestExtractLinks_ResolvesAndDedupes(t *testing.T) {
	html := `<a href="/a">A</a><a href="/a">dup</a><a href="https://other.com/b">B</a><a href="javascript:void(0)">skip</a>`
	got := ExtractLinks(html, "https://example.com/page")
	want := []string{"https://example.com/a", "https://other.com/b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractLinks() = %v, want %v", got, want)
	}
}

func TestExtractImages_SkipsDataURIWhenRemoving(t *testing.T) {
	html := `<img src="/x.png"><img src="data:image/png;base64,AAAA">`
	got := ExtractImages(html, "https://example.com/page", true)
	want := []string{"https://example.com/x.png"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractImages() = %v, want %v", got, want)
	}
}

func TestExtractImages_KeepsDataURIWhenNotRemoving(t *testing.T) {
	html := `<img src="data:image/png;base64,AAAA">`
	got := ExtractImages(html, "https://example.com/page", false)
	if len(got) != 1 {
		t.Fatalf("expected 1 image kept, got %v", got)
	}
}

func TestExtractPageMetadata(t *testing.T) {
	html := `<html lang="en"><head><title>Hi</title><meta name="description" content="desc"></head></html>`
	meta := ExtractPageMetadata(html)
	if meta.Title != "Hi" || meta.Language != "en" || meta.Description != "desc" {
		t.Errorf("ExtractPageMetadata() = %+v", meta)
	}
}
