package cleaner

import (
	"strings"
	"testing"
)

func TestFilterContent_NoSelectors(t *testing.T) {
	html := "<div>keep</div>"
	if got := FilterContent(html, nil, nil); got != html {
		t.Errorf("FilterContent() = %q, want unchanged input", got)
	}
}

func TestFilterContent_ExcludeRemovesElements(t *testing.T) {
	html := `<html><body><nav>menu</nav><p>content</p></body></html>`
	got := FilterContent(html, nil, []string{"nav"})
	if strings.Contains(got, "menu") {
		t.Errorf("expected nav removed, got %q", got)
	}
	if !strings.Contains(got, "content") {
		t.Errorf("expected content preserved, got %q", got)
	}
}

func TestFilterContent_IncludeKeepsOnlyMatches(t *testing.T) {
	html := `<html><body><nav>menu</nav><article>the article</article></body></html>`
	got := FilterContent(html, []string{"article"}, nil)
	if strings.Contains(got, "menu") {
		t.Errorf("expected nav dropped from include-only result, got %q", got)
	}
	if !strings.Contains(got, "the article") {
		t.Errorf("expected article text kept, got %q", got)
	}
}

func TestFilterContent_IncludeNoMatchFallsBackToExcludeFiltered(t *testing.T) {
	html := `<html><body><nav>menu</nav><p>content</p></body></html>`
	got := FilterContent(html, []string{".missing"}, []string{"nav"})
	if strings.Contains(got, "menu") {
		t.Errorf("expected nav still excluded in fallback, got %q", got)
	}
	if !strings.Contains(got, "content") {
		t.Errorf("expected content present in fallback, got %q", got)
	}
}

func TestStripBase64Images_RemovesDataURI(t *testing.T) {
	html := `<img src="data:image/png;base64,AAAA"><img src="https://example.com/x.png">`
	got := StripBase64Images(html)
	if strings.Contains(got, "base64") {
		t.Errorf("expected data URI stripped, got %q", got)
	}
	if !strings.Contains(got, "https://example.com/x.png") {
		t.Errorf("expected remote src preserved, got %q", got)
	}
}
