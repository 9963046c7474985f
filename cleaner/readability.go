package cleaner

import (
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// minContentLength is the extracted-text length below which readability's
// result is considered a failed extraction (grounded on the teacher's
// cleaner/readability.go).
const minContentLength = 50

// ExtractMainContent runs go-readability against rawHTML and returns the
// article. If URL parsing fails, extraction errors, or the extracted text
// is too short, it falls back to an Article wrapping the untouched rawHTML
// (spec.md §4.8 "onlyMainContent: false falls back to the untouched
// document").
func ExtractMainContent(rawHTML, sourceURL string) readability.Article {
	parsedURL, err := url.Parse(sourceURL)
	if err != nil {
		return fallbackArticle(rawHTML)
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		return fallbackArticle(rawHTML)
	}

	if len(strings.TrimSpace(article.TextContent)) < minContentLength {
		return fallbackArticle(rawHTML)
	}

	return article
}

// fallbackArticle wraps rawHTML as-is, used whenever main-content
// extraction is skipped or fails.
func fallbackArticle(rawHTML string) readability.Article {
	return readability.Article{
		Content:     rawHTML,
		TextContent: stripTags(rawHTML),
	}
}
