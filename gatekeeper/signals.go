package gatekeeper

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"

	"github.com/use-agent/purify-crawl/models"
)

// computeQuality derives the raw quality signals from the fetched HTML
// (spec.md §4.6 step 1), grounded on the teacher's extractVisibleText
// tag-stripping walk (scraper/httpfetch.go) generalized from body-only to
// whole-document text plus a main-content-only pass.
func computeQuality(rawHTML string) models.QualityRecord {
	return models.QualityRecord{
		HTMLBytes:         len(rawHTML),
		VisibleTextChars:  len(visibleText(rawHTML, false)),
		MainContentChars:  len(visibleText(rawHTML, true)),
		HasStructuredData: hasStructuredData(rawHTML),
	}
}

// visibleText walks the tokenized document, stripping script/style/
// noscript content and all tags, collapsing whitespace. When
// mainContentOnly is true, only text inside <main>/<article> elements is
// collected; if none exist, it falls back to the full document (spec.md
// §4.6 step 1: "falls back to full text if none").
func visibleText(rawHTML string, mainContentOnly bool) string {
	tokenizer := html.NewTokenizer(strings.NewReader(rawHTML))
	var buf strings.Builder
	var mainBuf strings.Builder
	skipDepth := 0
	mainDepth := 0
	sawMain := false

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			if mainContentOnly {
				if sawMain {
					return collapseWhitespace(mainBuf.String())
				}
				return collapseWhitespace(buf.String())
			}
			return collapseWhitespace(buf.String())
		case html.StartTagToken, html.SelfClosingTagToken:
			tn, _ := tokenizer.TagName()
			tag := string(tn)
			if tag == "script" || tag == "style" || tag == "noscript" {
				skipDepth++
			}
			if tag == "main" || tag == "article" {
				sawMain = true
				mainDepth++
			}
		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			tag := string(tn)
			if tag == "script" || tag == "style" || tag == "noscript" {
				if skipDepth > 0 {
					skipDepth--
				}
			}
			if tag == "main" || tag == "article" {
				if mainDepth > 0 {
					mainDepth--
				}
			}
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			text := strings.TrimSpace(string(tokenizer.Text()))
			if text == "" {
				continue
			}
			buf.WriteString(text)
			buf.WriteByte(' ')
			if mainDepth > 0 {
				mainBuf.WriteString(text)
				mainBuf.WriteByte(' ')
			}
		}
	}
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// hasStructuredData reports whether the document contains any JSON-LD
// script block.
func hasStructuredData(rawHTML string) bool {
	tokenizer := html.NewTokenizer(bytes.NewReader([]byte(rawHTML)))
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			return false
		}
		if tt != html.StartTagToken {
			continue
		}
		tn, hasAttr := tokenizer.TagName()
		if string(tn) != "script" || !hasAttr {
			continue
		}
		for {
			key, val, more := tokenizer.TagAttr()
			if string(key) == "type" && strings.EqualFold(strings.TrimSpace(string(val)), "application/ld+json") {
				return true
			}
			if !more {
				break
			}
		}
	}
}
