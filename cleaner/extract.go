package cleaner

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractLinks returns the ordered set of distinct absolute href values
// found in <a> elements, resolved against sourceURL (spec.md §4.8). Only
// http/https schemes are kept; fragments-only, javascript:, mailto: etc.
// are dropped.
func ExtractLinks(rawHTML, sourceURL string) []string {
	base, err := url.Parse(sourceURL)
	if err != nil {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	var links []string
	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || href == "" {
			return
		}
		resolved, err := base.Parse(href)
		if err != nil {
			return
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		abs := resolved.String()
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}
		links = append(links, abs)
	})
	return links
}

// ExtractImages returns the ordered set of distinct absolute src values
// found in <img> elements, resolved against sourceURL. When
// removeBase64Images is true, data: URLs are omitted (spec.md §4.8).
func ExtractImages(rawHTML, sourceURL string, removeBase64Images bool) []string {
	base, err := url.Parse(sourceURL)
	if err != nil {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	var images []string
	seen := make(map[string]struct{})
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, exists := s.Attr("src")
		if !exists || src == "" {
			return
		}
		resolved, err := base.Parse(src)
		if err != nil {
			return
		}
		if resolved.Scheme == "data" && removeBase64Images {
			return
		}
		abs := resolved.String()
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}
		images = append(images, abs)
	})
	return images
}

// PageMetadata is the subset of document metadata cleaner derives directly
// from the raw HTML (title/description/language), independent of
// readability's article-level metadata.
type PageMetadata struct {
	Title       string
	Description string
	Language    string
}

// ExtractPageMetadata reads <title>, the OpenGraph/description meta tags,
// and the document's declared language from rawHTML.
func ExtractPageMetadata(rawHTML string) PageMetadata {
	var meta PageMetadata

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return meta
	}

	meta.Title = strings.TrimSpace(doc.Find("title").First().Text())
	meta.Language, _ = doc.Find("html").First().Attr("lang")

	doc.Find("meta[property], meta[name]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		content, _ := s.Attr("content")
		if content == "" {
			return true
		}
		if prop, _ := s.Attr("property"); prop == "og:title" && meta.Title == "" {
			meta.Title = content
		}
		if prop, _ := s.Attr("property"); prop == "og:description" {
			meta.Description = content
		}
		if name, _ := s.Attr("name"); name == "description" && meta.Description == "" {
			meta.Description = content
		}
		return true
	})

	return meta
}

// stripTags extracts visible text from an HTML fragment via goquery.
func stripTags(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML
	}
	return strings.TrimSpace(doc.Text())
}
