// Package cleaner implements the transformers stage (C9): HTML cleanup,
// main-content extraction, Markdown conversion, and link/image/metadata
// extraction, grounded on the teacher's cleaner package.
package cleaner

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"

	"github.com/use-agent/purify-crawl/models"
)

// Cleaner turns raw fetched HTML into the requested output formats. The
// Markdown converter is built once and reused across requests
// (goroutine-safe, per html-to-markdown/v2).
type Cleaner struct {
	mdConverter *converter.Converter
}

// New builds a Cleaner with a pre-configured Markdown converter.
func New() *Cleaner {
	return &Cleaner{mdConverter: newMarkdownConverter()}
}

// Clean runs the transformers pipeline against rawHTML and populates a
// Document with exactly the requested formats plus links/images/metadata
// (spec.md §4.8). sourceURL is the final (post-redirect) URL, used to
// resolve relative hrefs/srcs and as the Markdown converter's domain.
func (c *Cleaner) Clean(rawHTML, sourceURL string, opts models.Normalized) (*models.Document, error) {
	working := FilterContent(rawHTML, opts.IncludeTags, opts.ExcludeTags)
	if opts.RemoveBase64Images {
		working = StripBase64Images(working)
	}

	doc := &models.Document{}

	if opts.Formats[models.FormatRawHTML] {
		rh := rawHTML
		doc.RawHTML = &rh
	}

	needsContent := opts.Formats[models.FormatMarkdown] || opts.Formats[models.FormatHTML]
	var contentHTML string
	pageMeta := ExtractPageMetadata(rawHTML)

	if needsContent {
		if opts.OnlyMainContent {
			article := ExtractMainContent(working, sourceURL)
			contentHTML = article.Content
			if article.Title != "" {
				pageMeta.Title = article.Title
			}
			if article.Excerpt != "" {
				pageMeta.Description = article.Excerpt
			}
			if article.Language != "" {
				pageMeta.Language = article.Language
			}
		} else {
			contentHTML = working
		}
	}

	if opts.Formats[models.FormatHTML] {
		h := contentHTML
		doc.HTML = &h
	}

	if opts.Formats[models.FormatMarkdown] {
		md, err := toMarkdown(c.mdConverter, contentHTML, sourceURL)
		if err != nil {
			return nil, models.NewScrapeError(models.ErrCodeInternal, "markdown conversion failed", err)
		}
		md = strings.TrimSpace(md)
		doc.Markdown = &md
	}

	if opts.Formats[models.FormatLinks] {
		doc.Links = ExtractLinks(rawHTML, sourceURL)
	}

	if opts.Formats[models.FormatImages] {
		doc.Images = ExtractImages(rawHTML, sourceURL, opts.RemoveBase64Images)
	}

	doc.Metadata = models.Metadata{
		SourceURL:   sourceURL,
		URL:         sourceURL,
		Title:       pageMeta.Title,
		Description: pageMeta.Description,
		Language:    pageMeta.Language,
	}

	return doc, nil
}

// ProbeContent answers the orchestrator's acceptance predicate (spec.md
// §4.7 step 3): it converts rawHTML to Markdown in main-content mode
// first, and if that yields nothing, retries once in non-main-content
// mode. It reports the winning Markdown and whether either attempt
// produced non-empty content.
func (c *Cleaner) ProbeContent(rawHTML, finalURL string) (string, bool) {
	article := ExtractMainContent(rawHTML, finalURL)
	if md, err := toMarkdown(c.mdConverter, article.Content, finalURL); err == nil {
		if trimmed := strings.TrimSpace(md); trimmed != "" {
			return trimmed, true
		}
	}
	if md, err := toMarkdown(c.mdConverter, rawHTML, finalURL); err == nil {
		if trimmed := strings.TrimSpace(md); trimmed != "" {
			return trimmed, true
		}
	}
	return "", false
}
