package engine

import (
	"mime"
	"strings"

	"github.com/use-agent/purify-crawl/models"
)

// officeDocumentPrefixes are the Content-Type prefixes that trigger the
// "document" feature flag (spec.md §4.5).
var officeDocumentPrefixes = []string{
	"application/vnd.openxmlformats-officedocument.wordprocessingml", // docx
	"application/vnd.oasis.opendocument.text",                        // odt
	"application/rtf", "text/rtf",                                    // rtf
	"application/vnd.openxmlformats-officedocument.spreadsheetml", // xlsx
	"application/vnd.ms-excel",                                    // xls
	"application/msword",                                          // doc
}

// Sniff inspects the Content-Type header of a response and, if it
// recognizes a PDF or office-document MIME type, returns the feature
// flag(s) the orchestrator should add before restarting the fallback
// list. Returns nil if no escalation is warranted.
func Sniff(contentType string) []models.FeatureFlag {
	ct, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		ct = strings.ToLower(strings.TrimSpace(contentType))
		if idx := strings.Index(ct, ";"); idx >= 0 {
			ct = ct[:idx]
		}
	}
	ct = strings.ToLower(ct)

	if ct == "application/pdf" {
		return []models.FeatureFlag{models.FeaturePDF}
	}
	for _, prefix := range officeDocumentPrefixes {
		if strings.HasPrefix(ct, prefix) {
			return []models.FeatureFlag{models.FeatureDocument}
		}
	}
	return nil
}
