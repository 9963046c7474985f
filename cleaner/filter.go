package cleaner

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FilterContent applies includeTags/excludeTags CSS-selector filtering to
// rawHTML (spec.md §4.8): excludeTags elements are removed first, then, if
// includeTags is non-empty, only the matching elements' outer HTML is kept.
// A no-match include falls back to the exclude-filtered document.
func FilterContent(rawHTML string, includeTags, excludeTags []string) string {
	if len(includeTags) == 0 && len(excludeTags) == 0 {
		return rawHTML
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML
	}

	for _, selector := range excludeTags {
		doc.Find(selector).Remove()
	}

	if len(includeTags) > 0 {
		combined := strings.Join(includeTags, ", ")
		matches := doc.Find(combined)
		if matches.Length() > 0 {
			var buf strings.Builder
			matches.Each(func(_ int, s *goquery.Selection) {
				if h, err := goquery.OuterHtml(s); err == nil {
					buf.WriteString(h)
				}
			})
			return buf.String()
		}
	}

	result, err := doc.Html()
	if err != nil {
		return rawHTML
	}
	return result
}

// StripBase64Images removes the src attribute of <img> elements whose
// value is a data: URL, replacing it with an empty string, so the
// remaining markup carries no embedded image payload (spec.md §4.8
// "strips base64 image data URIs when removeBase64Images is true").
func StripBase64Images(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML
	}
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		if src, _ := s.Attr("src"); strings.HasPrefix(src, "data:") {
			s.SetAttr("src", "")
		}
	})
	result, err := doc.Html()
	if err != nil {
		return rawHTML
	}
	return result
}
