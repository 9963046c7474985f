// Package sitemap implements the Sitemap Processor (C11): an iterative,
// cycle-safe walk of a sitemap graph bounded by a global hit-set limit
// (spec.md §4.10). Grounded on the teacher's api/handler/map.go
// sitemapIndex/urlset XML structs and recursive fetchSitemap, generalized
// from single-level recursion to an explicit stack with a visited set.
package sitemap

import (
	"compress/gzip"
	"encoding/xml"
	"io"
	"net/http"
	"strings"

	"github.com/use-agent/purify-crawl/httpx"
)

// SitemapLimit bounds the number of distinct sitemap URLs a single Walk
// will visit, protecting against cyclic or unbounded sitemap graphs
// (spec.md §4.10 "SITEMAP_LIMIT ... the source uses a fixed bound").
const SitemapLimit = 500

const maxSitemapBytes = 5 << 20 // 5MB, matching the teacher's fetchSitemap cap

type sitemapIndex struct {
	XMLName  xml.Name       `xml:"sitemapindex"`
	Sitemaps []sitemapEntry `xml:"sitemap"`
}

type sitemapEntry struct {
	Loc string `xml:"loc"`
}

type urlset struct {
	XMLName xml.Name   `xml:"urlset"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc string `xml:"loc"`
}

// Processor walks sitemap graphs over the secure dispatcher.
type Processor struct {
	dispatcher *httpx.Dispatcher
	limit      int
}

// New builds a Processor. limit <= 0 uses SitemapLimit.
func New(dispatcher *httpx.Dispatcher, limit int) *Processor {
	if limit <= 0 {
		limit = SitemapLimit
	}
	return &Processor{dispatcher: dispatcher, limit: limit}
}

// Walk iteratively visits the sitemap graph rooted at rootURL, calling
// onURL for every page URL discovered by a "process" instruction (spec.md
// §4.10 step 3). Cycle protection and the visited-set bound are enforced
// internally; Walk never revisits a sitemap URL and never visits more
// than p.limit sitemap URLs.
func (p *Processor) Walk(rootURL string, onURL func(string)) {
	visited := make(map[string]struct{})
	stack := []string{rootURL}

	for len(stack) > 0 && len(visited) < p.limit {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := visited[u]; seen {
			continue
		}
		visited[u] = struct{}{}

		body, err := p.fetch(u)
		if err != nil || body == nil {
			continue
		}

		recurse, process := parse(body)
		for _, r := range recurse {
			if _, seen := visited[r]; !seen {
				stack = append(stack, r)
			}
		}
		for _, pu := range process {
			onURL(pu)
		}
	}
}

// fetch downloads the sitemap at u, gunzipping if it ends in .gz.
func (p *Processor) fetch(u string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.dispatcher.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var reader io.Reader = io.LimitReader(resp.Body, maxSitemapBytes)
	if strings.HasSuffix(u, ".gz") {
		gz, err := gzip.NewReader(reader)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = io.LimitReader(gz, maxSitemapBytes)
	}

	return io.ReadAll(reader)
}

// parse produces the {recurse, process} instruction pair for spec.md
// §4.10 step 3. A parse failure on the outer container falls back to
// lenient urlset parsing; a completely unparsable document yields two
// empty slices (the caller skips it).
func parse(body []byte) (recurse, process []string) {
	var idx sitemapIndex
	if err := xml.Unmarshal(body, &idx); err == nil && len(idx.Sitemaps) > 0 {
		for _, s := range idx.Sitemaps {
			if s.Loc != "" {
				recurse = append(recurse, s.Loc)
			}
		}
		return recurse, process
	}

	var us urlset
	if err := xml.Unmarshal(body, &us); err == nil {
		for _, u := range us.URLs {
			if u.Loc != "" {
				process = append(process, u.Loc)
			}
		}
	}
	return recurse, process
}
