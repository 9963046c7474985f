// Package crawler implements the Crawler Frontier (C12): BFS URL
// discovery bounded by depth and page limit, filtered through
// include/exclude regexes, subdomain/backward-crawl/content-link policy,
// a domain blocklist, and (optionally) robots.txt (spec.md §4.11).
// Grounded on the teacher's api/handler/crawl.go runCrawl BFS, replacing
// its raw sync.WaitGroup/channel-semaphore fan-out with
// golang.org/x/sync/errgroup per the pack's own worker-pool idiom.
package crawler

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/use-agent/purify-crawl/cleaner"
	"github.com/use-agent/purify-crawl/models"
	"github.com/use-agent/purify-crawl/robots"
	"github.com/use-agent/purify-crawl/sitemap"
)

const defaultMaxConcurrency = 10

// ScrapePage invokes the scrape pipeline for one URL and returns its
// Document. The frontier is decoupled from the orchestrator package
// through this function type; callers wire orchestrator.Scrape (or an
// equivalent) in.
type ScrapePage func(ctx context.Context, rawURL string, headers map[string]string) (*models.Document, error)

// Config describes one crawl job (spec.md §4.11 "Constructed with: job
// id, initial URL, include/exclude regexes, limit, max crawled depth,
// policy toggles, merged headers").
type Config struct {
	JobID      string
	InitialURL string
	Includes   *regexp.Regexp
	Excludes   *regexp.Regexp
	Limit      int
	MaxDepth   int
	Headers    map[string]string

	RegexOnFullURL            bool
	AllowSubdomains           bool
	AllowExternalContentLinks bool
	AllowBackwardCrawling     bool

	CheckRobots      bool
	RobotsUserAgents []string

	MaxConcurrency int
}

// Frontier runs one bounded crawl.
type Frontier struct {
	cfg       Config
	scrape    ScrapePage
	blocklist *Blocklist
	robots    *robots.Evaluator
	sitemap   *sitemap.Processor
}

// New builds a Frontier. robotsEval and sitemapProc may be nil to disable
// robots consultation and sitemap seeding respectively.
func New(cfg Config, scrape ScrapePage, blocklist *Blocklist, robotsEval *robots.Evaluator, sitemapProc *sitemap.Processor) *Frontier {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = defaultMaxConcurrency
	}
	if blocklist == nil {
		blocklist = NewBlocklist(nil, nil)
	}
	return &Frontier{cfg: cfg, scrape: scrape, blocklist: blocklist, robots: robotsEval, sitemap: sitemapProc}
}

type queueItem struct {
	url   string
	depth int
}

// Run performs the BFS crawl described in spec.md §4.11 and returns the
// assembled response. It never returns an error itself; per-URL failures
// are recorded in the response's Errors slice (spec.md §7).
func (f *Frontier) Run(ctx context.Context) *models.CrawlResponse {
	initial, err := url.Parse(f.cfg.InitialURL)
	if err != nil {
		return &models.CrawlResponse{
			Success: false,
			Error:   models.NewScrapeError(models.ErrCodeInvalidInput, "invalid initial URL", err).ToDetail(true),
		}
	}

	filter := NewLinkFilter(initial, f.cfg.Includes, f.cfg.Excludes, f.cfg.RegexOnFullURL,
		f.cfg.AllowSubdomains, f.cfg.AllowExternalContentLinks, f.cfg.AllowBackwardCrawling)

	var mu sync.Mutex
	discovered := map[string]struct{}{f.cfg.InitialURL: {}}
	var queue []queueItem
	queue = append(queue, queueItem{url: f.cfg.InitialURL, depth: 0})

	enqueue := func(link string, depth int) {
		mu.Lock()
		defer mu.Unlock()
		if len(discovered) >= f.cfg.Limit {
			return
		}
		if _, seen := discovered[link]; seen {
			return
		}
		if !filter.Match(link) || !f.allowLink(link) {
			return
		}
		discovered[link] = struct{}{}
		queue = append(queue, queueItem{url: link, depth: depth})
	}

	if f.sitemap != nil {
		f.sitemap.Walk(sitemapRoot(initial), func(u string) {
			enqueue(u, 1)
		})
	}

	var results []models.Document
	var errs []models.CrawlPageError
	processed := 0

	for len(queue) > 0 {
		mu.Lock()
		if processed >= f.cfg.Limit {
			mu.Unlock()
			break
		}
		level := queue
		queue = nil
		mu.Unlock()

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(f.cfg.MaxConcurrency)

		for _, item := range level {
			mu.Lock()
			if processed >= f.cfg.Limit {
				mu.Unlock()
				break
			}
			processed++
			mu.Unlock()

			it := item
			g.Go(func() error {
				doc, links, scrapeErr := f.processOne(gctx, it.url)

				mu.Lock()
				if scrapeErr != nil {
					errs = append(errs, models.CrawlPageError{URL: it.url, Error: scrapeErr.ToDetail(true)})
				} else {
					results = append(results, *doc)
				}
				mu.Unlock()

				if scrapeErr == nil && it.depth < f.cfg.MaxDepth {
					for _, link := range links {
						enqueue(link, it.depth+1)
					}
				}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			slog.Warn("crawl: level processing returned an error", "job", f.cfg.JobID, "error", err)
		}
	}

	succeeded := len(results)
	failed := len(errs)
	return &models.CrawlResponse{
		Success: failed == 0 || succeeded > 0,
		Pages:   results,
		Errors:  errs,
		Stats: models.CrawlStats{
			Discovered: len(discovered),
			Processed:  processed,
			Succeeded:  succeeded,
			Failed:     failed,
		},
	}
}

// allowLink applies the mutable checks filterLinks needs beyond
// LinkFilter.Match: the domain blocklist and, when enabled, robots.txt
// (spec.md §4.11).
func (f *Frontier) allowLink(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	if f.blocklist.Blocked(u.Host) {
		return false
	}
	if f.cfg.CheckRobots && f.robots != nil {
		if !f.robots.Allowed(f.cfg.RobotsUserAgents, link) {
			return false
		}
	}
	return true
}

// processOne scrapes one URL and, on success, extracts its links from the
// raw HTML the orchestrator always includes for crawl requests (spec.md
// §4.11 step 3 "rawHtml added to the requested formats").
func (f *Frontier) processOne(ctx context.Context, rawURL string) (*models.Document, []string, *models.ScrapeError) {
	doc, err := f.scrape(ctx, rawURL, f.cfg.Headers)
	if err != nil {
		if se, ok := err.(*models.ScrapeError); ok {
			return nil, nil, se
		}
		return nil, nil, models.NewScrapeError(models.ErrCodeInternal, "crawl: scrape failed", err)
	}
	var links []string
	if doc.RawHTML != nil {
		links = cleaner.ExtractLinks(*doc.RawHTML, rawURL)
	}
	return doc, links, nil
}

func sitemapRoot(u *url.URL) string {
	return u.Scheme + "://" + u.Host + "/sitemap.xml"
}
