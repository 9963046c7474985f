// Package robots implements the Robots Evaluator (C10): fetches
// robots.txt through the secure dispatcher and answers allow/disallow
// queries for a caller-supplied list of user-agent tokens (spec.md §4.9).
// Grounded on the teacher's api/handler/map.go fetchRobotsSitemaps
// line-based directive parser, generalized from "collect Sitemap:
// directives" to a full allow/disallow rule set per user-agent.
package robots

import (
	"bufio"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/use-agent/purify-crawl/httpx"
)

const maxRobotsBytes = 1 << 20 // 1MB, matching the teacher's fetchRobotsSitemaps cap

// rule is one Allow/Disallow directive under a User-agent group.
type rule struct {
	path  string
	allow bool
}

// group is the set of rules following one or more User-agent: lines.
type group struct {
	agents []string // lowercased tokens, "*" included verbatim
	rules  []rule
}

// Doc is a parsed robots.txt plus its extracted Sitemap: directives.
type Doc struct {
	groups   []group
	Sitemaps []string
}

// Fetch retrieves and parses robots.txt for origin ("https://host") via
// the given dispatcher. 404s and network failures both yield an empty Doc
// that allows everything (spec.md §4.9 "treated as no robots, allow
// all").
func Fetch(dispatcher *httpx.Dispatcher, origin string) (*Doc, error) {
	req, err := http.NewRequest(http.MethodGet, strings.TrimRight(origin, "/")+"/robots.txt", nil)
	if err != nil {
		return &Doc{}, nil
	}

	resp, err := dispatcher.Do(req)
	if err != nil {
		return &Doc{}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &Doc{}, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBytes))
	if err != nil {
		return &Doc{}, nil
	}

	return Parse(body), nil
}

// Parse reads a robots.txt document into groups of directives plus any
// Sitemap: lines found anywhere in the file.
func Parse(body []byte) *Doc {
	doc := &Doc{}
	var current *group

	scanner := bufio.NewScanner(strings.NewReader(string(body)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}

		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		val = strings.TrimSpace(val)

		switch key {
		case "user-agent":
			if current == nil || len(current.rules) > 0 {
				doc.groups = append(doc.groups, group{})
				current = &doc.groups[len(doc.groups)-1]
			}
			current.agents = append(current.agents, strings.ToLower(val))
		case "allow":
			if current != nil && val != "" {
				current.rules = append(current.rules, rule{path: val, allow: true})
			}
		case "disallow":
			if current != nil {
				if val == "" {
					current.rules = append(current.rules, rule{path: "", allow: true})
				} else {
					current.rules = append(current.rules, rule{path: val, allow: false})
				}
			}
		case "sitemap":
			if val != "" {
				doc.Sitemaps = append(doc.Sitemaps, val)
			}
		}
	}

	return doc
}

// Allowed reports whether path is allowed for any of userAgents, checked
// in order (spec.md §4.9: "allowed if any token yields allow"). It also
// consults the trailing-slash form of path and blocks the original if
// that form is explicitly disallowed.
func (d *Doc) Allowed(userAgents []string, rawURL string) bool {
	if d == nil {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}

	for _, ua := range userAgents {
		if d.allowedForAgent(ua, path) {
			if strings.HasSuffix(path, "/") || d.allowedForAgent(ua, path+"/") {
				return true
			}
		}
	}
	return false
}

func (d *Doc) allowedForAgent(userAgent, path string) bool {
	g := d.bestGroup(strings.ToLower(userAgent))
	if g == nil {
		return true
	}

	best := rule{allow: true}
	bestLen := -1
	for _, r := range g.rules {
		if !strings.HasPrefix(path, r.path) {
			continue
		}
		if len(r.path) > bestLen {
			bestLen = len(r.path)
			best = r
		}
	}
	return best.allow
}

// bestGroup picks the most specific matching User-agent group: an exact
// token match wins over "*".
func (d *Doc) bestGroup(userAgent string) *group {
	var wildcard *group
	for i := range d.groups {
		g := &d.groups[i]
		for _, a := range g.agents {
			if a == userAgent {
				return g
			}
			if a == "*" {
				wildcard = g
			}
		}
	}
	return wildcard
}

// Evaluator caches one Doc per origin for the process lifetime (robots.txt
// rarely changes within a single crawl run).
type Evaluator struct {
	dispatcher *httpx.Dispatcher

	mu   sync.Mutex
	docs map[string]*Doc
}

// New builds an Evaluator backed by dispatcher for outbound fetches.
func New(dispatcher *httpx.Dispatcher) *Evaluator {
	return &Evaluator{dispatcher: dispatcher, docs: make(map[string]*Doc)}
}

// Allowed reports whether rawURL is allowed for userAgents, fetching and
// caching that URL's origin robots.txt on first use.
func (e *Evaluator) Allowed(userAgents []string, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	origin := u.Scheme + "://" + u.Host

	e.mu.Lock()
	doc, ok := e.docs[origin]
	e.mu.Unlock()
	if !ok {
		doc, _ = Fetch(e.dispatcher, origin)
		e.mu.Lock()
		e.docs[origin] = doc
		e.mu.Unlock()
	}

	return doc.Allowed(userAgents, rawURL)
}
