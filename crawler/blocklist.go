package crawler

import "strings"

// Blocklist is the crawler's domain denylist (spec.md §4.11 "Blocklist").
// The default blob is empty; callers may pass a non-empty blocked set and
// a whitelist that overrides it for specific domains.
type Blocklist struct {
	blocked   map[string]struct{}
	whitelist map[string]struct{}
}

// NewBlocklist builds a Blocklist. Hosts are matched case-insensitively.
func NewBlocklist(blocked, whitelist []string) *Blocklist {
	b := &Blocklist{blocked: make(map[string]struct{}), whitelist: make(map[string]struct{})}
	for _, h := range blocked {
		b.blocked[strings.ToLower(h)] = struct{}{}
	}
	for _, h := range whitelist {
		b.whitelist[strings.ToLower(h)] = struct{}{}
	}
	return b
}

// Blocked reports whether host is denied: an exact match, a subdomain of a
// blocked root, or a same-base-name variant under a different TLD
// (spec.md §4.11). A whitelist entry always overrides.
func (b *Blocklist) Blocked(host string) bool {
	host = stripPort(strings.ToLower(host))
	if _, ok := b.whitelist[host]; ok {
		return false
	}
	if _, ok := b.blocked[host]; ok {
		return true
	}
	for root := range b.blocked {
		if strings.HasSuffix(host, "."+root) {
			return true
		}
	}
	name := baseName(host)
	for root := range b.blocked {
		if baseName(root) == name {
			return true
		}
	}
	return false
}

func stripPort(host string) string {
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		return host[:idx]
	}
	return host
}

// baseName is a heuristic base-name extraction: the leftmost label of a
// dotted host, so "facebook.com" and "facebook.co.uk" both yield
// "facebook" (spec.md §4.11 "same base-name different-TLD variants").
// Hosts with a subdomain are expected to already be caught by the
// blocked-root-suffix check above.
func baseName(host string) string {
	parts := strings.Split(host, ".")
	if len(parts) < 2 {
		return host
	}
	return parts[0]
}
