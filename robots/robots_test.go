package robots

import "testing"

func TestParse_DisallowBlocksPrefix(t *testing.T) {
	doc := Parse([]byte(`
User-agent: *
Disallow: /admin
Sitemap: https://example.com/sitemap.xml
`))
	if len(doc.Sitemaps) != 1 || doc.Sitemaps[0] != "https://example.com/sitemap.xml" {
		t.Fatalf("Sitemaps = %v", doc.Sitemaps)
	}
	if doc.Allowed([]string{"MyBot"}, "https://example.com/admin/settings") {
		t.Errorf("expected /admin/settings disallowed")
	}
	if !doc.Allowed([]string{"MyBot"}, "https://example.com/public") {
		t.Errorf("expected /public allowed")
	}
}

func TestParse_MoreSpecificAllowOverridesDisallow(t *testing.T) {
	doc := Parse([]byte(`
User-agent: *
Disallow: /admin
Allow: /admin/public
`))
	if !doc.Allowed([]string{"bot"}, "https://example.com/admin/public/page") {
		t.Errorf("expected the longer Allow match to win")
	}
	if doc.Allowed([]string{"bot"}, "https://example.com/admin/secret") {
		t.Errorf("expected /admin/secret disallowed")
	}
}

func TestParse_SpecificAgentOverridesWildcard(t *testing.T) {
	doc := Parse([]byte(`
User-agent: *
Disallow: /

User-agent: goodbot
Disallow:
`))
	if doc.Allowed([]string{"randombot"}, "https://example.com/x") {
		t.Errorf("expected wildcard group to disallow everything for randombot")
	}
	if !doc.Allowed([]string{"goodbot"}, "https://example.com/x") {
		t.Errorf("expected goodbot's empty Disallow to allow everything")
	}
}

func TestAllowed_AnyAllowingAgentWins(t *testing.T) {
	doc := Parse([]byte(`
User-agent: blocked
Disallow: /

User-agent: *
Disallow:
`))
	if !doc.Allowed([]string{"blocked", "*"}, "https://example.com/x") {
		t.Errorf("expected allow because at least one token (wildcard) allows")
	}
}

func TestAllowed_NilDocAllowsAll(t *testing.T) {
	var d *Doc
	if !d.Allowed([]string{"bot"}, "https://example.com/anything") {
		t.Errorf("expected nil Doc to allow everything")
	}
}
