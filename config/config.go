// Package config loads process configuration from the environment,
// exactly as the teacher repo does, with the env var names spec.md §6
// names for this service.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Proxy      ProxyConfig
	Log        LogConfig
	Errors     ErrorExposureConfig
	Gatekeeper GatekeeperConfig
	Render     RenderConfig
	RateLimit  RateLimitConfig
	Crawl      CrawlConfig
	Cache      CacheConfig
	Auth       AuthConfig
	Blocklist  BlocklistConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 3002
}

// ProxyConfig controls the optional upstream proxy used by the Secure
// Dispatcher (C1).
type ProxyConfig struct {
	Server           string // empty means no proxy
	Username         string
	Password         string
	AllowLocalHosts  bool // ALLOW_LOCAL_WEBHOOKS
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// ErrorExposureConfig gates how much internal error detail the HTTP
// boundary reveals (spec.md §7 propagation rule, SPEC_FULL.md §8).
type ErrorExposureConfig struct {
	ExposeDetails bool
	ExposeStack   bool
}

// GatekeeperConfig controls the block-class classifier (C7). Only RulesPath
// is handed to the gatekeeper; the Min* values are read from the
// environment but not passed to it, so classification uses the rules
// file's thresholds or models.DefaultThresholds.
type GatekeeperConfig struct {
	RulesPath            string
	MinHTMLBytes         int
	MinVisibleTextChars  int
	MinMainContentChars  int
}

// RenderConfig points at the rendering microservice consumed by the
// Browser engine (C3).
type RenderConfig struct {
	MicroserviceURL string // PLAYWRIGHT_MICROSERVICE_URL, empty disables the Browser engine
}

// RateLimitConfig controls per-key rate limiting on the front door
// (ambient, kept from the teacher).
type RateLimitConfig struct {
	RequestsPerSecond float64 // default: 5
	Burst             int     // default: 10
}

// CrawlConfig bounds the crawler frontier's in-process concurrency
// (spec.md §5's "bounded semaphore on the browser-engine side, default
// 10", repurposed as the general page-processing pool size).
type CrawlConfig struct {
	MaxConcurrentPages int // default: 10
}

// CacheConfig bounds the conditional-GET validator cache (C2).
type CacheConfig struct {
	MaxEntries int // default: 1000
}

// AuthConfig controls the optional API-key gate on the front door
// (ambient, kept from the teacher; empty APIKeys means open access).
type AuthConfig struct {
	Enabled bool
	APIKeys []string
}

// BlocklistConfig seeds the crawler's process-wide domain blocklist,
// initialized once at startup (spec.md §4.11 "Blocklist").
type BlocklistConfig struct {
	Domains   []string
	Whitelist []string
}

// RendererConfig controls the standalone rendering microservice (cmd/renderer),
// the process the Browser engine (C3) talks to over HTTP. Kept separate from
// Config since the renderer and the core service are deployed independently.
type RendererConfig struct {
	Host                 string
	Port                 int
	Headless             bool
	NoSandbox            bool
	BrowserBin           string
	MaxPages             int
	NavigationTimeout    time.Duration
	BlockedResourceTypes []string
	Gatekeeper           GatekeeperConfig
	Log                  LogConfig
}

// LoadRenderer reads the rendering microservice's configuration from the
// environment.
func LoadRenderer() *RendererConfig {
	return &RendererConfig{
		Host:              envOr("RENDERER_HOST", "0.0.0.0"),
		Port:              envIntOr("RENDERER_PORT", 9002),
		Headless:          envBoolOr("RENDERER_HEADLESS", true),
		NoSandbox:         envBoolOr("RENDERER_NO_SANDBOX", false),
		BrowserBin:        os.Getenv("RENDERER_BROWSER_BIN"),
		MaxPages:          envIntOr("RENDERER_MAX_PAGES", 10),
		NavigationTimeout: envDurationOr("RENDERER_NAV_TIMEOUT", 15*time.Second),
		BlockedResourceTypes: envSliceOr("RENDERER_BLOCKED_RESOURCES", []string{
			"Image", "Stylesheet", "Font", "Media",
		}),
		Gatekeeper: GatekeeperConfig{
			RulesPath:           os.Getenv("GATEKEEPER_RULES_PATH"),
			MinHTMLBytes:        envIntOr("MIN_HTML_BYTES", 2048),
			MinVisibleTextChars: envIntOr("MIN_VISIBLE_TEXT_CHARS", 600),
			MinMainContentChars: envIntOr("MIN_MAIN_CONTENT_CHARS", 400),
		},
		Log: LogConfig{
			Level:  envOr("LOGGING_LEVEL", "info"),
			Format: envOr("LOG_FORMAT", "json"),
		},
	}
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("HOST", "0.0.0.0"),
			Port: envIntOr("PORT", 3002),
		},
		Proxy: ProxyConfig{
			Server:          os.Getenv("PROXY_SERVER"),
			Username:        os.Getenv("PROXY_USERNAME"),
			Password:        os.Getenv("PROXY_PASSWORD"),
			AllowLocalHosts: envBoolOr("ALLOW_LOCAL_WEBHOOKS", false),
		},
		Log: LogConfig{
			Level:  envOr("LOGGING_LEVEL", "info"),
			Format: envOr("LOG_FORMAT", "json"),
		},
		Errors: ErrorExposureConfig{
			ExposeDetails: envBoolOr("EXPOSE_ERROR_DETAILS", false),
			ExposeStack:   envBoolOr("EXPOSE_ERROR_STACK", false),
		},
		Gatekeeper: GatekeeperConfig{
			RulesPath:           os.Getenv("GATEKEEPER_RULES_PATH"),
			MinHTMLBytes:        envIntOr("MIN_HTML_BYTES", 2048),
			MinVisibleTextChars: envIntOr("MIN_VISIBLE_TEXT_CHARS", 600),
			MinMainContentChars: envIntOr("MIN_MAIN_CONTENT_CHARS", 400),
		},
		Render: RenderConfig{
			MicroserviceURL: os.Getenv("PLAYWRIGHT_MICROSERVICE_URL"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("RATE_LIMIT_RPS", 5.0),
			Burst:             envIntOr("RATE_LIMIT_BURST", 10),
		},
		Crawl: CrawlConfig{
			MaxConcurrentPages: envIntOr("CRAWL_MAX_CONCURRENT_PAGES", 10),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("CACHE_MAX_ENTRIES", 1000),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("AUTH_ENABLED", false),
			APIKeys: splitCSV(os.Getenv("API_KEYS")),
		},
		Blocklist: BlocklistConfig{
			Domains:   splitCSV(os.Getenv("BLOCKLIST_DOMAINS")),
			Whitelist: splitCSV(os.Getenv("BLOCKLIST_WHITELIST")),
		},
	}
}

func splitCSV(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		return splitCSV(v)
	}
	return fallback
}

