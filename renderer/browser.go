package renderer

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/use-agent/purify-crawl/config"
	"github.com/use-agent/purify-crawl/models"
)

// Browser manages the headless Chrome process and its page pool. It is
// safe for concurrent use. Grounded on the teacher's scraper.Scraper.
type Browser struct {
	browser  *rod.Browser
	pagePool rod.Pool[rod.Page]
	cfg      *config.RendererConfig
}

// Launch starts headless Chrome with the stealth-oriented flag set the
// teacher applies unconditionally, and creates the reusable page pool.
func Launch(cfg *config.RendererConfig) (*Browser, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-ipc-flooding-protection"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-prompt-on-repost"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, err
	}
	slog.Info("renderer: browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, err
	}

	return &Browser{
		browser:  browser,
		pagePool: rod.NewPagePool(cfg.MaxPages),
		cfg:      cfg,
	}, nil
}

// Close drains the page pool and kills the browser process.
func (b *Browser) Close() {
	b.pagePool.Cleanup(func(p *rod.Page) {
		_ = p.Close()
	})
	b.browser.MustClose()
}

// render is the single-page navigation-and-extraction lifecycle:
//
//  1. Acquire page from pool
//  2. DEFER cleanup: about:blank + return to pool
//  3. Stealth injection (before navigation)
//  4. Extra headers + optional certificate-error bypass
//  5. Hijack mount (before navigation)
//  6. Context binding
//  7. Navigate
//  8. Wait for DOM stability
//  9. Extract HTML + status + final URL
func (b *Browser) render(ctx context.Context, req Request) (html, finalURL string, status int, renderStatus models.RenderStatus, pageErr error) {
	page, acquireErr := b.pagePool.Get(func() (*rod.Page, error) {
		return b.browser.Page(proto.TargetCreateTarget{})
	})
	if acquireErr != nil {
		return "", "", 0, models.RenderNavError, acquireErr
	}
	defer func() {
		if navErr := page.Navigate("about:blank"); navErr != nil {
			slog.Warn("renderer: cleanup navigate to about:blank failed", "error", navErr)
		}
		b.pagePool.Put(page)
	}()

	if req.UseStealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("renderer: stealth injection failed, proceeding without", "error", evalErr)
		}
	}

	if len(req.Headers) > 0 {
		_ = proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(req.Headers)}.Call(page)
	}

	if req.SkipTLSVerification {
		_ = proto.SecuritySetIgnoreCertificateErrors{Ignore: true}.Call(page)
	}

	router := setupHijack(page, b.cfg.BlockedResourceTypes)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	timeout := b.cfg.NavigationTimeout
	if req.TimeoutMs > 0 {
		timeout = time.Duration(req.TimeoutMs) * time.Millisecond
	}
	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	p := page.Context(navCtx)

	if navErr := p.Navigate(req.URL); navErr != nil {
		return "", req.URL, 0, classifyNavError(navErr), navErr
	}

	if stableErr := p.WaitDOMStable(300*time.Millisecond, 0.1); stableErr != nil {
		slog.Debug("renderer: WaitDOMStable did not converge, proceeding with current DOM", "error", stableErr)
	}

	if req.WaitAfterLoadMs > 0 {
		select {
		case <-time.After(time.Duration(req.WaitAfterLoadMs) * time.Millisecond):
		case <-navCtx.Done():
		}
	}

	if res, err := p.Eval(`() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch (e) {}
		return 0;
	}`); err == nil {
		status = res.Value.Int()
	}
	if status == 0 {
		status = 200
	}

	rawHTML, htmlErr := p.HTML()
	if htmlErr != nil {
		return "", req.URL, status, classifyNavError(htmlErr), htmlErr
	}

	finalURL = evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = req.URL
	}

	return rawHTML, finalURL, status, models.RenderLoaded, nil
}

func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

func classifyNavError(err error) models.RenderStatus {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return models.RenderTimeout
	}
	if u, ok := err.(*url.Error); ok && errors.Is(u.Err, context.DeadlineExceeded) {
		return models.RenderTimeout
	}
	return models.RenderNavError
}
