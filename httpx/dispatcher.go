// Package httpx implements the Secure Dispatcher (C1): four long-lived
// HTTP clients that enforce a Chrome TLS fingerprint, an SSRF guard on
// every resolved address, and optional upstream proxying.
package httpx

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	tls "github.com/refraction-networking/utls"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// Key selects one of the four logical dispatchers.
type Key struct {
	SkipTLS      bool
	AllowCookies bool
}

// ProxyConfig describes an optional upstream proxy.
type ProxyConfig struct {
	URL      string
	Username string
	Password string
}

// Dispatcher multiplexes connections for one {skipTls, allowCookies}
// combination. It is safe for concurrent use and long-lived (spec.md §5
// "shared resources": dispatchers are long-lived, safe for concurrent
// use).
type Dispatcher struct {
	client     *http.Client
	allowLocal bool
}

// Fabric holds the four dispatchers keyed by Key, built once at startup.
type Fabric struct {
	dispatchers map[Key]*Dispatcher
	allowLocal  bool
	proxy       ProxyConfig
}

// NewFabric builds all four dispatchers.
func NewFabric(allowLocal bool, proxy ProxyConfig) *Fabric {
	f := &Fabric{
		dispatchers: make(map[Key]*Dispatcher, 4),
		allowLocal:  allowLocal,
		proxy:       proxy,
	}
	for _, skipTLS := range []bool{false, true} {
		for _, allowCookies := range []bool{false, true} {
			key := Key{SkipTLS: skipTLS, AllowCookies: allowCookies}
			f.dispatchers[key] = newDispatcher(key, allowLocal, proxy)
		}
	}
	return f
}

// Get returns the dispatcher for the given key.
func (f *Fabric) Get(key Key) *Dispatcher {
	return f.dispatchers[key]
}

func newDispatcher(key Key, allowLocal bool, proxy ProxyConfig) *Dispatcher {
	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialTLSChromeGuarded(ctx, network, addr, key.SkipTLS, allowLocal, proxy)
		},
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialGuarded(ctx, network, addr, allowLocal, proxy)
		},
		ForceAttemptHTTP2: false,
	}
	if proxy.URL != "" {
		if proxyURL, err := url.Parse(proxy.URL); err == nil && (proxyURL.Scheme == "http" || proxyURL.Scheme == "https") {
			if proxy.Username != "" {
				proxyURL.User = url.UserPassword(proxy.Username, proxy.Password)
			}
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	client := &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("httpx: too many redirects")
			}
			if !key.AllowCookies {
				req.Header.Del("Cookie")
			}
			return nil
		},
	}
	if !key.AllowCookies {
		client.Jar = nil
	}

	return &Dispatcher{client: client, allowLocal: allowLocal}
}

// Do issues req through this dispatcher's underlying client.
func (d *Dispatcher) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", chromeUA)
	}
	return d.client.Do(req)
}

// dialGuarded performs a plain TCP dial (used for the non-TLS leg of a
// SOCKS5 proxy connection or plain-HTTP requests), guarding the resolved
// address against SSRF ranges.
func dialGuarded(ctx context.Context, network, addr string, allowLocal bool, proxy ProxyConfig) (net.Conn, error) {
	if proxy.URL != "" {
		if proxyURL, err := url.Parse(proxy.URL); err == nil && (proxyURL.Scheme == "socks5" || proxyURL.Scheme == "socks5h") {
			dialer := &net.Dialer{Timeout: 10 * time.Second}
			return dialer.DialContext(ctx, "tcp", proxyURL.Host)
		}
	}

	dialer := &net.Dialer{Timeout: 10 * time.Second}
	return dialResolvedAndGuarded(ctx, dialer, network, addr, allowLocal)
}

// dialTLSChromeGuarded dials, guards, and TLS-handshakes with a Chrome
// ClientHello fingerprint, exactly as the teacher's dialTLSChrome does,
// plus the SSRF address guard applied post-resolution.
func dialTLSChromeGuarded(ctx context.Context, network, addr string, skipVerify, allowLocal bool, proxy ProxyConfig) (net.Conn, error) {
	var rawConn net.Conn
	var err error

	if proxy.URL != "" {
		if proxyURL, perr := url.Parse(proxy.URL); perr == nil && (proxyURL.Scheme == "socks5" || proxyURL.Scheme == "socks5h") {
			dialer := &net.Dialer{Timeout: 10 * time.Second}
			rawConn, err = dialer.DialContext(ctx, "tcp", proxyURL.Host)
			if err != nil {
				return nil, fmt.Errorf("httpx: socks5 dial: %w", err)
			}
		}
	}

	if rawConn == nil {
		dialer := &net.Dialer{Timeout: 10 * time.Second}
		rawConn, err = dialResolvedAndGuarded(ctx, dialer, network, addr, allowLocal)
		if err != nil {
			return nil, err
		}
	}

	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls.UClient(rawConn, &tls.Config{
		ServerName:         host,
		InsecureSkipVerify: skipVerify,
	}, tls.HelloChrome_Auto)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}

// dialResolvedAndGuarded resolves addr, rejects any resolved IP outside the
// public unicast range unless allowLocal is set, and dials the first
// address that passes the guard.
func dialResolvedAndGuarded(ctx context.Context, dialer *net.Dialer, network, addr string, allowLocal bool) (net.Conn, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}

	if ip := net.ParseIP(host); ip != nil {
		if err := guardAddr(ip, allowLocal); err != nil {
			return nil, err
		}
		return dialer.DialContext(ctx, network, addr)
	}

	ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, resolved := range ips {
		if err := guardAddr(resolved.IP, allowLocal); err != nil {
			lastErr = err
			continue
		}
		conn, dialErr := dialer.DialContext(ctx, network, net.JoinHostPort(resolved.IP.String(), port))
		if dialErr != nil {
			lastErr = dialErr
			continue
		}
		return conn, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("httpx: no addresses resolved for %s", host)
	}
	return nil, lastErr
}
