package httpx

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestDialResolvedAndGuarded_BlocksLoopback(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	dialer := &net.Dialer{Timeout: time.Second}
	_, err = dialResolvedAndGuarded(context.Background(), dialer, "tcp", ln.Addr().String(), false)
	if err != ErrInsecureConnection {
		t.Errorf("expected ErrInsecureConnection dialing loopback, got %v", err)
	}
}

func TestDialResolvedAndGuarded_AllowLocalPermitsLoopback(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	dialer := &net.Dialer{Timeout: time.Second}
	conn, err := dialResolvedAndGuarded(context.Background(), dialer, "tcp", ln.Addr().String(), true)
	if err != nil {
		t.Fatalf("expected dial to succeed with allowLocal=true, got %v", err)
	}
	conn.Close()
}

func TestNewFabric_BuildsFourDispatchers(t *testing.T) {
	f := NewFabric(false, ProxyConfig{})
	for _, skipTLS := range []bool{false, true} {
		for _, allowCookies := range []bool{false, true} {
			if f.Get(Key{SkipTLS: skipTLS, AllowCookies: allowCookies}) == nil {
				t.Errorf("missing dispatcher for %v/%v", skipTLS, allowCookies)
			}
		}
	}
}
