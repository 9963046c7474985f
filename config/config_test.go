package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	c := Load()
	if c.Server.Host != "0.0.0.0" {
		t.Errorf("Host = %q, want 0.0.0.0", c.Server.Host)
	}
	if c.Server.Port != 3002 {
		t.Errorf("Port = %d, want 3002", c.Server.Port)
	}
	if c.Gatekeeper.MinHTMLBytes != 2048 {
		t.Errorf("MinHTMLBytes = %d, want 2048", c.Gatekeeper.MinHTMLBytes)
	}
	if c.Proxy.AllowLocalHosts {
		t.Error("AllowLocalHosts should default to false")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOW_LOCAL_WEBHOOKS", "true")
	t.Setenv("MIN_HTML_BYTES", "4096")

	c := Load()
	if c.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", c.Server.Port)
	}
	if !c.Proxy.AllowLocalHosts {
		t.Error("expected AllowLocalHosts true")
	}
	if c.Gatekeeper.MinHTMLBytes != 4096 {
		t.Errorf("MinHTMLBytes = %d, want 4096", c.Gatekeeper.MinHTMLBytes)
	}
}

func TestLoad_InvalidIntFallsBackToDefault(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	c := Load()
	if c.Server.Port != 3002 {
		t.Errorf("Port = %d, want default 3002 on invalid input", c.Server.Port)
	}
}
