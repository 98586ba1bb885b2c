package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.API.Addr != ":8080" || c.Console.Addr != ":8081" {
		t.Errorf("addrs = %q / %q", c.API.Addr, c.Console.Addr)
	}
	if c.Console.Session.CookieName != "access_token" {
		t.Errorf("cookie name = %q", c.Console.Session.CookieName)
	}
	if c.Console.Session.TTLDays != 7 {
		t.Errorf("session ttl days = %d", c.Console.Session.TTLDays)
	}
	if got := c.AccessTTL(); got != 30*time.Minute {
		t.Errorf("access ttl = %v", got)
	}
	if got := c.LookupTTL(); got != 2*time.Minute {
		t.Errorf("lookup ttl = %v", got)
	}
	if got := c.SessionTTL(); got != 7*24*time.Hour {
		t.Errorf("session ttl = %v", got)
	}
}

func TestLoadMissingFileIsFine(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.App.Env != "dev" {
		t.Errorf("env = %q", c.App.Env)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
app:
  env: staging
api:
  addr: ":9090"
console:
  session:
    ttl_days: 1
    secure: true
jwt:
  issuer: custom
  access_ttl: 15m
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.App.Env != "staging" {
		t.Errorf("env = %q", c.App.Env)
	}
	if c.API.Addr != ":9090" {
		t.Errorf("api addr = %q", c.API.Addr)
	}
	if !c.Console.Session.Secure || c.Console.Session.TTLDays != 1 {
		t.Errorf("session = %+v", c.Console.Session)
	}
	if c.JWT.Issuer != "custom" || c.AccessTTL() != 15*time.Minute {
		t.Errorf("jwt = %q / %v", c.JWT.Issuer, c.AccessTTL())
	}
	// Untouched keys still default.
	if c.Console.Addr != ":8081" {
		t.Errorf("console addr = %q", c.Console.Addr)
	}
}

func TestLoadBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("app: [not: a map"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("want parse error")
	}
}

func TestEnvOverridesWin(t *testing.T) {
	t.Setenv("PARTYDESK_ENV", "prod")
	t.Setenv("PARTYDESK_API_URL", "https://api.internal:8443")
	t.Setenv("PARTYDESK_SESSION_TTL_DAYS", "14")
	t.Setenv("PARTYDESK_SESSION_SECURE", "true")
	t.Setenv("PARTYDESK_JWT_ACCESS_TTL", "1h")

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.App.Env != "prod" {
		t.Errorf("env = %q", c.App.Env)
	}
	if c.API.BaseURL != "https://api.internal:8443" {
		t.Errorf("base url = %q", c.API.BaseURL)
	}
	if c.Console.Session.TTLDays != 14 || !c.Console.Session.Secure {
		t.Errorf("session = %+v", c.Console.Session)
	}
	if got := c.AccessTTL(); got != time.Hour {
		t.Errorf("access ttl = %v", got)
	}
}

func TestDurationFallbacks(t *testing.T) {
	var c Config
	c.JWT.AccessTTL = "bogus"
	c.Console.LookupTTL = "-5m"
	if got := c.AccessTTL(); got != 30*time.Minute {
		t.Errorf("access ttl = %v", got)
	}
	if got := c.LookupTTL(); got != 2*time.Minute {
		t.Errorf("lookup ttl = %v", got)
	}
}
