package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port, got %q", cfg.Server.Port)
	}
	if cfg.Poller.PollWait != 10*time.Second {
		t.Errorf("expected default poll wait, got %v", cfg.Poller.PollWait)
	}
	if cfg.Poller.DedupWindow != 500 {
		t.Errorf("expected default dedup window, got %d", cfg.Poller.DedupWindow)
	}
}

func TestLoadFromYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "botfactory.yaml")
	data := []byte("server:\n  port: \"9090\"\npoller:\n  retry_delay: 2s\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("expected yaml port, got %q", cfg.Server.Port)
	}
	if cfg.Poller.RetryDelay != 2*time.Second {
		t.Errorf("expected yaml retry delay, got %v", cfg.Poller.RetryDelay)
	}
	// Untouched fields keep defaults.
	if cfg.Reply.MaxLength != 4000 {
		t.Errorf("expected default reply cap, got %d", cfg.Reply.MaxLength)
	}
}

func TestEnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "botfactory.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: \"9090\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BOTFACTORY_PORT", "7070")
	t.Setenv("BOTFACTORY_POLL_WAIT", "3s")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Errorf("expected env port, got %q", cfg.Server.Port)
	}
	if cfg.Poller.PollWait != 3*time.Second {
		t.Errorf("expected env poll wait, got %v", cfg.Poller.PollWait)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.Server.Port = "" }},
		{"empty dsn", func(c *Config) { c.Postgres.DSN = "" }},
		{"zero poll wait", func(c *Config) { c.Poller.PollWait = 0 }},
		{"zero dedup window", func(c *Config) { c.Poller.DedupWindow = 0 }},
		{"tiny reply cap", func(c *Config) { c.Reply.MaxLength = 5 }},
		{"empty token secret", func(c *Config) { c.Secrets.TokenSecret = "" }},
	}
	for _, tc := range cases {
		cfg := Defaults()
		tc.mutate(&cfg)
		if err := validate(&cfg); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}
