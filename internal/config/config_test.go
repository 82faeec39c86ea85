package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTP.TimeoutSeconds != 10 {
		t.Errorf("http timeout = %d, want 10", cfg.HTTP.TimeoutSeconds)
	}
	if cfg.Enumeration.Workers != 4 {
		t.Errorf("workers = %d, want 4", cfg.Enumeration.Workers)
	}
	if cfg.Enumeration.Fallback != FallbackOnFailure {
		t.Errorf("fallback = %q, want %q", cfg.Enumeration.Fallback, FallbackOnFailure)
	}
	if cfg.DNS.Resolver != "8.8.8.8" {
		t.Errorf("resolver = %q, want 8.8.8.8", cfg.DNS.Resolver)
	}
	if len(cfg.Sources.Enabled) != len(KnownSources) {
		t.Errorf("enabled sources = %v, want %v", cfg.Sources.Enabled, KnownSources)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
sources:
  enabled: [crtsh, alienvault]
enumeration:
  fallback: legacy
  strict_scope: true
dns:
  resolver: "1.1.1.1"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := cfg.Sources.Enabled; len(got) != 2 || got[0] != "crtsh" || got[1] != "alienvault" {
		t.Errorf("enabled = %v, want [crtsh alienvault]", got)
	}
	if cfg.Enumeration.Fallback != FallbackLegacy {
		t.Errorf("fallback = %q, want legacy", cfg.Enumeration.Fallback)
	}
	if !cfg.Enumeration.StrictScope {
		t.Error("strict_scope should be true")
	}
	if cfg.DNS.Resolver != "1.1.1.1" {
		t.Errorf("resolver = %q, want 1.1.1.1", cfg.DNS.Resolver)
	}
	// untouched keys keep their defaults
	if cfg.HTTP.TimeoutSeconds != 10 {
		t.Errorf("http timeout = %d, want default 10", cfg.HTTP.TimeoutSeconds)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		if _, err := Load(writeConfig(t, "http: [")); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("unknown fallback", func(t *testing.T) {
		if _, err := Load(writeConfig(t, "enumeration:\n  fallback: sometimes\n")); err == nil {
			t.Error("expected validation error")
		}
	})

	t.Run("unknown source", func(t *testing.T) {
		if _, err := Load(writeConfig(t, "sources:\n  enabled: [virustotal]\n")); err == nil {
			t.Error("expected validation error")
		}
	})
}

func TestApplyProfile(t *testing.T) {
	cfg := Defaults()
	if err := cfg.ApplyProfile("stealth"); err != nil {
		t.Fatalf("ApplyProfile: %v", err)
	}
	if cfg.Enumeration.Workers != 1 || cfg.HTTP.RateLimit == 0 {
		t.Errorf("stealth profile not applied: workers=%d rate=%v", cfg.Enumeration.Workers, cfg.HTTP.RateLimit)
	}

	if err := cfg.ApplyProfile("ludicrous"); err == nil {
		t.Error("expected error for unknown profile")
	}
}

func TestCreateDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sovax", "config.yaml")

	created, err := CreateDefault(path)
	if err != nil || !created {
		t.Fatalf("CreateDefault = %v, %v; want true, nil", created, err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("generated config should load: %v", err)
	}
	if cfg.Whois.RDAPServer != "https://rdap.org/" {
		t.Errorf("rdap server = %q", cfg.Whois.RDAPServer)
	}

	created, err = CreateDefault(path)
	if err != nil || created {
		t.Errorf("second CreateDefault = %v, %v; want false, nil", created, err)
	}
}
