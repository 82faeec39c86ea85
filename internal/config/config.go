package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Source names accepted in sources.enabled.
var KnownSources = []string{"crtsh", "threatcrowd", "bufferover", "alienvault"}

// Defaults returns a configuration that reproduces the stock behaviour with
// no config file present.
func Defaults() *Config {
	config := &Config{}

	config.HTTP.TimeoutSeconds = 10
	config.HTTP.UserAgent = "Mozilla/5.0"

	config.Sources.Enabled = append([]string(nil), KnownSources...)
	config.Sources.CrtshURL = "https://crt.sh/"
	config.Sources.ThreatCrowdURL = "https://www.threatcrowd.org/searchApi/v2/domain/report/"
	config.Sources.BufferOverURL = "https://dns.bufferover.run/dns"
	config.Sources.AlienVaultURL = "https://otx.alienvault.com/api/v1/indicators/domain/"

	config.Enumeration.Workers = 4
	config.Enumeration.Fallback = FallbackOnFailure

	config.DNS.Resolver = "8.8.8.8"
	config.DNS.TimeoutSeconds = 5

	config.Whois.TimeoutSeconds = 10
	config.Whois.RDAPServer = "https://rdap.org/"

	config.Wayback.URL = "http://web.archive.org/cdx/search/cdx"

	config.Output.Format = "json"
	config.Output.Color = true

	if home, err := os.UserHomeDir(); err == nil {
		config.History.Path = filepath.Join(home, ".sovax", "history.db")
	}

	return config
}

func Load(configPath string) (*Config, error) {
	config := Defaults()

	if configPath == "" {
		return config, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return config, nil
}

// Validate rejects values the rest of the program cannot work with.
func (c *Config) Validate() error {
	switch c.Enumeration.Fallback {
	case FallbackOnFailure, FallbackLegacy:
	default:
		return fmt.Errorf("enumeration.fallback must be %q or %q, got %q",
			FallbackOnFailure, FallbackLegacy, c.Enumeration.Fallback)
	}

	if c.Enumeration.Workers < 1 {
		return fmt.Errorf("enumeration.workers must be at least 1")
	}

	for _, name := range c.Sources.Enabled {
		if !isKnownSource(name) {
			return fmt.Errorf("unknown source %q", name)
		}
	}

	switch c.Output.Format {
	case "json", "txt":
	default:
		return fmt.Errorf("unsupported output format: %s", c.Output.Format)
	}

	if c.History.RetainDays < 0 {
		return fmt.Errorf("history.retain_days cannot be negative")
	}

	if c.HTTP.TimeoutSeconds <= 0 || c.DNS.TimeoutSeconds <= 0 || c.Whois.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}

	return nil
}

func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

func (c *Config) DNSTimeout() time.Duration {
	return time.Duration(c.DNS.TimeoutSeconds) * time.Second
}

func (c *Config) WhoisTimeout() time.Duration {
	return time.Duration(c.Whois.TimeoutSeconds) * time.Second
}

// ApplyProfile adjusts request pacing for one of the named profiles. The rate
// limit covers every outbound HTTP request, RDAP included.
func (c *Config) ApplyProfile(name string) error {
	switch name {
	case "stealth":
		c.HTTP.RateLimit = 0.5
		c.HTTP.TimeoutSeconds = 20
		c.Enumeration.Workers = 1
	case "normal":
		c.HTTP.RateLimit = 5
	case "aggressive":
		c.HTTP.RateLimit = 0
		c.Enumeration.Workers = len(c.Sources.Enabled)
		if c.Enumeration.Workers < 1 {
			c.Enumeration.Workers = 1
		}
	default:
		return fmt.Errorf("unknown profile %q (stealth, normal, aggressive)", name)
	}
	return nil
}

func isKnownSource(name string) bool {
	for _, known := range KnownSources {
		if known == name {
			return true
		}
	}
	return false
}

// DefaultPath is where CreateDefault writes the starter config.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".config", "sovax", "config.yaml"), nil
}

// CreateDefault writes a commented starter config to path. An existing file
// is left untouched and reported as created=false.
func CreateDefault(configPath string) (created bool, err error) {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		return false, nil
	}

	defaultConfig := `http:
  timeout_seconds: 10
  user_agent: "Mozilla/5.0"
  rate_limit: 0  # requests per second per host, 0 = unlimited

sources:
  enabled: [crtsh, threatcrowd, bufferover, alienvault]

enumeration:
  workers: 4
  fallback: on_failure  # legacy: scrape HTML on every run
  strict_scope: false

dns:
  resolver: "8.8.8.8"
  system_resolver: false
  timeout_seconds: 5

whois:
  timeout_seconds: 10
  rdap_server: "https://rdap.org/"

wayback:
  url: "http://web.archive.org/cdx/search/cdx"
  extra_patterns: []

output:
  format: json
  file: ""
  color: true

history:
  enabled: false
  retain_days: 0
`

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0644); err != nil {
		return false, fmt.Errorf("failed to write default config: %w", err)
	}

	return true, nil
}
