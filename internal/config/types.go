package config

// Fallback modes for the crt.sh HTML scrape.
const (
	FallbackOnFailure = "on_failure"
	FallbackLegacy    = "legacy"
)

type Config struct {
	HTTP struct {
		TimeoutSeconds int     `yaml:"timeout_seconds"`
		UserAgent      string  `yaml:"user_agent"`
		RateLimit      float64 `yaml:"rate_limit"` // requests per second per host, 0 = unlimited
	} `yaml:"http"`

	Sources struct {
		Enabled        []string `yaml:"enabled"`
		CrtshURL       string   `yaml:"crtsh_url"`
		ThreatCrowdURL string   `yaml:"threatcrowd_url"`
		BufferOverURL  string   `yaml:"bufferover_url"`
		AlienVaultURL  string   `yaml:"alienvault_url"`
	} `yaml:"sources"`

	Enumeration struct {
		Workers     int    `yaml:"workers"`
		Fallback    string `yaml:"fallback"`
		StrictScope bool   `yaml:"strict_scope"`
	} `yaml:"enumeration"`

	DNS struct {
		Resolver       string `yaml:"resolver"`
		SystemResolver bool   `yaml:"system_resolver"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"dns"`

	Whois struct {
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		RDAPServer     string `yaml:"rdap_server"`
	} `yaml:"whois"`

	Wayback struct {
		URL           string   `yaml:"url"`
		ExtraPatterns []string `yaml:"extra_patterns"`
	} `yaml:"wayback"`

	Output struct {
		Format string `yaml:"format"`
		File   string `yaml:"file"`
		Color  bool   `yaml:"color"`
	} `yaml:"output"`

	History struct {
		Enabled    bool   `yaml:"enabled"`
		Path       string `yaml:"path"`
		RetainDays int    `yaml:"retain_days"` // 0 keeps everything
	} `yaml:"history"`

	// Runtime configuration (not from YAML)
	Verbose  bool `yaml:"-"`
	Progress bool `yaml:"-"`
}
