package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/matheuskafuri/epaper/internal/archive"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

// Section configures how one newspaper section is collected.
type Section struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`          // "html", "rss" or "atom"
	URL     string `yaml:"url,omitempty"` // feeds only; html pages derive from base_url
	Enabled bool   `yaml:"enabled"`
}

type ServerConfig struct {
	Addr   string `yaml:"addr"`
	APIKey string `yaml:"api_key,omitempty"`
	Live   *bool  `yaml:"live,omitempty"`
}

type ScraperConfig struct {
	BaseURL     string `yaml:"base_url"`
	Delay       string `yaml:"delay"`
	Timeout     string `yaml:"timeout"`
	MaxRetries  int    `yaml:"max_retries"`
	Concurrency int    `yaml:"concurrency"`
	Browser     bool   `yaml:"browser"`
	Headless    *bool  `yaml:"headless,omitempty"`
	ProxyURL    string `yaml:"proxy_url,omitempty"`
	YearsBack   int    `yaml:"years_back"`
	Timezone    string `yaml:"timezone"`
}

type Config struct {
	ArchiveURL string        `yaml:"archive_url"`
	LogLevel   string        `yaml:"log_level,omitempty"`
	Retention  string        `yaml:"retention,omitempty"`
	Server     ServerConfig  `yaml:"server"`
	Scraper    ScraperConfig `yaml:"scraper"`
	Sections   []Section     `yaml:"sections"`
}

// APIKey returns the resolved API key (config or env var).
func (c *Config) APIKey() string {
	if c.Server.APIKey != "" {
		return c.Server.APIKey
	}
	return os.Getenv("EPAPER_API_KEY")
}

// ProxyURL returns the scraper proxy (config or env var).
func (c *Config) ProxyURL() string {
	if c.Scraper.ProxyURL != "" {
		return c.Scraper.ProxyURL
	}
	return os.Getenv("EPAPER_PROXY_URL")
}

// Level returns the log level, preferring EPAPER_LOG_LEVEL.
func (c *Config) Level() string {
	if v := os.Getenv("EPAPER_LOG_LEVEL"); v != "" {
		return v
	}
	if c.LogLevel == "" {
		return "info"
	}
	return c.LogLevel
}

// Live reports whether the server collects live data. When false it serves
// the embedded fallback edition.
func (c *Config) Live() bool {
	return c.Server.Live == nil || *c.Server.Live
}

// Headless defaults to true.
func (c *Config) Headless() bool {
	return c.Scraper.Headless == nil || *c.Scraper.Headless
}

func (c *Config) DelayDuration() time.Duration {
	d, err := time.ParseDuration(c.Scraper.Delay)
	if err != nil {
		return 3 * time.Second
	}
	return d
}

func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Scraper.Timeout)
	if err != nil {
		return 90 * time.Second
	}
	return d
}

// RetentionDuration is how long stored archives are kept before pruning.
func (c *Config) RetentionDuration() time.Duration {
	if c.Retention == "" {
		return 30 * 24 * time.Hour
	}
	if d, err := parseDays(c.Retention); err == nil {
		return d
	}
	d, err := time.ParseDuration(c.Retention)
	if err != nil {
		return 30 * 24 * time.Hour
	}
	return d
}

// Location is the scraper's reference timezone, UTC if unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Scraper.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) EnabledSections() []Section {
	var out []Section
	for _, s := range c.Sections {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) SectionNames() []string {
	var names []string
	for _, s := range c.EnabledSections() {
		names = append(names, s.Name)
	}
	return names
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "epaper", "config.yaml")
}

func CachePath() string {
	return filepath.Join(xdg.CacheHome, "epaper", "archives.db")
}

// parseDays accepts the "Nd" day syntax.
func parseDays(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return 0, fmt.Errorf("not a day duration: %q", s)
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Non-fatal: embedded defaults still apply if the write fails.
			_ = writeDefaults(path)
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Decode over the defaults so omitted keys keep their default values.
	cfg := *defaults
	cfg.Sections = nil
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	mergeDefaultSections(&cfg, defaults)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeDefaultSections appends default sections the user file doesn't list.
// User entries win on conflict.
func mergeDefaultSections(cfg, defaults *Config) {
	have := make(map[string]bool, len(cfg.Sections))
	for _, s := range cfg.Sections {
		have[s.Name] = true
	}
	for _, s := range defaults.Sections {
		if !have[s.Name] {
			cfg.Sections = append(cfg.Sections, s)
		}
	}
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	if err := validateURL("archive_url", cfg.ArchiveURL); err != nil {
		return err
	}
	if err := validateURL("scraper.base_url", cfg.Scraper.BaseURL); err != nil {
		return err
	}
	if cfg.Scraper.MaxRetries < 0 {
		return fmt.Errorf("scraper.max_retries must not be negative, got %d", cfg.Scraper.MaxRetries)
	}
	if cfg.Scraper.Concurrency < 1 {
		return fmt.Errorf("scraper.concurrency must be at least 1, got %d", cfg.Scraper.Concurrency)
	}
	if cfg.Scraper.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Scraper.Timezone); err != nil {
			return fmt.Errorf("scraper.timezone: %w", err)
		}
	}

	validTypes := map[string]bool{"html": true, "rss": true, "atom": true}
	for i, s := range cfg.Sections {
		if s.Name == "" {
			return fmt.Errorf("section %d: name is required", i)
		}
		if _, ok := archive.ParseCategory(s.Name); !ok {
			return fmt.Errorf("section %q: unknown category", s.Name)
		}
		if !validTypes[s.Type] {
			return fmt.Errorf("section %q: unknown type %q (valid: html, rss, atom)", s.Name, s.Type)
		}
		if s.Type != "html" {
			if s.URL == "" {
				return fmt.Errorf("section %q: url is required for %s sections", s.Name, s.Type)
			}
			if err := validateURL(fmt.Sprintf("section %q url", s.Name), s.URL); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateURL(field, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", field)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid url: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s: url scheme must be http or https, got %q", field, strings.ToLower(u.Scheme))
	}
	return nil
}
