package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv    = "COMPETITOR_NEWS_CONFIG"
	openAIAPIKeyEnv  = "OPENAI_API_KEY"
	geminiAPIKeyEnv  = "GEMINI_API_KEY"
	smtpPasswordEnv  = "SMTP_PASSWORD"
	reportToEmailEnv = "REPORT_TO_EMAIL"
)

// Analyzer provider names accepted in configuration.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	HTTP      HTTPConfig      `yaml:"http"`
	Filter    FilterConfig    `yaml:"filter"`
	Analyzer  AnalyzerConfig  `yaml:"analyzer"`
	Report    ReportConfig    `yaml:"report"`
	State     StateConfig     `yaml:"state"`
	Email     EmailConfig     `yaml:"email"`
	Companies []CompanyConfig `yaml:"companies"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// HTTPConfig describes outbound request behavior for scrapers.
type HTTPConfig struct {
	UserAgent      string `yaml:"userAgent"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
	RequestDelayMS int    `yaml:"requestDelayMs"`
}

// Timeout returns the per-request HTTP timeout.
func (h HTTPConfig) Timeout() time.Duration {
	return time.Duration(h.TimeoutSeconds) * time.Second
}

// RequestDelay returns the polite delay applied before each page request.
func (h HTTPConfig) RequestDelay() time.Duration {
	return time.Duration(h.RequestDelayMS) * time.Millisecond
}

// FilterConfig tunes the watermark date filter.
type FilterConfig struct {
	// IncludeUndated keeps announcements without a parseable publish date.
	// They cannot be proven old, so the default is true.
	IncludeUndated      *bool `yaml:"includeUndated"`
	DefaultLookbackDays int   `yaml:"defaultLookbackDays"`
	MaxLookbackDays     int   `yaml:"maxLookbackDays"`
}

// IncludeUndatedItems resolves the pointer with its documented default.
func (f FilterConfig) IncludeUndatedItems() bool {
	if f.IncludeUndated == nil {
		return true
	}
	return *f.IncludeUndated
}

// AnalyzerConfig defines how to contact the completion API.
type AnalyzerConfig struct {
	Provider       string  `yaml:"provider"`
	Model          string  `yaml:"model"`
	APIKey         string  `yaml:"apiKey"`
	Threshold      float64 `yaml:"threshold"`
	MaxAttempts    int     `yaml:"maxAttempts"`
	BackoffSeconds int     `yaml:"backoffSeconds"`
}

// Backoff returns the base delay between analysis retries.
func (a AnalyzerConfig) Backoff() time.Duration {
	return time.Duration(a.BackoffSeconds) * time.Second
}

// ReportConfig locates the generated report files.
type ReportConfig struct {
	Dir string `yaml:"dir"`
}

// StateConfig locates the watermark file.
type StateConfig struct {
	Path string `yaml:"path"`
}

// EmailConfig wires optional SMTP delivery of the report.
type EmailConfig struct {
	SMTPServer string `yaml:"smtpServer"`
	SMTPPort   int    `yaml:"smtpPort"`
	SMTPUser   string `yaml:"smtpUser"`
	SMTPPass   string `yaml:"smtpPass"`
	FromEmail  string `yaml:"fromEmail"`
	ToEmail    string `yaml:"toEmail"`
}

// Enabled reports whether enough SMTP settings are present to send mail.
func (e EmailConfig) Enabled() bool {
	return e.SMTPServer != "" && e.SMTPUser != "" && e.SMTPPass != "" && e.ToEmail != ""
}

// CompanyConfig describes a single monitored company and its scraper strategy.
type CompanyConfig struct {
	Name      string         `yaml:"name"`
	Scraper   string         `yaml:"scraper"`
	Pages     []PageConfig   `yaml:"pages"`
	Selectors SelectorConfig `yaml:"selectors"`
}

// PageConfig holds one concrete listing endpoint (newsroom page or RSS feed).
type PageConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// SelectorConfig is the uniform extraction rule schema for newsroom pages:
// each field maps to a CSS selector evaluated inside the item selection.
type SelectorConfig struct {
	Item        string   `yaml:"item"`
	Title       string   `yaml:"title"`
	Link        string   `yaml:"link"`
	Date        string   `yaml:"date"`
	DateAttr    string   `yaml:"dateAttr"`
	Snippet     string   `yaml:"snippet"`
	DateFormats []string `yaml:"dateFormats"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Companies) == 0 {
		cfg.Companies = defaultConfig().Companies
	}

	return cfg
}

// Validate rejects configurations the run cannot start with. A failure here is
// fatal and must abort before the watermark is touched.
func (c Config) Validate() error {
	switch c.Analyzer.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unknown analyzer provider %q", c.Analyzer.Provider)
	}

	if c.Analyzer.APIKey == "" {
		return fmt.Errorf("analyzer API key is missing (set %s or %s)", openAIAPIKeyEnv, geminiAPIKeyEnv)
	}

	if c.Analyzer.Threshold < 0 || c.Analyzer.Threshold > 1 {
		return fmt.Errorf("analyzer threshold %.2f outside [0,1]", c.Analyzer.Threshold)
	}

	if len(c.Companies) == 0 {
		return fmt.Errorf("no companies configured")
	}

	for _, company := range c.Companies {
		if company.Name == "" {
			return fmt.Errorf("company with empty name")
		}
		if len(company.Pages) == 0 {
			return fmt.Errorf("company %s: no pages configured", company.Name)
		}
		for _, page := range company.Pages {
			if page.URL == "" {
				return fmt.Errorf("company %s: page %s has no URL", company.Name, page.Name)
			}
		}
		if company.Scraper == "newsroom" {
			if company.Selectors.Item == "" || company.Selectors.Title == "" {
				return fmt.Errorf("company %s: newsroom scraper requires item and title selectors", company.Name)
			}
		}
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	switch c.Analyzer.Provider {
	case ProviderGemini:
		if v := os.Getenv(geminiAPIKeyEnv); v != "" {
			c.Analyzer.APIKey = v
		}
	default:
		if v := os.Getenv(openAIAPIKeyEnv); v != "" {
			c.Analyzer.APIKey = v
		}
	}

	if v := os.Getenv(smtpPasswordEnv); v != "" {
		c.Email.SMTPPass = v
	}

	if v := os.Getenv(reportToEmailEnv); v != "" {
		c.Email.ToEmail = v
	}

	if c.Email.FromEmail == "" {
		c.Email.FromEmail = c.Email.SMTPUser
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.HTTP.UserAgent != "" {
		base.HTTP.UserAgent = override.HTTP.UserAgent
	}
	if override.HTTP.TimeoutSeconds > 0 {
		base.HTTP.TimeoutSeconds = override.HTTP.TimeoutSeconds
	}
	if override.HTTP.RequestDelayMS > 0 {
		base.HTTP.RequestDelayMS = override.HTTP.RequestDelayMS
	}

	if override.Filter.IncludeUndated != nil {
		base.Filter.IncludeUndated = override.Filter.IncludeUndated
	}
	if override.Filter.DefaultLookbackDays > 0 {
		base.Filter.DefaultLookbackDays = override.Filter.DefaultLookbackDays
	}
	if override.Filter.MaxLookbackDays > 0 {
		base.Filter.MaxLookbackDays = override.Filter.MaxLookbackDays
	}

	if override.Analyzer.Provider != "" {
		base.Analyzer.Provider = override.Analyzer.Provider
	}
	if override.Analyzer.Model != "" {
		base.Analyzer.Model = override.Analyzer.Model
	}
	if override.Analyzer.APIKey != "" {
		base.Analyzer.APIKey = override.Analyzer.APIKey
	}
	if override.Analyzer.Threshold > 0 {
		base.Analyzer.Threshold = override.Analyzer.Threshold
	}
	if override.Analyzer.MaxAttempts > 0 {
		base.Analyzer.MaxAttempts = override.Analyzer.MaxAttempts
	}
	if override.Analyzer.BackoffSeconds > 0 {
		base.Analyzer.BackoffSeconds = override.Analyzer.BackoffSeconds
	}

	if override.Report.Dir != "" {
		base.Report = override.Report
	}
	if override.State.Path != "" {
		base.State = override.State
	}

	if override.Email.SMTPServer != "" {
		base.Email.SMTPServer = override.Email.SMTPServer
	}
	if override.Email.SMTPPort > 0 {
		base.Email.SMTPPort = override.Email.SMTPPort
	}
	if override.Email.SMTPUser != "" {
		base.Email.SMTPUser = override.Email.SMTPUser
	}
	if override.Email.SMTPPass != "" {
		base.Email.SMTPPass = override.Email.SMTPPass
	}
	if override.Email.FromEmail != "" {
		base.Email.FromEmail = override.Email.FromEmail
	}
	if override.Email.ToEmail != "" {
		base.Email.ToEmail = override.Email.ToEmail
	}

	if len(override.Companies) > 0 {
		base.Companies = override.Companies
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		HTTP: HTTPConfig{
			UserAgent:      "competitor-news/1.0 (+https://github.com/jserafin20190423/competitor-news)",
			TimeoutSeconds: 15,
			RequestDelayMS: 1000,
		},
		Filter: FilterConfig{
			DefaultLookbackDays: 7,
			MaxLookbackDays:     30,
		},
		Analyzer: AnalyzerConfig{
			Provider:       ProviderOpenAI,
			Model:          "gpt-4o-mini",
			Threshold:      0.4,
			MaxAttempts:    3,
			BackoffSeconds: 2,
		},
		Report: ReportConfig{Dir: "reports"},
		State:  StateConfig{Path: "last_run_timestamp.txt"},
		Companies: []CompanyConfig{
			{
				Name:    "Uponor",
				Scraper: "newsroom",
				Pages: []PageConfig{
					{Name: "newsroom", URL: "https://www.uponor.com/en-en/news"},
				},
				Selectors: SelectorConfig{
					Item:     "article, .news-item",
					Title:    "h2, h3",
					Link:     "a",
					Date:     "time",
					DateAttr: "datetime",
					Snippet:  "p",
				},
			},
			{
				Name:    "Georg Fischer",
				Scraper: "newsroom",
				Pages: []PageConfig{
					{Name: "media", URL: "https://www.georgfischer.com/en/media.html"},
				},
				Selectors: SelectorConfig{
					Item:     ".media-item, article",
					Title:    "h3, a",
					Link:     "a",
					Date:     ".date, time",
					DateAttr: "datetime",
					Snippet:  "p",
				},
			},
			{
				Name:    "Viega",
				Scraper: "rss",
				Pages: []PageConfig{
					{Name: "press", URL: "https://www.viega.com/en/meta/press/rss.xml"},
				},
			},
		},
	}
}
