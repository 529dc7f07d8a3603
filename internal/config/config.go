package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"

	configPathEnv      = "NEWS_DIGEST_CONFIG"
	openRouterKeyEnv   = "OPENROUTER_API_KEY"
	openRouterModelEnv = "OPENROUTER_MODEL"
	maxPerSourceEnv    = "MAX_ARTICLES_PER_SOURCE"
	emailSenderEnv     = "EMAIL_SENDER"
	emailPasswordEnv   = "EMAIL_PASSWORD"
	emailReceiverEnv   = "EMAIL_RECEIVER"
	emailSMTPServerEnv = "EMAIL_SMTP_SERVER"
	emailSMTPPortEnv   = "EMAIL_SMTP_PORT"
	emailSubjectEnv    = "EMAIL_SUBJECT"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Fetch     FetchConfig     `yaml:"fetch"`
	LLM       LLMConfig       `yaml:"llm"`
	Mail      MailConfig      `yaml:"mail"`
	Sources   []SourceConfig  `yaml:"sources"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SchedulerConfig defines when digest runs execute.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	RunOnStart     bool           `yaml:"runOnStart"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// FetchConfig bounds the HTTP crawling stages.
type FetchConfig struct {
	TimeoutSeconds       int    `yaml:"timeoutSeconds"`
	MaxArticlesPerSource int    `yaml:"maxArticlesPerSource"`
	MinContentLength     int    `yaml:"minContentLength"`
	Concurrency          int    `yaml:"concurrency"`
	UserAgent            string `yaml:"userAgent"`
}

// Timeout returns the per-request bound for fetch and extract calls.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// LLMConfig defines how to contact the summarization endpoint.
type LLMConfig struct {
	Endpoint       string `yaml:"endpoint"`
	Model          string `yaml:"model"`
	APIKey         string `yaml:"apiKey"`
	SystemPrompt   string `yaml:"systemPrompt"`
	MaxInputChars  int    `yaml:"maxInputChars"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// Timeout returns the per-request bound for summarization calls.
func (l LLMConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutSeconds) * time.Second
}

// MailConfig wires the outbound SMTP channel for the digest.
type MailConfig struct {
	SMTPHost string `yaml:"smtpHost"`
	SMTPPort int    `yaml:"smtpPort"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	Subject  string `yaml:"subject"`
}

// SourceConfig describes a single news source front page.
type SourceConfig struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Strategy string `yaml:"strategy"`
	Pattern  string `yaml:"pattern"`
}

// Load reads YAML configuration (if present), applies environment overrides,
// and validates the result. Malformed configuration is fatal to startup.
func Load() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()
	cfg.deriveSourceNames()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(openRouterKeyEnv); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv(openRouterModelEnv); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv(maxPerSourceEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Fetch.MaxArticlesPerSource = n
		}
	}

	if v := os.Getenv(emailSenderEnv); v != "" {
		c.Mail.Username = v
		c.Mail.From = v
	}
	if v := os.Getenv(emailPasswordEnv); v != "" {
		c.Mail.Password = v
	}
	if v := os.Getenv(emailReceiverEnv); v != "" {
		c.Mail.To = v
	}
	if v := os.Getenv(emailSMTPServerEnv); v != "" {
		c.Mail.SMTPHost = v
	}
	if v := os.Getenv(emailSMTPPortEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Mail.SMTPPort = n
		}
	}
	if v := os.Getenv(emailSubjectEnv); v != "" {
		c.Mail.Subject = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

// deriveSourceNames fills empty source names from the URL host, dropping any
// leading www. prefix.
func (c *Config) deriveSourceNames() {
	for i := range c.Sources {
		if c.Sources[i].Name != "" {
			continue
		}
		parsed, err := url.Parse(c.Sources[i].URL)
		if err != nil || parsed.Host == "" {
			continue
		}
		c.Sources[i].Name = strings.TrimPrefix(parsed.Host, "www.")
	}
}

func (c *Config) validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("config: at least one source is required")
	}
	for _, src := range c.Sources {
		parsed, err := url.Parse(src.URL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("config: source %q has invalid url %q", src.Name, src.URL)
		}
	}
	if c.Fetch.MaxArticlesPerSource <= 0 {
		return fmt.Errorf("config: fetch.maxArticlesPerSource must be positive")
	}
	if c.Fetch.Concurrency <= 0 {
		return fmt.Errorf("config: fetch.concurrency must be positive")
	}
	if c.Mail.SMTPPort <= 0 {
		return fmt.Errorf("config: mail.smtpPort must be positive")
	}
	return nil
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}
	if override.Scheduler.RunOnStart {
		base.Scheduler.RunOnStart = true
	}

	if override.Fetch.TimeoutSeconds > 0 {
		base.Fetch.TimeoutSeconds = override.Fetch.TimeoutSeconds
	}
	if override.Fetch.MaxArticlesPerSource > 0 {
		base.Fetch.MaxArticlesPerSource = override.Fetch.MaxArticlesPerSource
	}
	if override.Fetch.MinContentLength > 0 {
		base.Fetch.MinContentLength = override.Fetch.MinContentLength
	}
	if override.Fetch.Concurrency > 0 {
		base.Fetch.Concurrency = override.Fetch.Concurrency
	}
	if override.Fetch.UserAgent != "" {
		base.Fetch.UserAgent = override.Fetch.UserAgent
	}

	if override.LLM.Endpoint != "" {
		base.LLM.Endpoint = override.LLM.Endpoint
	}
	if override.LLM.Model != "" {
		base.LLM.Model = override.LLM.Model
	}
	if override.LLM.APIKey != "" {
		base.LLM.APIKey = override.LLM.APIKey
	}
	if override.LLM.SystemPrompt != "" {
		base.LLM.SystemPrompt = override.LLM.SystemPrompt
	}
	if override.LLM.MaxInputChars > 0 {
		base.LLM.MaxInputChars = override.LLM.MaxInputChars
	}
	if override.LLM.TimeoutSeconds > 0 {
		base.LLM.TimeoutSeconds = override.LLM.TimeoutSeconds
	}

	if override.Mail.SMTPHost != "" {
		base.Mail.SMTPHost = override.Mail.SMTPHost
	}
	if override.Mail.SMTPPort > 0 {
		base.Mail.SMTPPort = override.Mail.SMTPPort
	}
	if override.Mail.Username != "" {
		base.Mail.Username = override.Mail.Username
	}
	if override.Mail.Password != "" {
		base.Mail.Password = override.Mail.Password
	}
	if override.Mail.From != "" {
		base.Mail.From = override.Mail.From
	}
	if override.Mail.To != "" {
		base.Mail.To = override.Mail.To
	}
	if override.Mail.Subject != "" {
		base.Mail.Subject = override.Mail.Subject
	}

	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:   LoggingConfig{Level: "info"},
		Scheduler: SchedulerConfig{Timezone: defaultTimezone, location: tz},
		Fetch: FetchConfig{
			TimeoutSeconds:       10,
			MaxArticlesPerSource: 2,
			MinContentLength:     50,
			Concurrency:          8,
			UserAgent:            "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		},
		LLM: LLMConfig{
			Endpoint:       "https://openrouter.ai/api/v1/chat/completions",
			Model:          "deepseek/deepseek-chat-v3-0324:free",
			SystemPrompt:   "You are a helpful assistant that summarizes news articles.",
			MaxInputChars:  4000,
			TimeoutSeconds: 60,
		},
		Mail: MailConfig{
			SMTPHost: "smtp.gmail.com",
			SMTPPort: 587,
			Subject:  "Daily News Summary - %s",
		},
		Sources: []SourceConfig{
			{URL: "https://www.theverge.com"},
			{URL: "https://techcrunch.com"},
			{URL: "https://news.ycombinator.com"},
			{URL: "https://www.wired.com"},
		},
	}
}
