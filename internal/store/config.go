package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Symbols           []string `yaml:"symbols"`
	RevenuePercentage float64  `yaml:"revenue_percentage"`
	MaxRecords        int      `yaml:"max_records"`
	ForceOpinion      string   `yaml:"force_opinion"`
	Timezone          string   `yaml:"timezone"`
	Concurrency       int      `yaml:"concurrency"`
	Market            struct {
		FinnhubURL  string `yaml:"finnhub_url"`
		AlphaURL    string `yaml:"alpha_url"`
		HistoryDays int    `yaml:"history_days"`
		YahooYears  int    `yaml:"yahoo_years"`
		LosersOnly  bool   `yaml:"losers_only"`
		TopN        int    `yaml:"top_n"`
	} `yaml:"market"`
	Summary struct {
		Enabled        bool   `yaml:"enabled"`
		URLTemplate    string `yaml:"url_template"`
		Render         bool   `yaml:"render"`
		WaitSelector   string `yaml:"wait_selector"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		Selectors      struct {
			Item  string `yaml:"item"`
			Label string `yaml:"label"`
			Count string `yaml:"count"`
		} `yaml:"selectors"`
	} `yaml:"summary"`
	LLM struct {
		Provider    string  `yaml:"provider"`
		BaseURL     string  `yaml:"base_url"`
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float32 `yaml:"temperature"`
		System      string  `yaml:"system"`
	} `yaml:"llm"`
	Ledger struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"ledger"`
	Cache struct {
		Enabled    bool   `yaml:"enabled"`
		Addr       string `yaml:"addr"`
		DB         int    `yaml:"db"`
		TTLMinutes int    `yaml:"ttl_minutes"`
		Namespace  string `yaml:"namespace"`
	} `yaml:"cache"`
	Report struct {
		Dir string `yaml:"dir"`
	} `yaml:"report"`
	Journal struct {
		Dir           string `yaml:"dir"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"journal"`
	Email struct {
		Enabled    bool     `yaml:"enabled"`
		Host       string   `yaml:"host"`
		Port       int      `yaml:"port"`
		Sender     string   `yaml:"sender"`
		Recipients []string `yaml:"recipients"`
		Subject    string   `yaml:"subject"`
	} `yaml:"email"`

	Secrets Secrets `yaml:"-"`
}

// Secrets are read from the environment, never from the YAML file.
type Secrets struct {
	FinnhubAPIKey string
	AlphaAPIKey   string
	OpenAIAPIKey  string
	ClaudeAPIKey  string
	SMTPPassword  string
	RedisPassword string
}

func LoadSecrets() Secrets {
	return Secrets{
		FinnhubAPIKey: os.Getenv("FINNHUB_API_KEY"),
		AlphaAPIKey:   os.Getenv("ALPHA_API_KEY"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		ClaudeAPIKey:  os.Getenv("CLAUDE_API_KEY"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
	}
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func (c *Config) Validate() error {
	if len(c.Symbols) == 0 {
		return errors.New("symbols cannot be empty")
	}
	if c.RevenuePercentage <= 0 {
		return fmt.Errorf("revenue_percentage must be positive, got %.2f", c.RevenuePercentage)
	}
	if c.MaxRecords <= 0 {
		return fmt.Errorf("max_records must be positive, got %d", c.MaxRecords)
	}
	switch c.ForceOpinion {
	case "DEFAULT", "TV", "LLM", "CUSTOM":
	default:
		return fmt.Errorf("invalid force_opinion '%s': must be DEFAULT, TV, LLM or CUSTOM", c.ForceOpinion)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid timezone '%s': %w", c.Timezone, err)
	}
	switch c.LLM.Provider {
	case "OPENAI", "CLAUDE", "NONE":
	default:
		return fmt.Errorf("llm.provider must be 'OPENAI', 'CLAUDE' or 'NONE', got '%s'", c.LLM.Provider)
	}
	if c.Ledger.Driver != "sqlite" && c.Ledger.Driver != "postgres" {
		return fmt.Errorf("ledger.driver must be 'sqlite' or 'postgres', got '%s'", c.Ledger.Driver)
	}
	if c.Summary.Enabled && !strings.Contains(c.Summary.URLTemplate, "{symbol}") {
		return errors.New("summary.url_template must contain {symbol}")
	}
	if c.Email.Enabled && (c.Email.Host == "" || len(c.Email.Recipients) == 0) {
		return errors.New("email.host and email.recipients are required when email is enabled")
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	c.Secrets = LoadSecrets()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	for i, s := range c.Symbols {
		c.Symbols[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	if c.RevenuePercentage == 0 {
		c.RevenuePercentage = 10
	}
	if c.MaxRecords == 0 {
		c.MaxRecords = 100
	}
	c.ForceOpinion = strings.ToUpper(strings.TrimSpace(c.ForceOpinion))
	if c.ForceOpinion == "" {
		c.ForceOpinion = "DEFAULT"
	}
	if c.Timezone == "" {
		c.Timezone = "Europe/Madrid"
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}

	if c.Market.FinnhubURL == "" {
		c.Market.FinnhubURL = "https://finnhub.io/api/v1"
	}
	if c.Market.AlphaURL == "" {
		c.Market.AlphaURL = "https://www.alphavantage.co"
	}
	if c.Market.HistoryDays == 0 {
		c.Market.HistoryDays = 1825
	}
	if c.Market.YahooYears == 0 {
		c.Market.YahooYears = 5
	}

	if c.Summary.URLTemplate == "" {
		c.Summary.URLTemplate = "https://www.tradingview.com/symbols/{symbol}/technicals/"
	}
	if c.Summary.TimeoutSeconds == 0 {
		c.Summary.TimeoutSeconds = 30
	}
	if c.Summary.Selectors.Item == "" {
		c.Summary.Selectors.Item = "[class*='speedometerWrapper'] [class*='counterWrapper']"
	}
	if c.Summary.Selectors.Label == "" {
		c.Summary.Selectors.Label = "[class*='counterTitle']"
	}
	if c.Summary.Selectors.Count == "" {
		c.Summary.Selectors.Count = "[class*='counterNumber']"
	}

	c.LLM.Provider = strings.ToUpper(c.LLM.Provider)
	if c.LLM.Provider == "" {
		c.LLM.Provider = "NONE"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 300
	}

	if c.Ledger.Driver == "" {
		c.Ledger.Driver = "sqlite"
	}
	if c.Ledger.DSN == "" && c.Ledger.Driver == "sqlite" {
		c.Ledger.DSN = "data/ledger.db"
	}

	if c.Cache.TTLMinutes == 0 {
		c.Cache.TTLMinutes = 360
	}
	if c.Cache.Namespace == "" {
		c.Cache.Namespace = "stock-advisor"
	}
	if c.Report.Dir == "" {
		c.Report.Dir = "reports"
	}
	if c.Journal.Dir == "" {
		c.Journal.Dir = "logs"
	}
	if c.Email.Port == 0 {
		c.Email.Port = 587
	}
	if c.Email.Subject == "" {
		c.Email.Subject = "Stock advisor report"
	}
}
