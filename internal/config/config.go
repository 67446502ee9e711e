package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is used when neither a flag nor CONFIG_PATH names a file.
const DefaultConfigPath = "configs/config.yaml"

// Market-data providers.
const (
	MarketAlphaVantage = "alphavantage"
	MarketStatic       = "static"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Host           string   `yaml:"host"`
		Port           int      `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
		Dir   string `yaml:"dir"`
	} `yaml:"log"`
	LLM struct {
		Provider       string `yaml:"provider"`
		APIKey         string `yaml:"api_key"`
		Model          string `yaml:"model"`
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"llm"`
	MarketData struct {
		Provider       string `yaml:"provider"`
		APIKey         string `yaml:"api_key"`
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		Workers        int    `yaml:"workers"`
	} `yaml:"market_data"`
	Journal struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"journal"`
	Tracing struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"tracing"`
}

// ResolvePath picks the config file: explicit path, then CONFIG_PATH, then the default.
func ResolvePath(explicit string) string {
	if p := strings.TrimSpace(explicit); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv("CONFIG_PATH")); p != "" {
		return p
	}
	return DefaultConfigPath
}

// LoadDotEnv loads .env files into the environment without overriding existing variables.
// Missing files are ignored.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		_ = godotenv.Load(f)
	}
}

// Load reads config from a YAML file, then applies environment overrides and defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Server.Host, "STOCKGENIUS_HOST")
	setInt(&c.Server.Port, "STOCKGENIUS_PORT")
	if v := os.Getenv("STOCKGENIUS_ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	setString(&c.Log.Level, "STOCKGENIUS_LOG_LEVEL")
	setString(&c.Log.Dir, "STOCKGENIUS_LOG_DIR")

	setString(&c.LLM.Provider, "STOCKGENIUS_LLM_PROVIDER")
	setString(&c.LLM.Model, "STOCKGENIUS_LLM_MODEL")
	setString(&c.LLM.BaseURL, "STOCKGENIUS_LLM_BASE_URL")
	setInt(&c.LLM.TimeoutSeconds, "STOCKGENIUS_LLM_TIMEOUT_SECONDS")

	setString(&c.MarketData.Provider, "STOCKGENIUS_MARKET_PROVIDER")
	setString(&c.MarketData.BaseURL, "STOCKGENIUS_MARKET_BASE_URL")
	setString(&c.MarketData.APIKey, "ALPHAVANTAGE_API_KEY")
	setInt(&c.MarketData.TimeoutSeconds, "STOCKGENIUS_MARKET_TIMEOUT_SECONDS")
	setInt(&c.MarketData.Workers, "STOCKGENIUS_FETCH_WORKERS")

	if v := os.Getenv("STOCKGENIUS_JOURNAL_PATH"); v != "" {
		c.Journal.Path = v
		c.Journal.Enabled = true
	}
	setBool(&c.Journal.Enabled, "STOCKGENIUS_JOURNAL_ENABLED")
	setBool(&c.Tracing.Enabled, "STOCKGENIUS_TRACING_ENABLED")
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	setString(&c.LLM.APIKey, providerKeyEnv(c.LLM.Provider))
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = 120
	}
	c.MarketData.Provider = strings.ToLower(strings.TrimSpace(c.MarketData.Provider))
	if c.MarketData.Provider == "" {
		c.MarketData.Provider = MarketAlphaVantage
	}
	if c.MarketData.TimeoutSeconds == 0 {
		c.MarketData.TimeoutSeconds = 10
	}
	if c.MarketData.Workers == 0 {
		c.MarketData.Workers = 4
	}
}

// Validate checks that configured values are usable.
func (c *Config) Validate() error {
	// Port 0 binds an ephemeral port.
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535")
	}
	switch c.LLM.Provider {
	case "openai", "anthropic", "gemini":
	default:
		return fmt.Errorf("llm.provider must be openai, anthropic or gemini, got %q", c.LLM.Provider)
	}
	switch c.MarketData.Provider {
	case MarketAlphaVantage:
		if c.MarketData.APIKey == "" {
			return fmt.Errorf("market_data.api_key is required for provider %s", MarketAlphaVantage)
		}
	case MarketStatic:
	default:
		return fmt.Errorf("market_data.provider must be %s or %s, got %q", MarketAlphaVantage, MarketStatic, c.MarketData.Provider)
	}
	if c.LLM.TimeoutSeconds < 0 || c.MarketData.TimeoutSeconds < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.MarketData.Workers < 0 {
		return fmt.Errorf("market_data.workers must not be negative")
	}
	return nil
}

// LLMTimeout is the per-call deadline for LLM requests.
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

// MarketTimeout is the per-call deadline for market-data requests.
func (c *Config) MarketTimeout() time.Duration {
	return time.Duration(c.MarketData.TimeoutSeconds) * time.Second
}

// LLMEnabled reports whether an LLM provider can be constructed.
func (c *Config) LLMEnabled() bool {
	return strings.TrimSpace(c.LLM.APIKey) != ""
}

func providerKeyEnv(provider string) string {
	switch provider {
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "gemini":
		return "GEMINI_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*dst = i
		}
	}
}

func setBool(dst *bool, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
