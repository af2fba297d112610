package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
// Precedence: defaults < YAML file < .env < process environment
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Alpaca    AlpacaConfig    `yaml:"alpaca"`
	Google    GoogleConfig    `yaml:"google"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

type ServerConfig struct {
	Port           string        `yaml:"port"`
	Mode           string        `yaml:"mode"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
}

type LoggingConfig struct {
	Level         string `yaml:"level"`
	Format        string `yaml:"format"`
	FileEnabled   bool   `yaml:"file_enabled"`
	FilePath      string `yaml:"file_path"`
	RotationSize  int    `yaml:"rotation_size_mb"`
	RetentionDays int    `yaml:"retention_days"`
}

type AlpacaConfig struct {
	APIKey    string        `yaml:"api_key"`
	APISecret string        `yaml:"api_secret"`
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
}

// GoogleConfig holds identity provider credentials
// Sign-in is disabled when the client ID or secret is empty
type GoogleConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
}

// Enabled reports whether sign-in can be offered
func (g GoogleConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

type DashboardConfig struct {
	Watchlist        []string      `yaml:"watchlist"`
	DefaultSymbol    string        `yaml:"default_symbol"`
	DefaultTimeframe string        `yaml:"default_timeframe"`
	RefreshInterval  time.Duration `yaml:"refresh_interval"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			Mode:           "release",
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   15 * time.Second,
			AllowedOrigins: []string{"http://localhost:3000"},
			SessionTTL:     24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:         "info",
			Format:        "json",
			FilePath:      "logs",
			RotationSize:  50,
			RetentionDays: 7,
		},
		Alpaca: AlpacaConfig{
			BaseURL: "https://data.alpaca.markets/v2",
			Timeout: 10 * time.Second,
		},
		Dashboard: DashboardConfig{
			Watchlist:        []string{"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "META", "TSLA", "JPM"},
			DefaultSymbol:    "AAPL",
			DefaultTimeframe: "1M",
			RefreshInterval:  30 * time.Second,
		},
	}
}

// Load loads configuration from the optional YAML file, .env and environment
func Load() (*Config, error) {
	cfg := Default()

	path := os.Getenv("STOCKPULSE_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	if err := loadYAML(cfg, path); err != nil {
		return nil, err
	}

	// .env is optional; variables already set in the environment win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	applyEnv(cfg)
	return cfg, nil
}

func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Server.Mode = getEnv("GIN_MODE", cfg.Server.Mode)
	cfg.Server.AllowedOrigins = getEnvList("ALLOWED_ORIGINS", cfg.Server.AllowedOrigins)
	cfg.Server.SessionTTL = getEnvDuration("SESSION_TTL", cfg.Server.SessionTTL)

	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)
	cfg.Logging.FileEnabled = getEnvBool("LOG_FILE_ENABLED", cfg.Logging.FileEnabled)
	cfg.Logging.FilePath = getEnv("LOG_FILE_PATH", cfg.Logging.FilePath)

	cfg.Alpaca.APIKey = getEnv("ALPACA_API_KEY", cfg.Alpaca.APIKey)
	cfg.Alpaca.APISecret = getEnv("ALPACA_API_SECRET", cfg.Alpaca.APISecret)
	cfg.Alpaca.BaseURL = strings.TrimRight(getEnv("ALPACA_BASE_URL", cfg.Alpaca.BaseURL), "/")
	cfg.Alpaca.Timeout = getEnvDuration("ALPACA_TIMEOUT", cfg.Alpaca.Timeout)

	cfg.Google.ClientID = getEnv("GOOGLE_CLIENT_ID", cfg.Google.ClientID)
	cfg.Google.ClientSecret = getEnv("GOOGLE_CLIENT_SECRET", cfg.Google.ClientSecret)
	cfg.Google.RedirectURL = getEnv("GOOGLE_REDIRECT_URL", cfg.Google.RedirectURL)

	cfg.Dashboard.Watchlist = normalizeSymbols(getEnvList("WATCHLIST", cfg.Dashboard.Watchlist))
	cfg.Dashboard.DefaultSymbol = strings.ToUpper(getEnv("DEFAULT_SYMBOL", cfg.Dashboard.DefaultSymbol))
	cfg.Dashboard.DefaultTimeframe = getEnv("DEFAULT_TIMEFRAME", cfg.Dashboard.DefaultTimeframe)
	cfg.Dashboard.RefreshInterval = getEnvDuration("REFRESH_INTERVAL", cfg.Dashboard.RefreshInterval)
}

// getEnv gets environment variable with fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "y":
		return true
	case "0", "false", "no", "n":
		return false
	default:
		return fallback
	}
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	// bare numbers are seconds
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	out := splitCSV(v)
	if len(out) == 0 {
		return fallback
	}
	return out
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func normalizeSymbols(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	seen := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
