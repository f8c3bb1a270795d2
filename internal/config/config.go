// Package config resolves redditview settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvAPIURL       = "REDDITVIEW_API_URL"
	EnvUserAgent    = "REDDITVIEW_USER_AGENT"
	EnvPageSize     = "REDDITVIEW_PAGE_SIZE"
	EnvTimeout      = "REDDITVIEW_TIMEOUT"
	EnvRateLimit    = "REDDITVIEW_RATE_LIMIT"
	EnvClientID     = "REDDITVIEW_CLIENT_ID"
	EnvClientSecret = "REDDITVIEW_CLIENT_SECRET"
	EnvConfigDir    = "REDDITVIEW_CONFIG_DIR"
	EnvLogLevel     = "REDDITVIEW_LOG_LEVEL"
)

// Config holds the resolved settings. Empty APIURL and UserAgent mean the
// client defaults apply.
type Config struct {
	APIURL       string
	UserAgent    string
	PageSize     int
	Timeout      time.Duration
	RateLimit    float64 // requests per second, 0 disables pacing
	ClientID     string
	ClientSecret string
	ConfigDir    string
	LogLevel     string
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		PageSize:  25,
		Timeout:   15 * time.Second,
		RateLimit: 1,
		ConfigDir: defaultConfigDir(),
		LogLevel:  "warn",
	}
}

// Load reads an optional .env file from the working directory, then applies
// environment overrides to the defaults. Variables already set in the
// environment win over the file.
func Load() (*Config, error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	cfg := Default()

	cfg.APIURL = os.Getenv(EnvAPIURL)
	cfg.UserAgent = os.Getenv(EnvUserAgent)
	cfg.ClientID = os.Getenv(EnvClientID)
	cfg.ClientSecret = os.Getenv(EnvClientSecret)
	cfg.ConfigDir = getEnvOrDefault(EnvConfigDir, cfg.ConfigDir)
	cfg.LogLevel = getEnvOrDefault(EnvLogLevel, cfg.LogLevel)

	if v := os.Getenv(EnvPageSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			return nil, fmt.Errorf("%s must be an integer between 1 and 100, got %q", EnvPageSize, v)
		}
		cfg.PageSize = n
	}

	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := parseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%s must be a positive duration such as 15s, got %q", EnvTimeout, v)
		}
		cfg.Timeout = d
	}

	if v := os.Getenv(EnvRateLimit); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r < 0 {
			return nil, fmt.Errorf("%s must be a non-negative number of requests per second, got %q", EnvRateLimit, v)
		}
		cfg.RateLimit = r
	}

	return cfg, nil
}

// HasCredentials reports whether an application-only OAuth token can be requested.
func (c *Config) HasCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Entry is one printable setting.
type Entry struct {
	Key   string
	Value string
}

// Entries lists the settings in a stable order with secrets masked.
func (c *Config) Entries() []Entry {
	return []Entry{
		{EnvAPIURL, orDefault(c.APIURL)},
		{EnvUserAgent, orDefault(c.UserAgent)},
		{EnvPageSize, strconv.Itoa(c.PageSize)},
		{EnvTimeout, c.Timeout.String()},
		{EnvRateLimit, strconv.FormatFloat(c.RateLimit, 'g', -1, 64)},
		{EnvClientID, orUnset(c.ClientID)},
		{EnvClientSecret, mask(c.ClientSecret)},
		{EnvConfigDir, c.ConfigDir},
		{EnvLogLevel, c.LogLevel},
	}
}

func defaultConfigDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "redditview")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDuration accepts Go durations and bare seconds.
func parseDuration(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func orDefault(v string) string {
	if v == "" {
		return "(default)"
	}
	return v
}

func orUnset(v string) string {
	if v == "" {
		return "(unset)"
	}
	return v
}

func mask(v string) string {
	if v == "" {
		return "(unset)"
	}
	return "********"
}
