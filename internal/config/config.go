// Package config loads settings for the server and the CLI.
//
// PRECEDENCE (lowest to highest):
//  1. Built-in defaults (Default)
//  2. A YAML file named by STORYCARDS_CONFIG, if set
//  3. Environment variables, including those loaded from a .env file
//
// godotenv never overrides a variable that is already set in the process
// environment, so a real `export JWT_SECRET=...` always beats the .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the server configuration.
type Config struct {
	Port           int          `yaml:"port"`
	DBPath         string       `yaml:"db_path"`
	JWTSecret      string       `yaml:"jwt_secret"`
	JWTTTL         string       `yaml:"jwt_ttl"` // Go duration, e.g. "24h"
	SecureCookies  bool         `yaml:"secure_cookies"`
	LogLevel       string       `yaml:"log_level"`
	OwnerCacheSize int          `yaml:"owner_cache_size"`
	Gemini         GeminiConfig `yaml:"gemini"`
	GitHub         GitHubConfig `yaml:"github"`
}

// GeminiConfig configures card generation. An empty APIKey disables it.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	// Models is the fallback chain, tried in order. Empty means the
	// generator's built-in list.
	Models []string `yaml:"models"`
	// ModelSource records where Models came from: "default", "file" or
	// "environment".
	ModelSource string `yaml:"-"`
}

// GitHubConfig configures the optional GitHub sign-in.
type GitHubConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	CallbackURL  string `yaml:"callback_url"`
}

// Enabled reports whether both OAuth credentials are present.
func (g GitHubConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

// Where the Gemini model list came from.
const (
	ModelSourceDefault     = "default"
	ModelSourceFile        = "file"
	ModelSourceEnvironment = "environment"
)

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Port:           8080,
		DBPath:         "data/storycards.db",
		JWTTTL:         "24h",
		LogLevel:       "info",
		OwnerCacheSize: 1024,
		Gemini:         GeminiConfig{ModelSource: ModelSourceDefault},
	}
}

// Load builds the server configuration. dotenvPath may point at a missing
// file; that is not an error.
func Load(dotenvPath string) (*Config, error) {
	if err := loadDotenv(dotenvPath); err != nil {
		return nil, err
	}

	cfg := Default()
	if path := os.Getenv("STORYCARDS_CONFIG"); path != "" {
		if err := readYAML(path, &cfg); err != nil {
			return nil, err
		}
		if len(cfg.Gemini.Models) > 0 {
			cfg.Gemini.ModelSource = ModelSourceFile
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if cfg.GitHub.CallbackURL == "" {
		cfg.GitHub.CallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Port)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v) // Atoi = ASCII to Integer
		if err != nil {
			return fmt.Errorf("config: invalid PORT %q: %w", v, err)
		}
		c.Port = port
	}
	if v := os.Getenv("OWNER_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid OWNER_CACHE_SIZE %q: %w", v, err)
		}
		c.OwnerCacheSize = n
	}
	if v := os.Getenv("SECURE_COOKIES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: invalid SECURE_COOKIES %q: %w", v, err)
		}
		c.SecureCookies = b
	}

	setString(&c.DBPath, "DB_PATH")
	setString(&c.JWTSecret, "JWT_SECRET")
	setString(&c.JWTTTL, "JWT_TTL")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.Gemini.APIKey, "GEMINI_API_KEY")
	// GEMINI_MODELS is a comma-separated list; GEMINI_MODEL names one model.
	if models := splitList(os.Getenv("GEMINI_MODELS")); len(models) > 0 {
		c.Gemini.Models = models
		c.Gemini.ModelSource = ModelSourceEnvironment
	} else if v := strings.TrimSpace(os.Getenv("GEMINI_MODEL")); v != "" {
		c.Gemini.Models = []string{v}
		c.Gemini.ModelSource = ModelSourceEnvironment
	}
	setString(&c.GitHub.ClientID, "GITHUB_CLIENT_ID")
	setString(&c.GitHub.ClientSecret, "GITHUB_CLIENT_SECRET")
	setString(&c.GitHub.CallbackURL, "GITHUB_CALLBACK_URL")
	return nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	if c.DBPath == "" {
		return errors.New("config: db_path must not be empty")
	}
	// Every API route needs auth; the server is useless without a signing key.
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required (try: openssl rand -hex 32)")
	}
	if _, err := c.TokenTTL(); err != nil {
		return err
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.OwnerCacheSize <= 0 {
		return fmt.Errorf("config: owner_cache_size must be positive, got %d", c.OwnerCacheSize)
	}
	return nil
}

// TokenTTL parses JWTTTL.
func (c *Config) TokenTTL() (time.Duration, error) {
	d, err := time.ParseDuration(c.JWTTTL)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("config: invalid jwt_ttl %q", c.JWTTTL)
	}
	return d, nil
}

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("config: invalid log level %q", s)
	}
	return level, nil
}

func loadDotenv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: loading %s: %w", path, err)
	}
	return nil
}

func readYAML(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

// splitList splits a comma-separated value, dropping blank entries.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
