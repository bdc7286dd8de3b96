// Package config provides application-wide configuration.
// Sources, lowest to highest precedence: built-in defaults, the YAML file named by
// SEEKASSIST_CONFIG, a .env file in the working directory, process environment.
// All fields have safe defaults so the binary runs locally without any setup.
//
// The API key is not part of Config; credential.Manager owns it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for seekassist.
type Config struct {
	// LLM
	Provider string        // SEEKASSIST_PROVIDER, default: "deepseek"
	BaseURL  string        // SEEKASSIST_BASE_URL, default: "https://api.deepseek.com/v1"
	Model    string        // SEEKASSIST_MODEL, default: "deepseek-chat"
	Timeout  time.Duration // SEEKASSIST_TIMEOUT, default: 30s

	// Credential storage
	DBPath      string // SEEKASSIST_DB_PATH, default: ~/.seekassist/seekassist.db
	Secret      string // SEEKASSIST_SECRET: passphrase sealing the stored key; empty stores it unsealed
	UseKeyring  bool   // SEEKASSIST_KEYRING, default: false
	EnvAPIKey   string // DEEPSEEK_API_KEY: overrides the stored key when set
	KeyringName string // keyring service name, file only

	// Panel API
	Addr string // SEEKASSIST_ADDR, default: "127.0.0.1:8765"
}

const (
	envKeyConfigFile = "SEEKASSIST_CONFIG"
	envKeyProvider   = "SEEKASSIST_PROVIDER"
	envKeyBaseURL    = "SEEKASSIST_BASE_URL"
	envKeyModel      = "SEEKASSIST_MODEL"
	envKeyTimeout    = "SEEKASSIST_TIMEOUT"
	envKeyDBPath     = "SEEKASSIST_DB_PATH"
	envKeySecret     = "SEEKASSIST_SECRET"
	envKeyKeyring    = "SEEKASSIST_KEYRING"
	envKeyAPIKey     = "DEEPSEEK_API_KEY"
	envKeyAddr       = "SEEKASSIST_ADDR"
)

const (
	DefaultProvider    = "deepseek"
	DefaultBaseURL     = "https://api.deepseek.com/v1"
	DefaultModel       = "deepseek-chat"
	DefaultTimeout     = 30 * time.Second
	DefaultAddr        = "127.0.0.1:8765"
	DefaultKeyringName = "seekassist"
)

// fileConfig mirrors the YAML file layout.
type fileConfig struct {
	LLM struct {
		Provider string `yaml:"provider"`
		BaseURL  string `yaml:"base_url"`
		Model    string `yaml:"model"`
		Timeout  string `yaml:"timeout"`
	} `yaml:"llm"`
	Storage struct {
		DBPath  string `yaml:"db_path"`
		Keyring *bool  `yaml:"keyring"`
		Service string `yaml:"keyring_service"`
	} `yaml:"storage"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
}

// Load reads configuration, applying defaults for missing values.
// A missing .env or YAML file is not an error; a malformed one is.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv(envKeyConfigFile); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.overlayEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		Provider:    DefaultProvider,
		BaseURL:     DefaultBaseURL,
		Model:       DefaultModel,
		Timeout:     DefaultTimeout,
		DBPath:      defaultDBPath(),
		KeyringName: DefaultKeyringName,
		Addr:        DefaultAddr,
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "seekassist.db"
	}
	return filepath.Join(home, ".seekassist", "seekassist.db")
}

func (c *Config) overlayFile(path string) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	setIf(&c.Provider, fc.LLM.Provider)
	setIf(&c.BaseURL, fc.LLM.BaseURL)
	setIf(&c.Model, fc.LLM.Model)
	setIf(&c.DBPath, fc.Storage.DBPath)
	setIf(&c.KeyringName, fc.Storage.Service)
	setIf(&c.Addr, fc.Server.Addr)
	if fc.Storage.Keyring != nil {
		c.UseKeyring = *fc.Storage.Keyring
	}
	if fc.LLM.Timeout != "" {
		d, err := parseTimeout(fc.LLM.Timeout)
		if err != nil {
			return fmt.Errorf("config: %s: llm.timeout: %w", path, err)
		}
		c.Timeout = d
	}
	return nil
}

func (c *Config) overlayEnv() error {
	c.Provider = strings.ToLower(envOr(envKeyProvider, c.Provider))
	c.BaseURL = strings.TrimRight(envOr(envKeyBaseURL, c.BaseURL), "/")
	c.Model = envOr(envKeyModel, c.Model)
	c.DBPath = envOr(envKeyDBPath, c.DBPath)
	c.Secret = envOr(envKeySecret, c.Secret)
	c.EnvAPIKey = strings.TrimSpace(os.Getenv(envKeyAPIKey))
	c.Addr = envOr(envKeyAddr, c.Addr)

	if v := os.Getenv(envKeyKeyring); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s=%q: %w", envKeyKeyring, v, err)
		}
		c.UseKeyring = b
	}
	if v := os.Getenv(envKeyTimeout); v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", envKeyTimeout, err)
		}
		c.Timeout = d
	}
	return nil
}

// parseTimeout accepts a Go duration ("45s") or a bare number of seconds ("45").
func parseTimeout(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		v = strconv.Itoa(secs) + "s"
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %s", d)
	}
	return d, nil
}

// envOr returns the value of the environment variable key, or fallback if not set.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
