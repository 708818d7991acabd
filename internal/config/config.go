package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"quotes-cli/internal/features"
)

const (
	DefaultBaseURL    = "http://localhost:3000"
	DefaultStreamPath = "/sse"
	DefaultTitle      = "Here's some unnecessary quotes for you to read..."
)

// DotEnvPath is the env file read on top of the TOML config. A missing file is
// not an error.
var DotEnvPath = ".env"

// Config is the persisted config file schema.
type Config struct {
	BaseURL    string          `toml:"base_url"`
	StreamPath string          `toml:"stream_path"`
	Title      string          `toml:"title"`
	LogLevel   string          `toml:"log_level,omitempty"`
	Features   map[string]bool `toml:"features,omitempty"`
	Source     string          `toml:"-"`
}

// environment is decoded from the process env after the .env file is loaded.
type environment struct {
	BackendHost string `env:"QUOTES_BACKEND_HOST"`
	// ViteBackendHost 兼容前端 .env 中的 VITE_BACKEND_HOST，仅在未设置 QUOTES_BACKEND_HOST 时生效。
	ViteBackendHost string `env:"VITE_BACKEND_HOST"`
	StreamPath      string `env:"QUOTES_STREAM_PATH"`
	Title           string `env:"QUOTES_TITLE"`
	LogLevel        string `env:"QUOTES_LOG_LEVEL"`
}

func Default() Config {
	return Config{
		BaseURL:    DefaultBaseURL,
		StreamPath: DefaultStreamPath,
		Title:      DefaultTitle,
	}
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".quotes", "config.toml")
}

// Load resolves defaults, the TOML file at path, the .env file and finally
// the process environment.
func Load(path string) (Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := loadDotEnv(DotEnvPath); err != nil {
		return cfg, err
	}
	if err := applyEnvironment(&cfg); err != nil {
		return cfg, err
	}
	return cfg.normalized(), nil
}

// LoadFile reads only defaults and the TOML file, which is what Save should
// write back.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, errors.New("config path is empty and $HOME is not set")
	}
	cfg.Source = path

	content, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := toml.Unmarshal(content, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return cfg.normalized(), nil
}

func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func applyEnvironment(cfg *Config) error {
	var e environment
	if _, err := env.UnmarshalFromEnviron(&e); err != nil {
		return fmt.Errorf("decode environment: %w", err)
	}
	if v := strings.TrimSpace(e.BackendHost); v != "" {
		cfg.BaseURL = v
	} else if v := strings.TrimSpace(e.ViteBackendHost); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(e.StreamPath); v != "" {
		cfg.StreamPath = v
	}
	if v := strings.TrimSpace(e.Title); v != "" {
		cfg.Title = v
	}
	if v := strings.TrimSpace(e.LogLevel); v != "" {
		cfg.LogLevel = v
	}
	return nil
}

func (c Config) normalized() Config {
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.StreamPath = strings.TrimSpace(c.StreamPath)
	if c.StreamPath == "" {
		c.StreamPath = DefaultStreamPath
	}
	if strings.TrimSpace(c.Title) == "" {
		c.Title = DefaultTitle
	}
	return c
}

// StreamURL joins the base URL and the stream path.
func (c Config) StreamURL() string {
	c = c.normalized()
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(c.StreamPath, "/")
}

// Feature reports whether a feature flag is on, honoring config overrides.
func (c Config) Feature(key string) bool {
	return features.Set(c.Features).Enabled(key)
}

// Validate checks that the base URL is an absolute http(s) URL.
func (c Config) Validate() error {
	raw := strings.TrimSpace(c.BaseURL)
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid base_url %q: %w", raw, err)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("invalid base_url %q: scheme must be http or https", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("invalid base_url %q: missing host", raw)
	}
	return nil
}
