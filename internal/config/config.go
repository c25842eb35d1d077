// Package config loads agent settings from a YAML file, a .env file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sydlexius/audible-agent/internal/logging"
	"github.com/sydlexius/audible-agent/internal/provider"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig   `yaml:"server"`
	Agent   AgentConfig    `yaml:"agent"`
	Audible AudibleConfig  `yaml:"audible"`
	Logging logging.Config `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// AgentConfig is the identity announced to the media server.
type AgentConfig struct {
	Identifier string `yaml:"identifier"`
	Title      string `yaml:"title"`
}

// AudibleConfig holds catalog client settings.
type AudibleConfig struct {
	APIBaseURL        string        `yaml:"api_base_url"`
	SiteBaseURL       string        `yaml:"site_base_url"`
	ImageSizes        string        `yaml:"image_sizes"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
}

// Limits returns the outbound throttles. The configured rate applies to
// product lookups; search and author pages keep their defaults.
func (a AudibleConfig) Limits() map[provider.Endpoint]provider.Limit {
	limits := provider.DefaultLimits()
	limits[provider.EndpointProduct] = provider.Limit{
		RequestsPerSecond: a.RequestsPerSecond,
		Burst:             a.Burst,
	}
	return limits
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            3000,
			ShutdownTimeout: 10 * time.Second,
		},
		Agent: AgentConfig{
			Identifier: "tv.plex.agents.custom.audible",
			Title:      "Audible",
		},
		Audible: AudibleConfig{
			APIBaseURL:        "https://api.audible.com",
			SiteBaseURL:       "https://www.audible.com",
			ImageSizes:        "360,1024",
			Timeout:           15 * time.Second,
			RequestsPerSecond: 10,
			Burst:             25,
		},
		Logging: logging.DefaultConfig(),
	}
}

// LoadDotEnv loads variables from a .env file without overriding ones
// already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load reads config from a YAML file (if it exists) and overrides with
// environment variables. Environment variables take precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() error {
	var errs []error

	// PORT is honored for platforms that inject it; AUD_PORT wins.
	for _, key := range []string{"PORT", "AUD_PORT"} {
		if v := os.Getenv(key); v != "" {
			port, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				continue
			}
			c.Server.Port = port
		}
	}
	setString(&c.Server.Host, "AUD_HOST")
	setString(&c.Agent.Identifier, "AUD_AGENT_IDENTIFIER")
	setString(&c.Agent.Title, "AUD_AGENT_TITLE")
	setString(&c.Audible.APIBaseURL, "AUD_API_BASE_URL")
	setString(&c.Audible.SiteBaseURL, "AUD_SITE_BASE_URL")
	setString(&c.Audible.ImageSizes, "AUD_IMAGE_SIZES")
	if v := os.Getenv("AUD_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("AUD_TIMEOUT: %w", err))
		} else {
			c.Audible.Timeout = d
		}
	}
	if v := os.Getenv("AUD_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("AUD_RPS: %w", err))
		} else {
			c.Audible.RequestsPerSecond = rps
		}
	}
	if v := os.Getenv("AUD_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("AUD_BURST: %w", err))
		} else {
			c.Audible.Burst = burst
		}
	}
	setString(&c.Logging.Level, "AUD_LOG_LEVEL")
	setString(&c.Logging.Format, "AUD_LOG_FORMAT")
	setString(&c.Logging.FilePath, "AUD_LOG_FILE")

	return errors.Join(errs...)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

var imageSizesPattern = regexp.MustCompile(`^[0-9]+(,[0-9]+)*$`)

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Agent.Identifier == "" {
		return errors.New("agent identifier is required")
	}
	for name, raw := range map[string]string{
		"api_base_url":  c.Audible.APIBaseURL,
		"site_base_url": c.Audible.SiteBaseURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid %s: %q", name, raw)
		}
	}
	if !imageSizesPattern.MatchString(c.Audible.ImageSizes) {
		return fmt.Errorf("invalid image_sizes: %q", c.Audible.ImageSizes)
	}
	if c.Audible.Timeout <= 0 {
		return fmt.Errorf("invalid timeout: %s", c.Audible.Timeout)
	}
	if c.Audible.RequestsPerSecond < 0 || c.Audible.Burst < 0 {
		return errors.New("rate limit values must not be negative")
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}
