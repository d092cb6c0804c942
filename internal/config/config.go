package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every configuration key when read from the environment.
const EnvPrefix = "EDUGRID"

// Config holds the portal client configuration
type Config struct {
	// Backend API root (env: EDUGRID_API_BASE_URL, falling back to VITE_API_BASE_URL)
	APIBaseURL string

	// Durable session backend DSN; empty means files under ~/.edugrid
	SessionDSN string

	// Bind address of the local portal server
	PortalAddr string

	// Timeout applied to every outbound request
	HTTPTimeout time.Duration

	// Enable debug logging
	Debug bool

	// Disable interactive prompts
	NonInteractive bool
}

func init() {
	setDefaults()
}

func setDefaults() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("api_base_url", "http://localhost:3000")
	viper.SetDefault("session_dsn", "")
	viper.SetDefault("portal_addr", "localhost:5173")
	viper.SetDefault("http_timeout", 30*time.Second)
	viper.SetDefault("debug", false)
	viper.SetDefault("non_interactive", false)

	// The web client was configured through VITE_API_BASE_URL; honor it as a fallback.
	_ = viper.BindEnv("api_base_url", EnvPrefix+"_API_BASE_URL", "VITE_API_BASE_URL")
}

// Reset restores viper to the package defaults. Tests use it between cases.
func Reset() {
	viper.Reset()
	setDefaults()
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none are
// given) into the process environment. Missing files are ignored and variables
// already set are never overwritten.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from viper (config file, environment, defaults)
func Load() (*Config, error) {
	cfg := &Config{
		APIBaseURL:     strings.TrimRight(viper.GetString("api_base_url"), "/"),
		SessionDSN:     viper.GetString("session_dsn"),
		PortalAddr:     viper.GetString("portal_addr"),
		HTTPTimeout:    viper.GetDuration("http_timeout"),
		Debug:          viper.GetBool("debug"),
		NonInteractive: viper.GetBool("non_interactive"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required fields are present and well formed
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("%s_API_BASE_URL is required", EnvPrefix)
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s_API_BASE_URL must be an absolute http(s) URL, got %q", EnvPrefix, c.APIBaseURL)
	}
	if c.PortalAddr == "" {
		return fmt.Errorf("%s_PORTAL_ADDR is required", EnvPrefix)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("%s_HTTP_TIMEOUT must be positive, got %s", EnvPrefix, c.HTTPTimeout)
	}
	return nil
}
