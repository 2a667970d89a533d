package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/khrees2412/linkfolio/internal/apperror"
)

// Source selects how the profile is fetched.
const (
	SourceScraper = "scraper"
	SourceAPI     = "api"
)

// AuthMethod is how the scraper authenticates with LinkedIn.
type AuthMethod string

const (
	// AuthCookie injects the li_at session cookie directly. Preferred:
	// it bypasses 2FA and CAPTCHA challenges.
	AuthCookie AuthMethod = "cookie"
	// AuthCredentials logs in with email and password. Fallback, may
	// trigger a 2FA challenge the user has to complete manually.
	AuthCredentials AuthMethod = "credentials"
)

// DatabaseConfig is the portfolio database connection target.
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// DSN returns the PostgreSQL connection string, preferring the full
// URL when one is configured.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s", d.User, d.Password, d.Host, d.Port, d.Name)
}

// AuthConfig holds LinkedIn credentials for the scraper source.
type AuthConfig struct {
	Cookie   string `mapstructure:"cookie"`
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

// Method auto-detects the auth method, cookie first.
func (a AuthConfig) Method() AuthMethod {
	if a.Cookie != "" {
		return AuthCookie
	}
	return AuthCredentials
}

// Configured reports whether any usable auth material is present.
func (a AuthConfig) Configured() bool {
	return a.Cookie != "" || (a.Email != "" && a.Password != "")
}

// ScraperConfig tunes the browser automation.
type ScraperConfig struct {
	Headless        bool          `mapstructure:"headless"`
	PageLoadTimeout time.Duration `mapstructure:"page_load_timeout"`
	ActionDelay     time.Duration `mapstructure:"action_delay"`
	ScrollDelay     time.Duration `mapstructure:"scroll_delay"`
	MaxRetries      int           `mapstructure:"max_retries"`
}

// APIConfig configures the deprecated API-based source.
type APIConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	AccessToken string `mapstructure:"access_token"`
}

// Config is the full importer configuration, resolved from CLI flags,
// environment variables, and an optional .env file, in that order.
type Config struct {
	Database     DatabaseConfig `mapstructure:"db"`
	Auth         AuthConfig     `mapstructure:"linkedin"`
	Scraper      ScraperConfig  `mapstructure:"scraper"`
	API          APIConfig      `mapstructure:"api"`
	Source       string         `mapstructure:"source"`
	ProfileEmail string         `mapstructure:"profile_email"`
	Verbose      bool           `mapstructure:"verbose"`
}

// Load resolves the configuration. CLI flags bound to viper by the
// command layer take precedence over environment variables, which take
// precedence over the .env file.
func Load() (*Config, error) {
	// Missing .env is fine; env vars may be set directly.
	_ = godotenv.Load()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", 5432)
	viper.SetDefault("source", SourceScraper)
	viper.SetDefault("scraper.headless", true)
	viper.SetDefault("scraper.page_load_timeout", 30*time.Second)
	viper.SetDefault("scraper.action_delay", time.Second)
	viper.SetDefault("scraper.scroll_delay", 500*time.Millisecond)
	viper.SetDefault("scraper.max_retries", 3)
	viper.SetDefault("api.base_url", "https://api.linkedin.com/v2")

	bindEnvs := map[string]string{
		"db.url":                    "DATABASE_URL",
		"db.host":                   "DB_HOST",
		"db.port":                   "DB_PORT",
		"db.name":                   "DB_NAME",
		"db.user":                   "DB_USER",
		"db.password":               "DB_PASSWORD",
		"linkedin.cookie":           "LINKEDIN_COOKIE",
		"linkedin.email":            "LINKEDIN_EMAIL",
		"linkedin.password":         "LINKEDIN_PASSWORD",
		"api.access_token":          "LINKEDIN_ACCESS_TOKEN",
		"profile_email":             "PROFILE_EMAIL",
		"source":                    "PROFILE_SOURCE",
		"scraper.headless":          "HEADLESS",
		"scraper.page_load_timeout": "PAGE_LOAD_TIMEOUT",
		"scraper.action_delay":      "ACTION_DELAY",
		"scraper.scroll_delay":      "SCROLL_DELAY",
		"scraper.max_retries":       "MAX_RETRIES",
	}
	for key, env := range bindEnvs {
		if err := viper.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Auth.Cookie = strings.TrimSpace(cfg.Auth.Cookie)
	cfg.Auth.Email = strings.TrimSpace(cfg.Auth.Email)
	cfg.ProfileEmail = strings.TrimSpace(cfg.ProfileEmail)
	cfg.Source = strings.ToLower(strings.TrimSpace(cfg.Source))

	return cfg, nil
}

// Validate checks the configuration before anything is fetched or
// written. All problems surface as a ConfigError.
func (c *Config) Validate() error {
	if c.Database.URL == "" && (c.Database.Name == "" || c.Database.User == "") {
		return apperror.NewConfig("set DATABASE_URL, or DB_NAME and DB_USER")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return apperror.NewConfig(fmt.Sprintf("database port %d out of range", c.Database.Port))
	}

	switch c.Source {
	case SourceScraper:
		if !c.Auth.Configured() {
			return apperror.NewConfig("scraper source needs LINKEDIN_COOKIE (preferred) or both LINKEDIN_EMAIL and LINKEDIN_PASSWORD")
		}
		if c.ProfileEmail == "" {
			return apperror.NewConfig("PROFILE_EMAIL is required for the scraper source: LinkedIn does not expose email addresses")
		}
		if c.ProfileEmail != "" && !strings.Contains(c.ProfileEmail, "@") {
			return apperror.NewConfig(fmt.Sprintf("profile email %q is not a valid address", c.ProfileEmail))
		}
	case SourceAPI:
		if c.API.AccessToken == "" {
			return apperror.NewConfig("api source needs LINKEDIN_ACCESS_TOKEN")
		}
	default:
		return apperror.NewConfig(fmt.Sprintf("unknown profile source %q (want %q or %q)", c.Source, SourceScraper, SourceAPI))
	}

	if c.Scraper.PageLoadTimeout < 5*time.Second || c.Scraper.PageLoadTimeout > 2*time.Minute {
		return apperror.NewConfig("page load timeout must be between 5s and 2m")
	}
	if c.Scraper.MaxRetries < 1 || c.Scraper.MaxRetries > 10 {
		return apperror.NewConfig("max retries must be between 1 and 10")
	}

	return nil
}

// Redacted returns a copy safe for display, with secrets masked.
func (c *Config) Redacted() Config {
	out := *c
	if out.Database.Password != "" {
		out.Database.Password = "********"
	}
	if out.Database.URL != "" {
		out.Database.URL = "********"
	}
	if out.Auth.Cookie != "" {
		out.Auth.Cookie = "********"
	}
	if out.Auth.Password != "" {
		out.Auth.Password = "********"
	}
	if out.API.AccessToken != "" {
		out.API.AccessToken = "********"
	}
	return out
}
