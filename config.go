package ridgeline

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// SiteConfig holds all configuration for the site backend. Values come from
// an optional YAML file (RIDGELINE_CONFIG) with environment variables taking
// precedence; secrets are env-only.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "Ridgeline Builders")
	URL         string `yaml:"url"`         // Canonical public URL
	Environment string `yaml:"environment"` // Reported by the health endpoint

	Addr    string `yaml:"addr"`     // Listen address (default ":3000")
	DataDir string `yaml:"data_dir"` // JSON data directory (default "data")

	AllowedOrigins []string `yaml:"allowed_origins"` // CORS origins for the public frontend

	AnalyticsEnabled      bool   `yaml:"analytics_enabled"`
	AnalyticsDatabasePath string `yaml:"analytics_database_path"`
	AnalyticsRetainDays   int    `yaml:"analytics_retain_days"`

	Mail MailConfig `yaml:"mail"`

	SessionSecret        string `yaml:"-"` // Required: session encryption secret (SESSION_SECRET)
	DefaultAdminPassword string `yaml:"-"` // Seed password for the bootstrap admin (DEFAULT_ADMIN_PASSWORD)
	CookieSecure         bool   `yaml:"cookie_secure"`

	SessionMaxAge time.Duration `yaml:"-"` // Session lifetime (default 12h)
}

// MailConfig points at the transactional email provider.
type MailConfig struct {
	Endpoint         string `yaml:"endpoint"` // Provider HTTP endpoint; empty disables sending
	APIKey           string `yaml:"-"`        // MAIL_API_KEY
	From             string `yaml:"from"`
	ContactRecipient string `yaml:"contact_recipient"` // Where contact/booking forms land
}

// LoadConfig reads the optional YAML file named by RIDGELINE_CONFIG, then
// applies environment overrides. A .env file is honored in development.
func LoadConfig() (SiteConfig, error) {
	_ = godotenv.Load()

	var cfg SiteConfig
	if path := os.Getenv("RIDGELINE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}

	if v := envOr("SITE_NAME", ""); v != "" {
		cfg.Name = v
	}
	if v := envOr("SITE_URL", ""); v != "" {
		cfg.URL = strings.TrimSuffix(v, "/")
	}
	if v := envOr("ENVIRONMENT", ""); v != "" {
		cfg.Environment = v
	}
	if v := envOr("ADDR", ""); v != "" {
		cfg.Addr = v
	}
	if v := envOr("DATA_DIR", ""); v != "" {
		cfg.DataDir = v
	}
	if v := envOr("CORS_ALLOWED_ORIGINS", ""); v != "" {
		cfg.AllowedOrigins = splitCSV(v)
	}
	if v := envOr("ANALYTICS_DATABASE_PATH", ""); v != "" {
		cfg.AnalyticsDatabasePath = v
	}
	if v := os.Getenv("ANALYTICS_ENABLED"); v != "" {
		cfg.AnalyticsEnabled = strings.EqualFold(v, "true")
	}
	if v := envOr("MAIL_ENDPOINT", ""); v != "" {
		cfg.Mail.Endpoint = v
	}
	if v := envOr("MAIL_FROM", ""); v != "" {
		cfg.Mail.From = v
	}
	if v := envOr("MAIL_CONTACT_RECIPIENT", ""); v != "" {
		cfg.Mail.ContactRecipient = v
	}
	cfg.Mail.APIKey = os.Getenv("MAIL_API_KEY")
	cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	cfg.DefaultAdminPassword = envOr("DEFAULT_ADMIN_PASSWORD", "")
	cfg.CookieSecure = strings.EqualFold(os.Getenv("COOKIE_SECURE"), "true")

	cfg.setDefaults()
	return cfg, nil
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Ridgeline Builders"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.AnalyticsDatabasePath == "" {
		c.AnalyticsDatabasePath = "data/analytics.db"
	}
	if c.AnalyticsRetainDays == 0 {
		c.AnalyticsRetainDays = 365
	}
	if c.DefaultAdminPassword == "" {
		c.DefaultAdminPassword = "admin"
	}
	if c.Mail.From == "" {
		c.Mail.From = "no-reply@ridgelinebuilders.com"
	}
	if c.SessionMaxAge == 0 {
		c.SessionMaxAge = 12 * time.Hour
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	return out
}
