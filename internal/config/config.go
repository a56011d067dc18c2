package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Supported values for STORE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// DefaultSessionSecret is used to sign admin tokens when neither SESSION_SECRET
// nor ADMIN_PASSWORD is configured.
const DefaultSessionSecret = "fallback"

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port        int    `envconfig:"PORT" default:"8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	Version     string `envconfig:"VERSION" default:"dev"`

	StoreDriver    string        `envconfig:"STORE_DRIVER" default:"postgres"`
	DatabaseURL    string        `envconfig:"DATABASE_URL" default:""`
	MongoURI       string        `envconfig:"MONGODB_URI" default:""`
	MongoDatabase  string        `envconfig:"MONGODB_DATABASE" default:"eventpass"`
	AdminUsername  string        `envconfig:"ADMIN_USERNAME" default:""`
	AdminPassword  string        `envconfig:"ADMIN_PASSWORD" default:""`
	AdminPassHash  string        `envconfig:"ADMIN_PASSWORD_HASH" default:""`
	SessionSecret  string        `envconfig:"SESSION_SECRET" default:""`
	SessionMaxAge  time.Duration `envconfig:"SESSION_MAX_AGE" default:"24h"`
	ExportPass     string        `envconfig:"EXPORT_PASS" default:""`
	AllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:""`
	LoginRate      int           `envconfig:"LOGIN_RATE_PER_MINUTE" default:"10"`

	ArchiveBucket          string `envconfig:"EXPORT_ARCHIVE_BUCKET" default:""`
	ArchiveEndpoint        string `envconfig:"EXPORT_ARCHIVE_ENDPOINT" default:""`
	ArchiveRegion          string `envconfig:"EXPORT_ARCHIVE_REGION" default:"auto"`
	ArchiveAccessKeyID     string `envconfig:"EXPORT_ARCHIVE_ACCESS_KEY_ID" default:""`
	ArchiveSecretAccessKey string `envconfig:"EXPORT_ARCHIVE_SECRET_ACCESS_KEY" default:""`

	SpreadsheetID            string `envconfig:"GOOGLE_SHEETS_SPREADSHEET_ID" default:""`
	GoogleServiceAccountJSON string `envconfig:"GOOGLE_SERVICE_ACCOUNT_JSON" default:""`
}

// Load reads an optional .env file and then environment variables into a Config struct.
func Load() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the selected store driver has a connection string.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=%s", DriverPostgres)
		}
	case DriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required when STORE_DRIVER=%s", DriverMongo)
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q (want %q or %q)", c.StoreDriver, DriverPostgres, DriverMongo)
	}
	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("SESSION_MAX_AGE must be positive, got %s", c.SessionMaxAge)
	}
	return nil
}

// IsProduction reports whether cookies should carry the Secure flag.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// ResolvedSessionSecret returns the key used to sign admin tokens. It falls
// back to the admin password and then to DefaultSessionSecret.
func (c *Config) ResolvedSessionSecret() (secret string, isDefault bool) {
	if c.SessionSecret != "" {
		return c.SessionSecret, false
	}
	if c.AdminPassword != "" {
		return c.AdminPassword, false
	}
	return DefaultSessionSecret, true
}

// ArchiveEnabled reports whether generated exports are copied to object storage.
func (c *Config) ArchiveEnabled() bool {
	return c.ArchiveBucket != ""
}

// SheetsEnabled reports whether the Google Sheets mirror is configured.
func (c *Config) SheetsEnabled() bool {
	return c.SpreadsheetID != "" && c.GoogleServiceAccountJSON != ""
}
