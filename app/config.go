// Package app holds runtime configuration and logger construction.
package app

import (
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/hostelcore/billing-engine/billing"
)

// Config holds runtime configuration, resolved once at startup from
// environment variables. The ledger capability flags replace the
// upstream pattern of probing schema metadata on every request.
type Config struct {
	AppEnv          string        `envconfig:"APP_ENV" default:"development"`
	AppAddr         string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout  time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppIdleTimeout  time.Duration `envconfig:"APP_IDLE_TIMEOUT" default:"60s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	DBPath string `envconfig:"DB_PATH" default:"hostel.db"`

	// Optional ledger sources. A disabled source contributes zero to
	// balance summaries instead of erroring.
	FinancialsEnabled     bool `envconfig:"FINANCIALS_ENABLED" default:"true"`
	IncomeLedgerEnabled   bool `envconfig:"INCOME_LEDGER_ENABLED" default:"true"`
	CheckoutLedgerEnabled bool `envconfig:"CHECKOUT_LEDGER_ENABLED" default:"true"`

	// Requests per minute per client IP.
	RateLimitPerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`

	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173,http://localhost:8080"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Capabilities maps the config flags onto the engine's capability
// struct.
func (c *Config) Capabilities() billing.Capabilities {
	return billing.Capabilities{
		FinancialsEnabled:     c.FinancialsEnabled,
		IncomeLedgerEnabled:   c.IncomeLedgerEnabled,
		CheckoutLedgerEnabled: c.CheckoutLedgerEnabled,
	}
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
