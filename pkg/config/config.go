package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration values, read once at startup.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"APP_ENV" envDefault:"development"`

	// Request signing
	SigningSecret string `env:"REQUEST_SIGNING_SECRET"`

	// GoHighLevel CRM
	GHLAPIBaseURL string        `env:"GHL_API_BASE_URL" envDefault:"https://services.leadconnectorhq.com"`
	GHLAPIKey     string        `env:"GHL_API_KEY"`
	GHLLocationID string        `env:"GHL_LOCATION_ID"`
	GHLTimeout    time.Duration `env:"GHL_API_TIMEOUT" envDefault:"10s"`
	GHLMockMode   bool          `env:"GHL_MOCK_MODE" envDefault:"false"`

	// Rate limiting
	MaxRequestsPerIP    int           `env:"RATE_LIMIT_MAX_REQUESTS_PER_IP" envDefault:"5"`
	IPWindow            time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
	MaxRequestsPerEmail int           `env:"RATE_LIMIT_MAX_REQUESTS_PER_EMAIL" envDefault:"10"`
	EmailWindow         time.Duration `env:"RATE_LIMIT_EMAIL_WINDOW" envDefault:"1h"`

	// CORS
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	Debug bool `env:"DEBUG" envDefault:"false"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsMockCRM reports whether CRM calls should be short-circuited. The
// placeholder value ships in .env.example and must never reach the real API.
func (c *Config) IsMockCRM() bool {
	return c.GHLMockMode || c.GHLAPIKey == "" || c.GHLAPIKey == "your_private_integration_token_here"
}
