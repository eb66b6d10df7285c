package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config holds the settings of the self-hosted auth backend and the session
// cookie the HTTP layer sets for every backend.
type Config struct {
	// JWT Configuration
	JWTSecretKey   string        `env:"JWT_SECRET_KEY"`
	JWTIssuer      string        `env:"JWT_ISSUER" envDefault:"firebase-kit-auth"`
	IDTokenTTL     time.Duration `env:"ID_TOKEN_TTL" envDefault:"1h"`
	SessionTTL     time.Duration `env:"SESSION_COOKIE_TTL" envDefault:"120h"` // 5 days
	ActionTokenTTL time.Duration `env:"ACTION_TOKEN_TTL" envDefault:"24h"`

	// ActionLinkBaseURL prefixes email verification and password reset links
	ActionLinkBaseURL string `env:"ACTION_LINK_BASE_URL" envDefault:"http://localhost:3000/v1/auth/action"`

	// Cookie Configuration
	CookieName     string `env:"SESSION_COOKIE_NAME" envDefault:"__session"`
	CookiePath     string `env:"COOKIE_PATH" envDefault:"/"`
	CookieDomain   string `env:"COOKIE_DOMAIN" envDefault:""`
	CookieSecure   bool   `env:"COOKIE_SECURE" envDefault:"false"` // Set to true in production
	CookieHTTPOnly bool   `env:"COOKIE_HTTP_ONLY" envDefault:"true"`
	CookieSameSite string `env:"COOKIE_SAME_SITE" envDefault:"Lax"` // "Lax", "Strict", "None"
}

// LoadConfig loads configuration from environment variables and applies defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateTokens checks the settings the JWT token service needs.
func (c *Config) ValidateTokens() error {
	if c.JWTSecretKey == "" {
		return errors.New("jwt secret key cannot be empty")
	}
	if c.JWTIssuer == "" {
		return errors.New("jwt issuer cannot be empty")
	}
	if c.IDTokenTTL <= 0 {
		return errors.New("jwt id token TTL must be positive")
	}
	if c.SessionTTL <= 0 || c.ActionTokenTTL <= 0 {
		return errors.New("jwt session and action token TTLs must be positive")
	}
	return nil
}
