// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds every setting the server reads at startup.
type Config struct {
	Port         string `envconfig:"PORT" default:"8080"`
	DatabasePath string `envconfig:"DATABASE_PATH" default:"maallem.db"`
	JWTSecret    string `envconfig:"JWT_SECRET" required:"true"`

	// Secure cookies by default; disable only for local development.
	CookieSecure bool `envconfig:"COOKIE_SECURE" default:"true"`
	BcryptCost   int  `envconfig:"BCRYPT_COST" default:"12"`

	FeaturedLimit   int           `envconfig:"FEATURED_LIMIT" default:"6"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`

	// Sign-in and sign-up attempts allowed per client address.
	AuthRateBurst  float64 `envconfig:"AUTH_RATE_BURST" default:"10"`
	AuthRatePerSec float64 `envconfig:"AUTH_RATE_PER_SEC" default:"0.2"`
}

// Load reads the environment and validates the result.
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the constraints envconfig tags cannot express.
func (c Config) Validate() error {
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters for HMAC-SHA256 security")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 14 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", c.BcryptCost)
	}
	if c.FeaturedLimit < 0 {
		return fmt.Errorf("FEATURED_LIMIT must not be negative, got %d", c.FeaturedLimit)
	}
	if c.AuthRateBurst < 1 {
		return fmt.Errorf("AUTH_RATE_BURST must be at least 1, got %v", c.AuthRateBurst)
	}
	return nil
}

func (c Config) Addr() string {
	return ":" + c.Port
}
