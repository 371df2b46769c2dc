package jobs

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every configuration variable.
const EnvPrefix = "JOBS_"

// Config is the process configuration for the jobs core.
type Config struct {
	AppName                string `env:"APP_NAME" envDefault:"jobs"`
	Debug                  bool   `env:"DEBUG" envDefault:"false"`
	DatabaseURL            string `env:"DATABASE_URL,required"`
	SigningKey             string `env:"JWT_SECRET_KEY,required"`
	SigningMethod          string `env:"JWT_ALGORITHM" envDefault:"HS256"`
	Issuer                 string `env:"JWT_ISSUER"`
	TokenExpirationMinutes int    `env:"JWT_TOKEN_EXPIRATION_MINUTES" envDefault:"30"`
	PasswordHashRounds     int    `env:"PASSWORD_HASH_ROUNDS" envDefault:"29000"`
}

// LoadConfig reads Config from JOBS_ prefixed environment variables and
// validates it.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the token and credential subsystems cannot
// run with.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("config: database url is required")
	}
	if c.SigningKey == "" {
		return fmt.Errorf("config: jwt secret key is required")
	}
	if _, err := SigningMethodFromName(c.SigningMethod); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.TokenExpirationMinutes <= 0 {
		return fmt.Errorf("config: token expiration must be positive, got %d", c.TokenExpirationMinutes)
	}
	if c.PasswordHashRounds <= 0 {
		return fmt.Errorf("config: password hash rounds must be positive, got %d", c.PasswordHashRounds)
	}
	return nil
}

func (c *Config) GetAppName() string {
	return c.AppName
}

func (c *Config) GetDebug() bool {
	return c.Debug
}

func (c *Config) GetDatabaseURL() string {
	return c.DatabaseURL
}

func (c *Config) GetSigningKey() string {
	return c.SigningKey
}

func (c *Config) GetSigningMethod() string {
	return c.SigningMethod
}

func (c *Config) GetIssuer() string {
	return c.Issuer
}

// GetTokenExpiration is the token TTL.
func (c *Config) GetTokenExpiration() time.Duration {
	return time.Duration(c.TokenExpirationMinutes) * time.Minute
}

func (c *Config) GetPasswordHashRounds() int {
	return c.PasswordHashRounds
}

// TokenService builds the token subsystem described by the configuration.
func (c *Config) TokenService(opts ...TokenServiceOption) (TokenService, error) {
	method, err := SigningMethodFromName(c.SigningMethod)
	if err != nil {
		return nil, err
	}

	base := []TokenServiceOption{WithSigningMethod(method)}
	if c.Issuer != "" {
		base = append(base, WithIssuer(c.Issuer))
	}

	return NewTokenService([]byte(c.SigningKey), c.GetTokenExpiration(), append(base, opts...)...), nil
}

// PasswordHasher builds the credential hasher with the configured rounds.
func (c *Config) PasswordHasher() PasswordHasher {
	return NewPasswordHasher(WithPBKDF2Rounds(c.PasswordHashRounds))
}
