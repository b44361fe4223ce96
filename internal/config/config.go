package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"iexcloud/internal/fetcher"
)

// Mode selects which IEX Cloud origin requests target and which token is used.
type Mode string

const (
	// ModeProduction targets the production origin with the production token
	ModeProduction Mode = "PRODUCTION"
	// ModeTest targets the sandbox origin with the test token
	ModeTest Mode = "TEST"
)

const (
	// ProductionBaseURL is the production IEX Cloud origin
	ProductionBaseURL = "https://cloud.iexapis.com/stable"
	// SandboxBaseURL is the sandbox IEX Cloud origin used in TEST mode
	SandboxBaseURL = "https://sandbox.iexapis.com/stable"
)

// Config holds the tokens and the active mode for outgoing requests.
//
// The zero value is ready to use and resolves as PRODUCTION with no tokens.
// Token and base URL are resolved on every call, so changes made between
// calls are observed by the next request. A Config must not be mutated while
// requests using it are in flight.
type Config struct {
	productionToken string
	testToken       string
	mode            Mode

	// Base URL overrides; empty means the fixed origin constants.
	productionBaseURL string
	sandboxBaseURL    string
}

// ParseMode converts s into a Mode. Matching is case-insensitive.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToUpper(strings.TrimSpace(s))); m {
	case ModeProduction, ModeTest:
		return m, nil
	default:
		return "", fetcher.NewInvalidArgumentError("mode should be one of %q, %q; got %q", ModeProduction, ModeTest, s)
	}
}

// SetProductionToken stores the production API token verbatim.
func (c *Config) SetProductionToken(token string) {
	c.productionToken = token
}

// SetTestToken stores the sandbox API token verbatim.
func (c *Config) SetTestToken(token string) {
	c.testToken = token
}

// SetMode switches the active mode. Any value other than ModeProduction or
// ModeTest is rejected and the current mode is left unchanged.
func (c *Config) SetMode(mode Mode) error {
	if mode != ModeProduction && mode != ModeTest {
		return fetcher.NewInvalidArgumentError("mode should be one of %q, %q; got %q", ModeProduction, ModeTest, mode)
	}
	c.mode = mode
	return nil
}

// Mode returns the active mode.
func (c *Config) Mode() Mode {
	if c.mode == ModeTest {
		return ModeTest
	}
	return ModeProduction
}

// SetBaseURLs overrides the production and sandbox origins. Empty strings
// restore the defaults. Intended for pointing clients at a mock server.
func (c *Config) SetBaseURLs(production, sandbox string) {
	c.productionBaseURL = strings.TrimRight(production, "/")
	c.sandboxBaseURL = strings.TrimRight(sandbox, "/")
}

// ResolveToken returns the token for the active mode.
func (c *Config) ResolveToken() (string, error) {
	if c.mode == ModeTest {
		if c.testToken == "" {
			return "", fetcher.NewConfigurationMissingError("IEX test token is not set")
		}
		return c.testToken, nil
	}

	if c.productionToken == "" {
		return "", fetcher.NewConfigurationMissingError("IEX token is not set")
	}
	return c.productionToken, nil
}

// ResolveBaseURL returns the origin for the active mode.
func (c *Config) ResolveBaseURL() string {
	if c.mode == ModeTest {
		if c.sandboxBaseURL != "" {
			return c.sandboxBaseURL
		}
		return SandboxBaseURL
	}

	if c.productionBaseURL != "" {
		return c.productionBaseURL
	}
	return ProductionBaseURL
}

// fileConfig mirrors the keys accepted from the environment and config file.
type fileConfig struct {
	Token          string `mapstructure:"iex_token"`
	TestToken      string `mapstructure:"iex_test_token"`
	Mode           string `mapstructure:"iex_mode"`
	BaseURL        string `mapstructure:"iex_base_url"`
	SandboxBaseURL string `mapstructure:"iex_sandbox_base_url"`
}

// Load reads configuration from environment variables, an optional .env file
// and an optional config file. Environment variables take precedence over
// config file values.
//
// Recognised environment variables:
//   - IEX_TOKEN
//   - IEX_TEST_TOKEN
//   - IEX_MODE (PRODUCTION or TEST, defaults to PRODUCTION)
//   - IEX_BASE_URL (optional, defaults to production)
//   - IEX_SANDBOX_BASE_URL (optional, defaults to sandbox)
//
// Missing tokens are not an error here; they are reported when a request
// needs them.
func Load() (*Config, error) {
	// Values already in the environment win over .env entries.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("iex_mode", string(ModeProduction))
	v.SetDefault("iex_base_url", ProductionBaseURL)
	v.SetDefault("iex_sandbox_base_url", SandboxBaseURL)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.iexcloud")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.BindEnv("iex_token", "IEX_TOKEN")
	v.BindEnv("iex_test_token", "IEX_TEST_TOKEN")
	v.BindEnv("iex_mode", "IEX_MODE")
	v.BindEnv("iex_base_url", "IEX_BASE_URL")
	v.BindEnv("iex_sandbox_base_url", "IEX_SANDBOX_BASE_URL")

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	mode, err := ParseMode(fc.Mode)
	if err != nil {
		return nil, fmt.Errorf("invalid IEX_MODE: %w", err)
	}

	cfg := &Config{}
	cfg.SetProductionToken(fc.Token)
	cfg.SetTestToken(fc.TestToken)
	cfg.SetBaseURLs(fc.BaseURL, fc.SandboxBaseURL)
	if err := cfg.SetMode(mode); err != nil {
		return nil, err
	}

	return cfg, nil
}
