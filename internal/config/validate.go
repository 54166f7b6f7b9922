package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateGateway(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateGateway() error {
	parsed, err := url.Parse(c.Gateway.BaseURL)
	if err != nil {
		return fmt.Errorf("gateway.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("gateway.base_url must use http or https, got %q", c.Gateway.BaseURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("gateway.base_url must include a host, got %q", c.Gateway.BaseURL)
	}
	if c.Gateway.PreviewRatePerSecond < 0 {
		return errors.New("gateway.preview_rate_per_second must be zero (unlimited) or positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
