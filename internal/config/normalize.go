package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeGateway()
	c.normalizePreview()
	if c.Tasks.PollIntervalSeconds <= 0 {
		c.Tasks.PollIntervalSeconds = defaultPollIntervalSeconds
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeGateway() {
	c.Gateway.BaseURL = strings.TrimSpace(c.Gateway.BaseURL)
	if value, ok := os.LookupEnv(EnvBaseURL); ok && strings.TrimSpace(value) != "" {
		c.Gateway.BaseURL = strings.TrimSpace(value)
	}
	if c.Gateway.BaseURL == "" {
		c.Gateway.BaseURL = defaultBaseURL
	}
	c.Gateway.BaseURL = strings.TrimRight(c.Gateway.BaseURL, "/")
	if c.Gateway.TimeoutSeconds <= 0 {
		c.Gateway.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.Gateway.PreviewBurst <= 0 {
		c.Gateway.PreviewBurst = defaultPreviewBurst
	}
}

func (c *Config) normalizePreview() {
	if c.Preview.SceneDebounceMS <= 0 {
		c.Preview.SceneDebounceMS = defaultSceneDebounceMS
	}
	if c.Preview.ImageDebounceMS <= 0 {
		c.Preview.ImageDebounceMS = defaultImageDebounceMS
	}
	if c.Preview.TextDebounceMS <= 0 {
		c.Preview.TextDebounceMS = defaultTextDebounceMS
	}
	if c.Preview.FPS <= 0 {
		c.Preview.FPS = defaultPreviewFPS
	}
	if c.Preview.CacheTTLSeconds < 0 {
		c.Preview.CacheTTLSeconds = 0
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
