package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Gateway contains connection settings for the remote render service.
type Gateway struct {
	BaseURL              string  `toml:"base_url"`
	TimeoutSeconds       int     `toml:"timeout_seconds"`
	PreviewRatePerSecond float64 `toml:"preview_rate_per_second"`
	PreviewBurst         int     `toml:"preview_burst"`
}

// Preview contains debounce and caching settings for live previews.
type Preview struct {
	SceneDebounceMS int `toml:"scene_debounce_ms"`
	ImageDebounceMS int `toml:"image_debounce_ms"`
	TextDebounceMS  int `toml:"text_debounce_ms"`
	// FPS is the frame rate requested for low-cost scene previews.
	FPS             int `toml:"fps"`
	CacheTTLSeconds int `toml:"cache_ttl_seconds"`
}

// Tasks contains render job polling settings.
type Tasks struct {
	PollIntervalSeconds int `toml:"poll_interval_seconds"`
}

// Paths contains local state and log directories.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for vidgen.
//
// Configuration sections by subsystem:
//   - Gateway: render service base URL, timeouts, preview throttling
//   - Preview: per-surface debounce windows, preview fps, artifact cache
//   - Tasks: job status polling interval
//   - Paths: session lock, journal database, and log locations
//   - Logging: log format and level
type Config struct {
	Gateway Gateway `toml:"gateway"`
	Preview Preview `toml:"preview"`
	Tasks   Tasks   `toml:"tasks"`
	Paths   Paths   `toml:"paths"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("vidgen.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// GatewayTimeout returns the per-call timeout applied by the render gateway.
func (c *Config) GatewayTimeout() time.Duration {
	return time.Duration(c.Gateway.TimeoutSeconds) * time.Second
}

// PollInterval returns the fixed interval between job status polls.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Tasks.PollIntervalSeconds) * time.Second
}

// PreviewCacheTTL returns how long identical preview payloads are served from cache.
// Zero disables the cache.
func (c *Config) PreviewCacheTTL() time.Duration {
	return time.Duration(c.Preview.CacheTTLSeconds) * time.Second
}

// DebounceWindows returns the scene, image, and text debounce windows.
func (c *Config) DebounceWindows() (scene, image, text time.Duration) {
	return time.Duration(c.Preview.SceneDebounceMS) * time.Millisecond,
		time.Duration(c.Preview.ImageDebounceMS) * time.Millisecond,
		time.Duration(c.Preview.TextDebounceMS) * time.Millisecond
}

// JournalPath returns the location of the local submission journal database.
func (c *Config) JournalPath() string {
	return filepath.Join(c.Paths.StateDir, "journal.db")
}

// SessionLockPath returns the lock file guarding the single active submission.
func (c *Config) SessionLockPath() string {
	return filepath.Join(c.Paths.StateDir, "session.lock")
}

// LogPath returns the log file written next to stderr output.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.LogDir, "vidgen.log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
