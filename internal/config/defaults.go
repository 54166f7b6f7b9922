package config

const (
	defaultConfigPath          = "~/.config/vidgen/config.toml"
	defaultBaseURL             = "http://127.0.0.1:8000"
	defaultTimeoutSeconds      = 30
	defaultPreviewRate         = 2.0
	defaultPreviewBurst        = 3
	defaultSceneDebounceMS     = 1200
	defaultImageDebounceMS     = 1200
	defaultTextDebounceMS      = 700
	defaultPreviewFPS          = 10
	defaultPreviewCacheSeconds = 300
	defaultPollIntervalSeconds = 3
	defaultStateDir            = "~/.local/share/vidgen"
	defaultLogDir              = "~/.local/share/vidgen/logs"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"

	// EnvBaseURL overrides gateway.base_url when the config leaves it empty.
	EnvBaseURL = "VIDGEN_API_BASE_URL"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Gateway: Gateway{
			BaseURL:              defaultBaseURL,
			TimeoutSeconds:       defaultTimeoutSeconds,
			PreviewRatePerSecond: defaultPreviewRate,
			PreviewBurst:         defaultPreviewBurst,
		},
		Preview: Preview{
			SceneDebounceMS: defaultSceneDebounceMS,
			ImageDebounceMS: defaultImageDebounceMS,
			TextDebounceMS:  defaultTextDebounceMS,
			FPS:             defaultPreviewFPS,
			CacheTTLSeconds: defaultPreviewCacheSeconds,
		},
		Tasks: Tasks{
			PollIntervalSeconds: defaultPollIntervalSeconds,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
