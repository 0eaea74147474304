package config

const (
	defaultDataDir = "~/.local/share/polilink"
	defaultLogDir  = "~/.local/share/polilink/logs"

	defaultConfidenceThreshold = 0.8
	defaultAutoMatchThreshold  = 0.9
	defaultReviewThreshold     = 0.7
	defaultGoverningBodyID     = 1

	defaultFallbackBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultFallbackModel          = "google/gemini-3-flash-preview"
	defaultFallbackTimeoutSeconds = 60

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Matching: Matching{
			ConfidenceThreshold: defaultConfidenceThreshold,
			AutoMatchThreshold:  defaultAutoMatchThreshold,
			ReviewThreshold:     defaultReviewThreshold,
			GoverningBodyID:     defaultGoverningBodyID,
		},
		Fallback: Fallback{
			Enabled:        false,
			BaseURL:        defaultFallbackBaseURL,
			Model:          defaultFallbackModel,
			TimeoutSeconds: defaultFallbackTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
