package config

import (
	"os"
	"strconv"
)

const (
	aiBaseURLEnv    = "AI_BASE_URL"
	aiAPIKeyEnv     = "AI_API_KEY"
	aiModelEnv      = "AI_MODEL"
	aiTimeoutMsEnv  = "AI_TIMEOUT_MS"
	aiMaxRetriesEnv = "AI_MAX_RETRIES"

	defaultAIBaseURL   = "https://generativelanguage.googleapis.com"
	defaultAIModel     = "gemini-2.0-flash"
	defaultAITimeoutMs = 30000
	defaultAIRetries   = 2
)

type AIConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	TimeoutMs  int
	MaxRetries int
}

func LoadAIConfig() *AIConfig {
	timeoutMs := defaultAITimeoutMs
	if v := os.Getenv(aiTimeoutMsEnv); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			timeoutMs = parsed
		}
	}

	maxRetries := defaultAIRetries
	if v := os.Getenv(aiMaxRetriesEnv); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			maxRetries = parsed
		}
	}

	return &AIConfig{
		BaseURL:    getEnvOrDefault(aiBaseURLEnv, defaultAIBaseURL),
		APIKey:     os.Getenv(aiAPIKeyEnv),
		Model:      getEnvOrDefault(aiModelEnv, defaultAIModel),
		TimeoutMs:  timeoutMs,
		MaxRetries: maxRetries,
	}
}

// Enabled reports whether the AI surface can be served. A missing API
// key is a configuration error for the calls that need it, never a
// startup crash.
func (c *AIConfig) Enabled() bool {
	return c != nil && c.APIKey != ""
}
