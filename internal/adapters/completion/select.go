package completion

import (
	"strings"
	"time"
)

// Config lists the credentials of every known backend. A backend is
// available when its credential/host value is non-empty.
type Config struct {
	GeminiAPIKey string
	OpenAIAPIKey string
	OllamaHost   string

	// Timeout bounds each completion exchange. Zero means the package
	// default.
	Timeout time.Duration
}

// SelectProvider picks the single backend for the rest of the process
// lifetime: the first of Gemini, OpenAI, Ollama with configuration
// present. Pure over the config, no probing.
func SelectProvider(cfg Config) (Completer, error) {
	if strings.TrimSpace(cfg.GeminiAPIKey) != "" {
		return NewGeminiClient(cfg.GeminiAPIKey, cfg.Timeout), nil
	}
	if strings.TrimSpace(cfg.OpenAIAPIKey) != "" {
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.Timeout), nil
	}
	if strings.TrimSpace(cfg.OllamaHost) != "" {
		return NewOllamaClient(cfg.OllamaHost, cfg.Timeout), nil
	}
	return nil, ErrNoProviderConfigured
}
