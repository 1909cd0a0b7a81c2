package llm

import (
	"context"
	"fmt"

	"BlogEngine/internal/config"
	"BlogEngine/internal/ports"
)

// New returns the completer selected by configuration.
func New(ctx context.Context, cfg config.LLMConfig) (ports.Completer, error) {
	switch cfg.Provider {
	case config.ProviderAnthropic, "":
		return NewAnthropicCompleter(cfg.AnthropicAPIKey, cfg.Model, cfg.MaxTokens, cfg.Timeout)
	case config.ProviderGemini:
		return NewGeminiCompleter(ctx, cfg.GeminiAPIKey, cfg.Model, cfg.MaxTokens, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
