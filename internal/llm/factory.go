package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/abhisek/ladderquiz/internal/store"
)

// NewProvider creates a Provider from configuration.
// The result is wrapped caller → timeout → retry → logging → base.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	var p Provider = base
	if eventRepo != nil {
		p = WithLogging(p, cfg.Provider, eventRepo)
	}
	p = WithRetry(p, cfg.Retry)
	p = WithTimeout(p, cfg.Timeout)
	return p, nil
}

// NewProviderFromEnv resolves configuration from LADDERQUIZ_* variables when a
// provider is selected explicitly, otherwise from the vendors' own key variables.
func NewProviderFromEnv(ctx context.Context, eventRepo store.EventRepo) (Provider, error) {
	if os.Getenv(envPrefix+"LLM_PROVIDER") != "" {
		return NewProvider(ctx, ConfigFromEnv(), eventRepo)
	}
	if cfg, ok := DiscoverConfig(); ok {
		return NewProvider(ctx, cfg, eventRepo)
	}
	return nil, fmt.Errorf("no LLM provider configured: set %sLLM_PROVIDER or a vendor API key", envPrefix)
}
