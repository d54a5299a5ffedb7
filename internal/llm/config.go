package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "anthropic", "openai", "gemini", "openrouter", "mock"
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds a single Generate call including retries. Zero disables it.
	Timeout time.Duration
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string
	Model   string // Default: "claude-haiku"
	BaseURL string // Optional. Proxies and gateways.
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Any OpenAI-compatible endpoint.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// envPrefix namespaces every variable read by ConfigFromEnv.
const envPrefix = "LADDERQUIZ_"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "openai",
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "openai/gpt-4o-mini",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     5 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 45 * time.Second,
	}
}

// vendor binds a provider name to the Config fields its environment
// variables fill. Order is discovery precedence.
type vendor struct {
	name    string
	key     func(*Config) *string
	model   func(*Config) *string
	baseURL func(*Config) *string
}

var vendors = []vendor{
	{
		name:    "openai",
		key:     func(c *Config) *string { return &c.OpenAI.APIKey },
		model:   func(c *Config) *string { return &c.OpenAI.Model },
		baseURL: func(c *Config) *string { return &c.OpenAI.BaseURL },
	},
	{
		name:    "anthropic",
		key:     func(c *Config) *string { return &c.Anthropic.APIKey },
		model:   func(c *Config) *string { return &c.Anthropic.Model },
		baseURL: func(c *Config) *string { return &c.Anthropic.BaseURL },
	},
	{
		name:  "gemini",
		key:   func(c *Config) *string { return &c.Gemini.APIKey },
		model: func(c *Config) *string { return &c.Gemini.Model },
	},
	{
		name:    "openrouter",
		key:     func(c *Config) *string { return &c.OpenRouter.APIKey },
		model:   func(c *Config) *string { return &c.OpenRouter.Model },
		baseURL: func(c *Config) *string { return &c.OpenRouter.BaseURL },
	},
}

func (v vendor) env(suffix string) string {
	return strings.ToUpper(v.name) + "_" + suffix
}

func lookupVendor(name string) (vendor, bool) {
	for _, v := range vendors {
		if v.name == name {
			return v, true
		}
	}
	return vendor{}, false
}

// ConfigFromEnv builds a Config from LADDERQUIZ_* variables over the
// defaults: LADDERQUIZ_LLM_PROVIDER, LADDERQUIZ_<VENDOR>_API_KEY, _MODEL,
// _BASE_URL and LADDERQUIZ_LLM_TIMEOUT.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	setFromEnv(&cfg.Provider, envPrefix+"LLM_PROVIDER")

	for _, v := range vendors {
		setFromEnv(v.key(&cfg), envPrefix+v.env("API_KEY"))
		setFromEnv(v.model(&cfg), envPrefix+v.env("MODEL"))
		if v.baseURL != nil {
			setFromEnv(v.baseURL(&cfg), envPrefix+v.env("BASE_URL"))
		}
	}

	if d, err := time.ParseDuration(os.Getenv(envPrefix + "LLM_TIMEOUT")); err == nil {
		cfg.Timeout = d
	}
	return cfg
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// DiscoverConfig selects the first vendor whose own API key variable
// (OPENAI_API_KEY, ANTHROPIC_API_KEY, ...) is set. It returns false when
// none is.
func DiscoverConfig() (Config, bool) {
	for _, v := range vendors {
		key := os.Getenv(v.env("API_KEY"))
		if key == "" {
			continue
		}
		cfg := DefaultConfig()
		cfg.Provider = v.name
		*v.key(&cfg) = key
		if v.baseURL != nil {
			setFromEnv(v.baseURL(&cfg), v.env("BASE_URL"))
		}
		return cfg, true
	}
	return Config{}, false
}

// Validate checks that the selected provider has its API key.
func (c Config) Validate() error {
	if c.Provider == "mock" {
		return nil
	}
	v, ok := lookupVendor(c.Provider)
	if !ok {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if *v.key(&c) == "" {
		return fmt.Errorf("%s%s is required for the %s provider", envPrefix, v.env("API_KEY"), v.name)
	}
	return nil
}
