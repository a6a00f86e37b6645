package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderGroq       = "groq"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Providers lists the selectable providers in display order.
var Providers = []string{ProviderGroq, ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderOpenRouter}

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use. Default: "groq".
	Provider string

	Groq       OpenAIConfig
	OpenAI     OpenAIConfig
	Anthropic  AnthropicConfig
	Gemini     GeminiConfig
	OpenRouter OpenAIConfig

	// Timeout bounds a single LLM request. Default: 60s.
	Timeout time.Duration
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string
	Model   string // Default: "claude-haiku"
	BaseURL string
}

// OpenAIConfig configures any OpenAI-compatible endpoint: OpenAI itself,
// Groq and OpenRouter.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // Optional. Empty means the vendor default.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderGroq,
		Groq:       OpenAIConfig{Model: defaultGroqModel},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenAIConfig{Model: "google/gemini-2.0-flash-001"},
		Timeout:    60 * time.Second,
	}
}

// ConfigFromEnv builds a Config from BITESIZED_* environment variables,
// falling back to the vendor's conventional key variable and then to defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("BITESIZED_LLM_PROVIDER"); p != "" {
		cfg.Provider = strings.ToLower(p)
	}
	if t := os.Getenv("BITESIZED_LLM_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	cfg.Groq.APIKey = firstEnv("BITESIZED_GROQ_API_KEY", "GROQ_API_KEY")
	if m := os.Getenv("BITESIZED_GROQ_MODEL"); m != "" {
		cfg.Groq.Model = m
	}

	cfg.OpenAI.APIKey = firstEnv("BITESIZED_OPENAI_API_KEY", "OPENAI_API_KEY")
	if m := os.Getenv("BITESIZED_OPENAI_MODEL"); m != "" {
		cfg.OpenAI.Model = m
	}
	if u := os.Getenv("BITESIZED_OPENAI_BASE_URL"); u != "" {
		cfg.OpenAI.BaseURL = u
	}

	cfg.Anthropic.APIKey = firstEnv("BITESIZED_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	if m := os.Getenv("BITESIZED_ANTHROPIC_MODEL"); m != "" {
		cfg.Anthropic.Model = m
	}

	cfg.Gemini.APIKey = firstEnv("BITESIZED_GEMINI_API_KEY", "GEMINI_API_KEY")
	if m := os.Getenv("BITESIZED_GEMINI_MODEL"); m != "" {
		cfg.Gemini.Model = m
	}

	cfg.OpenRouter.APIKey = firstEnv("BITESIZED_OPENROUTER_API_KEY", "OPENROUTER_API_KEY")
	if m := os.Getenv("BITESIZED_OPENROUTER_MODEL"); m != "" {
		cfg.OpenRouter.Model = m
	}

	return cfg
}

// DiscoverConfig is ConfigFromEnv that, when no provider was chosen
// explicitly, switches to the first provider (Groq, OpenAI, Anthropic,
// Gemini, OpenRouter) whose API key is present. The bool reports whether
// any usable key was found.
func DiscoverConfig() (Config, bool) {
	cfg := ConfigFromEnv()
	if os.Getenv("BITESIZED_LLM_PROVIDER") != "" {
		return cfg, cfg.APIKey() != "" || cfg.Provider == ProviderMock
	}
	for _, p := range Providers {
		probe := cfg
		probe.Provider = p
		if probe.APIKey() != "" {
			return probe, true
		}
	}
	return cfg, false
}

// APIKey returns the key configured for the selected provider.
func (c Config) APIKey() string {
	switch c.Provider {
	case ProviderGroq:
		return c.Groq.APIKey
	case ProviderOpenAI:
		return c.OpenAI.APIKey
	case ProviderAnthropic:
		return c.Anthropic.APIKey
	case ProviderGemini:
		return c.Gemini.APIKey
	case ProviderOpenRouter:
		return c.OpenRouter.APIKey
	}
	return ""
}

// WithAPIKey returns a copy of c with key set for the selected provider.
// Keys typed in by a user at runtime go through here.
func (c Config) WithAPIKey(key string) Config {
	key = strings.TrimSpace(key)
	switch c.Provider {
	case ProviderGroq:
		c.Groq.APIKey = key
	case ProviderOpenAI:
		c.OpenAI.APIKey = key
	case ProviderAnthropic:
		c.Anthropic.APIKey = key
	case ProviderGemini:
		c.Gemini.APIKey = key
	case ProviderOpenRouter:
		c.OpenRouter.APIKey = key
	}
	return c
}

// WithModel returns a copy of c with the model overridden for the selected
// provider. An empty model leaves the default in place.
func (c Config) WithModel(model string) Config {
	if model == "" {
		return c
	}
	switch c.Provider {
	case ProviderGroq:
		c.Groq.Model = model
	case ProviderOpenAI:
		c.OpenAI.Model = model
	case ProviderAnthropic:
		c.Anthropic.Model = model
	case ProviderGemini:
		c.Gemini.Model = model
	case ProviderOpenRouter:
		c.OpenRouter.Model = model
	}
	return c
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderGroq, ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderOpenRouter:
		if c.APIKey() == "" {
			return fmt.Errorf("%w: BITESIZED_%s_API_KEY is required for the %s provider",
				ErrMissingAPIKey, strings.ToUpper(c.Provider), c.Provider)
		}
	case ProviderMock:
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}

// keyPrefixes holds the conventional prefix of each vendor's API keys.
var keyPrefixes = map[string]string{
	ProviderGroq:       "gsk_",
	ProviderOpenAI:     "sk-",
	ProviderAnthropic:  "sk-ant-",
	ProviderOpenRouter: "sk-or-",
	ProviderGemini:     "AIza",
}

// CheckKeyPrefix returns a human-readable warning when key does not look
// like a key for provider, or "" when it does. It never rejects the key.
func CheckKeyPrefix(provider, key string) string {
	prefix, ok := keyPrefixes[provider]
	if !ok || key == "" || strings.HasPrefix(key, prefix) {
		return ""
	}
	return fmt.Sprintf("Warning: %s API keys usually start with %q", provider, prefix)
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
