package llm

import (
	"context"
	"fmt"

	"github.com/joeaphiboon/BiteSizedLearning/internal/logger"
	"github.com/joeaphiboon/BiteSizedLearning/internal/store"
)

// NewProvider creates a Provider from configuration, wrapped with the
// timeout and logging middleware. eventRepo and log may be nil.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, log *logger.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case ProviderGroq:
		base, err = NewGroqProvider(cfg.Groq)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderMock:
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// caller → timeout → logging → base
	logged := WithLogging(base, cfg.Provider, eventRepo, log)
	return WithTimeout(logged, cfg.Timeout), nil
}

// Factory builds providers on demand, typically once per user-supplied
// API key. The zero value is not usable; see NewFactory.
type Factory struct {
	base   Config
	events store.EventRepo
	log    *logger.Logger
}

// NewFactory returns a Factory that derives per-key configs from base.
func NewFactory(base Config, events store.EventRepo, log *logger.Logger) *Factory {
	return &Factory{base: base, events: events, log: log}
}

// Config returns the base configuration.
func (f *Factory) Config() Config {
	return f.base
}

// ForKey builds a provider for the base provider using apiKey. An empty
// key falls back to the key from the environment, if any.
func (f *Factory) ForKey(ctx context.Context, provider, apiKey string) (Provider, error) {
	cfg := f.base
	if provider != "" && provider != cfg.Provider {
		cfg.Provider = provider
	}
	if apiKey != "" {
		cfg = cfg.WithAPIKey(apiKey)
	}
	return NewProvider(ctx, cfg, f.events, f.log)
}
