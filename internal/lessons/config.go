package lessons

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds lesson generation settings.
type Config struct {
	Temperature     float64
	TopicMaxTokens  int
	LessonMaxTokens int
	Validation      ValidationMode
	Extract         Strategy

	// StructuredOutput asks the provider for native JSON output using
	// LessonSchema. Extraction still runs on the returned text.
	StructuredOutput bool
}

// DefaultConfig returns the settings the prompts were tuned with.
func DefaultConfig() Config {
	return Config{
		Temperature:     0.7,
		TopicMaxTokens:  50,
		LessonMaxTokens: 4500,
		Validation:      ValidationStrict,
		Extract:         StrategyBraces,
	}
}

// ConfigFromEnv overrides DefaultConfig with BITESIZED_* variables.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("BITESIZED_TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("BITESIZED_TEMPERATURE: %w", err)
		}
		cfg.Temperature = f
	}
	for name, dst := range map[string]*int{
		"BITESIZED_TOPIC_MAX_TOKENS":  &cfg.TopicMaxTokens,
		"BITESIZED_LESSON_MAX_TOKENS": &cfg.LessonMaxTokens,
	} {
		if v := os.Getenv(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return cfg, fmt.Errorf("%s: %w", name, err)
			}
			*dst = n
		}
	}

	mode, err := ParseValidationMode(os.Getenv("BITESIZED_VALIDATION"))
	if err != nil {
		return cfg, err
	}
	cfg.Validation = mode

	strategy, err := ParseStrategy(os.Getenv("BITESIZED_EXTRACT"))
	if err != nil {
		return cfg, err
	}
	cfg.Extract = strategy

	if v := os.Getenv("BITESIZED_STRUCTURED_OUTPUT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("BITESIZED_STRUCTURED_OUTPUT: %w", err)
		}
		cfg.StructuredOutput = b
	}

	return cfg, cfg.Validate()
}

// Validate reports settings no provider would accept.
func (c Config) Validate() error {
	if c.Temperature < 0 || c.Temperature > 1 {
		return fmt.Errorf("temperature %.2f out of range [0, 1]", c.Temperature)
	}
	if c.TopicMaxTokens <= 0 || c.LessonMaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive (topic %d, lesson %d)", c.TopicMaxTokens, c.LessonMaxTokens)
	}
	return nil
}
