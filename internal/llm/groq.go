package llm

const (
	defaultGroqBaseURL = "https://api.groq.com/openai/v1"
	defaultGroqModel   = "mixtral-8x7b-32768"
)

// groqModels maps friendly names to Groq model IDs.
var groqModels = map[string]string{
	"mixtral":     "mixtral-8x7b-32768",
	"llama-70b":   "llama-3.3-70b-versatile",
	"llama-8b":    "llama-3.1-8b-instant",
	"gemma":       "gemma2-9b-it",
	"llama-scout": "meta-llama/llama-4-scout-17b-16e-instruct",
}

// GroqProvider talks to Groq's OpenAI-compatible chat completions endpoint.
type GroqProvider struct {
	*OpenAIProvider
}

// NewGroqProvider creates a provider targeting the Groq API.
func NewGroqProvider(cfg OpenAIConfig) (*GroqProvider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGroqBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultGroqModel
	}

	inner, err := newOpenAICompatible("groq", cfg, groqModels, true)
	if err != nil {
		return nil, err
	}

	return &GroqProvider{OpenAIProvider: inner}, nil
}
