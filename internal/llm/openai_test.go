package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

// newTestServer returns the base URL of a fake chat completions endpoint.
func newTestServer(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server.URL + "/v1"
}

func completionHandler(t *testing.T, content, finish string, seen *openai.ChatCompletionRequest) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if seen != nil {
			if err := json.NewDecoder(r.Body).Decode(seen); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1234567890,
			"model":   "mixtral-8x7b-32768",
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": content},
					"finish_reason": finish,
				},
			},
			"usage": map[string]any{
				"prompt_tokens":     40,
				"completion_tokens": 25,
				"total_tokens":      65,
			},
		})
	}
}

func errorHandler(status int, kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": kind, "type": kind},
		})
	}
}

func TestGroqProvider_SendsSystemThenUser(t *testing.T) {
	var seen openai.ChatCompletionRequest
	base := newTestServer(t, completionHandler(t, "  Photosynthesis  ", "stop", &seen))

	p, err := NewGroqProvider(OpenAIConfig{APIKey: "gsk_test", BaseURL: base})
	if err != nil {
		t.Fatalf("NewGroqProvider: %v", err)
	}

	resp, err := p.Generate(context.Background(), Request{
		System:      "Respond with only a single topic name.",
		Messages:    UserMessage("Suggest one topic in science."),
		MaxTokens:   50,
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Text() != "Photosynthesis" {
		t.Errorf("Text() = %q, want %q", resp.Text(), "Photosynthesis")
	}
	if resp.Usage.InputTokens != 40 || resp.Usage.OutputTokens != 25 {
		t.Errorf("usage = %+v", resp.Usage)
	}
	if resp.StopReason != "end" {
		t.Errorf("stop reason = %q, want end", resp.StopReason)
	}

	if seen.Model != defaultGroqModel {
		t.Errorf("model = %q, want %q", seen.Model, defaultGroqModel)
	}
	if len(seen.Messages) != 2 || seen.Messages[0].Role != openai.ChatMessageRoleSystem || seen.Messages[1].Role != openai.ChatMessageRoleUser {
		t.Fatalf("messages = %+v", seen.Messages)
	}
	if seen.MaxTokens != 50 {
		t.Errorf("max_tokens = %d, want 50", seen.MaxTokens)
	}
	if seen.Temperature != float32(0.7) {
		t.Errorf("temperature = %v, want 0.7", seen.Temperature)
	}
	if seen.ResponseFormat != nil {
		t.Error("plain-text request must not set a response format")
	}
}

func TestOpenAIProvider_UsesMaxCompletionTokens(t *testing.T) {
	var seen openai.ChatCompletionRequest
	base := newTestServer(t, completionHandler(t, "ok", "stop", &seen))

	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o-mini", BaseURL: base})
	if err != nil {
		t.Fatalf("NewOpenAIProvider: %v", err)
	}
	if _, err := p.Generate(context.Background(), Request{Messages: UserMessage("hi"), MaxTokens: 4500}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen.MaxCompletionTokens != 4500 || seen.MaxTokens != 0 {
		t.Errorf("max_completion_tokens = %d, max_tokens = %d", seen.MaxCompletionTokens, seen.MaxTokens)
	}
}

func TestOpenAIProvider_TruncatedTextIsNotAnError(t *testing.T) {
	base := newTestServer(t, completionHandler(t, `{"title": "Half a les`, "length", nil))
	p, _ := NewGroqProvider(OpenAIConfig{APIKey: "gsk_test", BaseURL: base})

	resp, err := p.Generate(context.Background(), Request{Messages: UserMessage("lesson")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StopReason != "max_tokens" {
		t.Errorf("stop reason = %q, want max_tokens", resp.StopReason)
	}
}

func TestOpenAIProvider_TruncatedStructuredOutput(t *testing.T) {
	base := newTestServer(t, completionHandler(t, `{"name":"A`, "length", nil))
	p, _ := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test", BaseURL: base})

	_, err := p.Generate(context.Background(), Request{Messages: UserMessage("x"), Schema: testSchema()})
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("expected ErrMaxTokensExceeded, got %T (%v)", err, err)
	}
}

func TestOpenAIProvider_SchemaValidation(t *testing.T) {
	base := newTestServer(t, completionHandler(t, `{"name":"Alice"}`, "stop", nil))
	p, _ := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test", BaseURL: base})

	_, err := p.Generate(context.Background(), Request{Messages: UserMessage("x"), Schema: testSchema()})
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %T (%v)", err, err)
	}
}

func TestOpenAIProvider_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"rate limit", http.StatusTooManyRequests, func(err error) bool {
			var e *ErrRateLimit
			return errors.As(err, &e)
		}},
		{"unauthorized", http.StatusUnauthorized, func(err error) bool {
			var e *ErrAuth
			return errors.As(err, &e)
		}},
		{"server error", http.StatusInternalServerError, func(err error) bool {
			var e *ErrProviderUnavailable
			return errors.As(err, &e)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := newTestServer(t, errorHandler(tt.status, tt.name))
			p, _ := NewGroqProvider(OpenAIConfig{APIKey: "gsk_test", BaseURL: base})

			_, err := p.Generate(context.Background(), Request{Messages: UserMessage("x")})
			if err == nil {
				t.Fatal("expected error")
			}
			if !tt.check(err) {
				t.Fatalf("unexpected error type %T (%v)", err, err)
			}
		})
	}
}

func TestOpenAIProvider_NoChoices(t *testing.T) {
	base := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	})
	p, _ := NewGroqProvider(OpenAIConfig{APIKey: "gsk_test", BaseURL: base})

	_, err := p.Generate(context.Background(), Request{Messages: UserMessage("x")})
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %T (%v)", err, err)
	}
}

func TestGroqModelAliases(t *testing.T) {
	p, err := NewGroqProvider(OpenAIConfig{APIKey: "gsk_test", Model: "llama-70b"})
	if err != nil {
		t.Fatalf("NewGroqProvider: %v", err)
	}
	if p.ModelID() != "llama-3.3-70b-versatile" {
		t.Errorf("ModelID = %q", p.ModelID())
	}

	if _, err := NewGroqProvider(OpenAIConfig{}); err == nil {
		t.Error("expected error for empty API key")
	}
}
