package lessons

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/joeaphiboon/BiteSizedLearning/internal/llm"
	"github.com/joeaphiboon/BiteSizedLearning/internal/logger"
	"github.com/joeaphiboon/BiteSizedLearning/internal/store"
)

type lessonRecorder struct {
	store.NopRepo
	mu     sync.Mutex
	events []store.LessonEventData
}

func (r *lessonRecorder) AppendLesson(_ context.Context, data store.LessonEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data)
	return nil
}

func TestGenerator_TechnologyLesson(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockText("  Quantum computing basics\n"),
		llm.MockText(filledLesson("technology")),
	)
	gen := NewGenerator(mock, DefaultConfig())

	out := gen.Generate(t.Context(), "technology")
	if !out.OK() {
		t.Fatalf("expected lesson, got diagnostic %v", out.Diagnostic)
	}
	if out.Diagnostic != nil {
		t.Errorf("unexpected diagnostic: %v", out.Diagnostic)
	}
	if out.Lesson.Category != "technology" {
		t.Errorf("category = %q, want technology", out.Lesson.Category)
	}
	if len(out.Lesson.Exercise.Options) != 4 {
		t.Errorf("options = %d, want 4", len(out.Lesson.Exercise.Options))
	}
	if out.Topic != "Quantum computing basics" {
		t.Errorf("topic = %q", out.Topic)
	}

	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}

	topicReq := mock.Calls[0]
	if topicReq.System != topicSystemPrompt {
		t.Errorf("topic system prompt = %q", topicReq.System)
	}
	if want := "Suggest one specific, interesting topic in technology for a 5-minute lesson."; topicReq.Messages[0].Content != want {
		t.Errorf("topic prompt = %q", topicReq.Messages[0].Content)
	}
	if topicReq.MaxTokens != 50 || topicReq.Temperature != 0.7 {
		t.Errorf("topic params = %d tokens, %.1f temperature", topicReq.MaxTokens, topicReq.Temperature)
	}

	lessonReq := mock.Calls[1]
	prompt := lessonReq.Messages[0].Content
	if !strings.HasPrefix(prompt, "Create an educational lesson about Quantum computing basics in technology.") {
		t.Errorf("lesson prompt starts %q", prompt[:80])
	}
	if !strings.Contains(prompt, `"category": "technology"`) {
		t.Error("lesson prompt does not pin the category")
	}
	if lessonReq.MaxTokens != 4500 {
		t.Errorf("lesson max tokens = %d", lessonReq.MaxTokens)
	}
	if lessonReq.Schema != nil {
		t.Error("schema sent without structured output enabled")
	}
}

func TestGenerator_MissingKeys(t *testing.T) {
	raw := `Here is the lesson: {"title":"X"}`
	mock := llm.NewMockProvider(llm.MockText("Tides"), llm.MockText(raw))
	out := NewGenerator(mock, DefaultConfig()).Generate(t.Context(), "science")

	if out.Lesson != nil {
		t.Fatal("expected no lesson")
	}
	if out.Diagnostic.Kind != KindMalformed {
		t.Errorf("kind = %q, want malformed", out.Diagnostic.Kind)
	}
	if !strings.Contains(out.Diagnostic.Message, "missing required keys") {
		t.Errorf("message = %q", out.Diagnostic.Message)
	}
	if out.Diagnostic.Detail != raw {
		t.Errorf("detail = %q, want raw response", out.Diagnostic.Detail)
	}
}

func TestGenerator_NoJSON(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockText("Tides"), llm.MockText("No braces here at all."))
	out := NewGenerator(mock, DefaultConfig()).Generate(t.Context(), "science")

	if out.Lesson != nil || out.Diagnostic == nil {
		t.Fatal("expected diagnostic")
	}
	if out.Diagnostic.Kind != KindMalformed || !strings.Contains(out.Diagnostic.Message, "no JSON structure found") {
		t.Errorf("diagnostic = %v", out.Diagnostic)
	}
	if out.Raw != "No braces here at all." {
		t.Errorf("raw = %q", out.Raw)
	}
}

func TestGenerator_TwoBlocks(t *testing.T) {
	raw := filledLesson("history") + "\nAlternatively:\n" + filledLesson("history")

	mock := llm.NewMockProvider(llm.MockText("Magna Carta"), llm.MockText(raw))
	out := NewGenerator(mock, DefaultConfig()).Generate(t.Context(), "history")
	if out.OK() {
		t.Fatal("braces strategy should fail on two separate blocks")
	}
	if out.Diagnostic.Kind != KindMalformed {
		t.Errorf("kind = %q", out.Diagnostic.Kind)
	}
	if out.Diagnostic.Detail != raw {
		t.Errorf("detail should be the failing fragment spanning both blocks")
	}

	cfg := DefaultConfig()
	cfg.Extract = StrategyScan
	mock = llm.NewMockProvider(llm.MockText("Magna Carta"), llm.MockText(raw))
	out = NewGenerator(mock, cfg).Generate(t.Context(), "history")
	if !out.OK() {
		t.Fatalf("scan strategy: %v", out.Diagnostic)
	}
}

func TestGenerator_TransportErrors(t *testing.T) {
	tests := []struct {
		name  string
		resps []llm.MockResponse
		calls int
	}{
		{"topic call fails", []llm.MockResponse{llm.MockError(&llm.ErrRateLimit{Err: errors.New("slow down")})}, 1},
		{"lesson call fails", []llm.MockResponse{llm.MockText("Tides"), llm.MockError(&llm.ErrAuth{Err: errors.New("401")})}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider(tt.resps...)
			out := NewGenerator(mock, DefaultConfig()).Generate(t.Context(), "science")

			if out.Lesson != nil {
				t.Fatal("expected no lesson")
			}
			if out.Diagnostic.Kind != KindTransport {
				t.Errorf("kind = %q, want transport", out.Diagnostic.Kind)
			}
			if out.Diagnostic.Detail != "No response received" {
				t.Errorf("detail = %q", out.Diagnostic.Detail)
			}
			if mock.CallCount() != tt.calls {
				t.Errorf("calls = %d, want %d (no retry)", mock.CallCount(), tt.calls)
			}
		})
	}
}

func TestGenerator_EmptyTopic(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockText("   \n"))
	out := NewGenerator(mock, DefaultConfig()).Generate(t.Context(), "science")
	if out.OK() || !strings.Contains(out.Diagnostic.Message, "empty topic") {
		t.Fatalf("diagnostic = %v", out.Diagnostic)
	}
	if mock.CallCount() != 1 {
		t.Errorf("lesson requested after empty topic")
	}
}

func TestGenerator_UnknownCategory(t *testing.T) {
	mock := llm.NewMockProvider()
	rec := &lessonRecorder{}
	out := NewGenerator(mock, DefaultConfig(), WithEvents(rec)).Generate(t.Context(), "cooking")

	if out.Diagnostic == nil || out.Diagnostic.Kind != KindInput {
		t.Fatalf("diagnostic = %v", out.Diagnostic)
	}
	if mock.CallCount() != 0 {
		t.Error("provider called for unknown category")
	}
	if len(rec.events) != 1 || rec.events[0].DiagnosticKind != "input" {
		t.Errorf("events = %+v", rec.events)
	}
}

func TestGenerator_InvalidLesson(t *testing.T) {
	bad := strings.Replace(filledLesson("science"), `"correctAnswer": 0`, `"correctAnswer": 7`, 1)

	mock := llm.NewMockProvider(llm.MockText("Tides"), llm.MockText(bad))
	out := NewGenerator(mock, DefaultConfig()).Generate(t.Context(), "science")
	if out.OK() || out.Diagnostic.Kind != KindInvalid {
		t.Fatalf("strict: diagnostic = %v", out.Diagnostic)
	}

	cfg := DefaultConfig()
	cfg.Validation = ValidationKeys
	mock = llm.NewMockProvider(llm.MockText("Tides"), llm.MockText(bad))
	out = NewGenerator(mock, cfg).Generate(t.Context(), "science")
	if !out.OK() {
		t.Fatalf("keys mode: %v", out.Diagnostic)
	}
	for i := range out.Lesson.Exercise.Options {
		if out.Lesson.IsCorrect(i) {
			t.Errorf("option %d reported correct with out-of-range answer", i)
		}
	}
}

func TestGenerator_RandomCategory(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockText("Cognitive dissonance"), llm.MockText(filledLesson("psychology")))
	gen := NewGenerator(mock, DefaultConfig(), WithRand(func(n int) int { return 2 }))

	out := gen.Generate(t.Context(), "random")
	if !out.OK() {
		t.Fatalf("diagnostic: %v", out.Diagnostic)
	}
	if out.Requested != Random || out.Category != Psychology {
		t.Errorf("requested %q resolved %q", out.Requested, out.Category)
	}
	if !strings.Contains(mock.Calls[0].Messages[0].Content, "in psychology for") {
		t.Error("topic prompt not built for the resolved category")
	}
}

func TestGenerator_StructuredOutput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StructuredOutput = true
	mock := llm.NewMockProvider(llm.MockText("Tides"), llm.MockText(filledLesson("science")))

	out := NewGenerator(mock, cfg).Generate(t.Context(), "science")
	if !out.OK() {
		t.Fatalf("diagnostic: %v", out.Diagnostic)
	}
	if mock.Calls[0].Schema != nil {
		t.Error("topic request must stay free text")
	}
	if mock.Calls[1].Schema != LessonSchema {
		t.Error("lesson request should carry LessonSchema")
	}
}

func TestGenerator_RecordsAndLogs(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	rec := &lessonRecorder{}
	mock := llm.NewMockProvider(llm.MockText("Tides"), llm.MockText(filledLesson("science")))

	gen := NewGenerator(mock, DefaultConfig(),
		WithEvents(rec),
		WithLogger(logger.FromZap(zap.New(core))),
	)
	ctx := llm.WithSession(t.Context(), "session-1")
	out := gen.Generate(ctx, "science")
	if !out.OK() {
		t.Fatalf("diagnostic: %v", out.Diagnostic)
	}

	if len(rec.events) != 1 {
		t.Fatalf("events = %d, want 1", len(rec.events))
	}
	ev := rec.events[0]
	if !ev.Success || ev.SessionID != "session-1" || ev.Topic != "Tides" || ev.Title != "Qubits and Superposition" {
		t.Errorf("event = %+v", ev)
	}
	if logs.FilterMessage("lesson generated").Len() != 1 {
		t.Errorf("expected one 'lesson generated' log, got %v", logs.All())
	}
}

func TestGenerator_CancelledContext(t *testing.T) {
	wait := make(chan struct{})
	mock := llm.NewMockProvider(llm.MockResponse{Wait: wait})

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	out := NewGenerator(mock, DefaultConfig()).Generate(ctx, "science")
	if out.OK() || out.Diagnostic.Kind != KindTransport {
		t.Fatalf("diagnostic = %v", out.Diagnostic)
	}
}
