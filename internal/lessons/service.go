package lessons

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/joeaphiboon/BiteSizedLearning/internal/llm"
	"github.com/joeaphiboon/BiteSizedLearning/internal/logger"
	"github.com/joeaphiboon/BiteSizedLearning/internal/store"
)

// DiagnosticKind classifies why a generation produced no lesson.
type DiagnosticKind string

const (
	// KindTransport covers network, authentication, rate limit and other
	// provider failures.
	KindTransport DiagnosticKind = "transport"
	// KindMalformed means the reply held no parseable lesson object.
	KindMalformed DiagnosticKind = "malformed"
	// KindInvalid means the object broke a lesson invariant.
	KindInvalid DiagnosticKind = "invalid"
	// KindInput means the request itself was unusable.
	KindInput DiagnosticKind = "input"
)

// Diagnostic describes a failed generation for display.
type Diagnostic struct {
	Kind    DiagnosticKind
	Message string
	// Detail is the raw reply or failing fragment, when there is one.
	Detail string
}

func (d *Diagnostic) String() string {
	if d == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// Outcome is the result of one generation. Exactly one of Lesson and
// Diagnostic is set.
type Outcome struct {
	Lesson     *Lesson
	Requested  Category
	Category   Category
	Topic      string
	Raw        string
	Diagnostic *Diagnostic
	Duration   time.Duration
}

// OK reports whether a lesson was produced.
func (o Outcome) OK() bool { return o.Lesson != nil }

// Generator runs topic selection then lesson writing and reports every
// failure as a Diagnostic.
type Generator struct {
	topics *TopicSelector
	writer *LessonWriter
	events store.EventRepo
	log    *logger.Logger
	intN   func(n int) int
}

// Option configures a Generator.
type Option func(*Generator)

// WithEvents records each outcome as a lesson event.
func WithEvents(repo store.EventRepo) Option {
	return func(g *Generator) {
		if repo != nil {
			g.events = repo
		}
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(g *Generator) {
		if log != nil {
			g.log = log
		}
	}
}

// WithRand replaces the source used to resolve Random. intN must return a
// value in [0, n).
func WithRand(intN func(n int) int) Option {
	return func(g *Generator) { g.intN = intN }
}

func NewGenerator(provider llm.Provider, cfg Config, opts ...Option) *Generator {
	g := &Generator{
		topics: NewTopicSelector(provider, cfg),
		writer: NewLessonWriter(provider, cfg),
		events: store.NopRepo{},
		log:    logger.NewNop(),
		intN:   rand.IntN,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate produces a lesson for a category label, which may be "random".
// It never returns an error; failures are carried in Outcome.Diagnostic.
func (g *Generator) Generate(ctx context.Context, category string) Outcome {
	start := time.Now()
	out := g.generate(ctx, category)
	out.Duration = time.Since(start)

	g.record(ctx, out)
	return out
}

func (g *Generator) generate(ctx context.Context, label string) Outcome {
	requested, err := ParseCategory(label)
	if err != nil {
		return Outcome{
			Requested:  Category(label),
			Diagnostic: &Diagnostic{Kind: KindInput, Message: err.Error()},
		}
	}

	out := Outcome{Requested: requested, Category: requested.Resolve(g.intN)}

	out.Topic, err = g.topics.SelectTopic(ctx, out.Category)
	if err != nil {
		out.Diagnostic = diagnose(err, "")
		return out
	}
	g.log.Info("generating lesson", "category", out.Category, "topic", out.Topic)

	out.Lesson, out.Raw, err = g.writer.WriteLesson(ctx, out.Category, out.Topic)
	if err != nil {
		out.Lesson = nil
		out.Diagnostic = diagnose(err, out.Raw)
	}
	return out
}

func diagnose(err error, raw string) *Diagnostic {
	var (
		parseErr   *ParseError
		missingErr *MissingKeysError
	)
	switch {
	case errors.As(err, &parseErr):
		return &Diagnostic{Kind: KindMalformed, Message: err.Error(), Detail: parseErr.Fragment}
	case errors.As(err, &missingErr), errors.Is(err, ErrNoJSON):
		return &Diagnostic{Kind: KindMalformed, Message: err.Error(), Detail: raw}
	case errors.Is(err, ErrInvalidLesson):
		return &Diagnostic{Kind: KindInvalid, Message: err.Error(), Detail: raw}
	case errors.Is(err, ErrEmptyTopic):
		return &Diagnostic{Kind: KindMalformed, Message: err.Error()}
	}
	detail := raw
	if detail == "" {
		detail = "No response received"
	}
	return &Diagnostic{Kind: KindTransport, Message: fmt.Sprintf("failed to generate lesson: %v", err), Detail: detail}
}

func (g *Generator) record(ctx context.Context, out Outcome) {
	data := store.LessonEventData{
		SessionID:         llm.SessionFrom(ctx),
		RequestedCategory: string(out.Requested),
		Category:          string(out.Category),
		Topic:             out.Topic,
		Success:           out.OK(),
		DurationMs:        out.Duration.Milliseconds(),
	}
	if out.Lesson != nil {
		data.Title = out.Lesson.Title
		g.log.Info("lesson generated",
			"category", out.Category,
			"title", out.Lesson.Title,
			"duration_ms", data.DurationMs,
			"session_id", data.SessionID,
		)
	} else {
		data.DiagnosticKind = string(out.Diagnostic.Kind)
		data.Diagnostic = out.Diagnostic.Message
		g.log.Warn("lesson generation failed",
			"category", out.Requested,
			"kind", out.Diagnostic.Kind,
			"error", out.Diagnostic.Message,
			"session_id", data.SessionID,
		)
	}

	if data.RequestedCategory == "" {
		// Schema requires a non-empty requested category.
		data.RequestedCategory = "unknown"
	}
	if err := g.events.AppendLesson(context.WithoutCancel(ctx), data); err != nil {
		g.log.Warn("failed to record lesson event", "error", err)
	}
}
