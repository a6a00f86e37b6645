package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit     int       // max results (0 = unlimited)
	After     int64     // sequence > After
	Before    int64     // sequence < Before
	From      time.Time // timestamp >= From
	To        time.Time // timestamp <= To
	Purpose   string    // LLM events only
	SessionID string
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	SessionID    string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LessonEventData captures the outcome of one generation attempt.
type LessonEventData struct {
	SessionID         string
	RequestedCategory string
	Category          string
	Topic             string
	Title             string
	Success           bool
	DiagnosticKind    string
	Diagnostic        string
	DurationMs        int64
}

// LessonEventRecord is a stored lesson event.
type LessonEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LessonEventData
}

// AnswerEventData captures an option picked in an exercise.
type AnswerEventData struct {
	SessionID   string
	Category    string
	LessonTitle string
	Chosen      int
	Correct     bool
}

// EventRepo provides append access to domain events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// AppendLesson records a generation outcome.
	AppendLesson(ctx context.Context, data LessonEventData) error

	// AppendAnswer records an answer selection.
	AppendAnswer(ctx context.Context, data AnswerEventData) error
}

// NopRepo discards all events. Used when no database is configured.
type NopRepo struct{}

func (NopRepo) AppendLLMRequest(context.Context, LLMRequestEventData) error { return nil }
func (NopRepo) AppendLesson(context.Context, LessonEventData) error         { return nil }
func (NopRepo) AppendAnswer(context.Context, AnswerEventData) error         { return nil }
