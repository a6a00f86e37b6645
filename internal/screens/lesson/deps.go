package lesson

import (
	"context"
	"time"

	"github.com/joeaphiboon/BiteSizedLearning/internal/lessons"
	"github.com/joeaphiboon/BiteSizedLearning/internal/llm"
	"github.com/joeaphiboon/BiteSizedLearning/internal/logger"
	"github.com/joeaphiboon/BiteSizedLearning/internal/session"
	"github.com/joeaphiboon/BiteSizedLearning/internal/store"
)

// ProviderFactory builds a provider for the credentials a session holds.
// *llm.Factory implements it.
type ProviderFactory interface {
	ForKey(ctx context.Context, provider, apiKey string) (llm.Provider, error)
}

// Deps groups what the lesson screen needs to generate and record lessons.
type Deps struct {
	Providers ProviderFactory
	Lessons   lessons.Config
	Events    store.EventRepo
	Log       *logger.Logger

	// Timeout bounds one generation. Zero means no limit.
	Timeout time.Duration
}

func (d Deps) withDefaults() Deps {
	if d.Events == nil {
		d.Events = store.NopRepo{}
	}
	if d.Log == nil {
		d.Log = logger.NewNop()
	}
	return d
}

// generate runs one generation for st, which must already be marked as
// generating, and applies the outcome to it.
func (d Deps) generate(ctx context.Context, st *session.State, category lessons.Category) lessons.Outcome {
	provider, apiKey := st.Credentials()
	p, err := d.Providers.ForKey(ctx, provider, apiKey)
	if err != nil {
		out := lessons.Outcome{
			Requested:  category,
			Diagnostic: &lessons.Diagnostic{Kind: lessons.KindInput, Message: err.Error()},
		}
		st.FinishGenerate(out)
		return out
	}

	gen := lessons.NewGenerator(p, d.Lessons, lessons.WithEvents(d.Events), lessons.WithLogger(d.Log))
	out := gen.Generate(llm.WithSession(ctx, st.ID()), string(category))
	st.FinishGenerate(out)
	return out
}

// recordAnswer stores an answer event for the lesson currently in st.
func (d Deps) recordAnswer(ctx context.Context, st *session.State, option int, correct bool) {
	v := st.Snapshot()
	if v.Lesson == nil {
		return
	}
	ev := store.AnswerEventData{
		SessionID:   st.ID(),
		Category:    v.Lesson.Category,
		LessonTitle: v.Lesson.Title,
		Chosen:      option,
		Correct:     correct,
	}
	if err := d.Events.AppendAnswer(ctx, ev); err != nil {
		d.Log.Warn("failed to record answer event", "error", err, "session_id", st.ID())
	}
}
