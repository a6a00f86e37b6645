package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/joeaphiboon/BiteSizedLearning/internal/lessons"
	"github.com/joeaphiboon/BiteSizedLearning/internal/llm"
	"github.com/joeaphiboon/BiteSizedLearning/internal/session"
	"github.com/joeaphiboon/BiteSizedLearning/internal/store"
)

// requestError is a failure the caller caused, with the status to report.
type requestError struct {
	status  int
	message string
}

func (e *requestError) Error() string { return e.message }

// generate runs one generation for st. A non-nil error means no
// generation was attempted; otherwise the outcome has been applied to st.
func (s *Server) generate(ctx context.Context, st *session.State, label string) (lessons.Outcome, error) {
	category, err := lessons.ParseCategory(label)
	if err != nil {
		return lessons.Outcome{}, &requestError{http.StatusBadRequest, err.Error()}
	}
	st.SetCategory(category)

	provider, apiKey := st.Credentials()
	if err := st.BeginGenerate(provider != llm.ProviderMock); err != nil {
		switch {
		case errors.Is(err, session.ErrNoAPIKey):
			return lessons.Outcome{}, &requestError{http.StatusBadRequest, session.PromptAPIKey}
		case errors.Is(err, session.ErrGenerating):
			return lessons.Outcome{}, &requestError{http.StatusConflict, err.Error()}
		}
		return lessons.Outcome{}, err
	}

	p, err := s.providers.ForKey(ctx, provider, apiKey)
	if err != nil {
		out := lessons.Outcome{
			Requested:  category,
			Diagnostic: &lessons.Diagnostic{Kind: lessons.KindInput, Message: err.Error()},
		}
		st.FinishGenerate(out)
		return out, nil
	}

	ctx, cancel := context.WithTimeout(llm.WithSession(ctx, st.ID()), s.cfg.GenerateTimeout)
	defer cancel()

	gen := lessons.NewGenerator(p, s.lessonCfg, lessons.WithEvents(s.events), lessons.WithLogger(s.log))
	out := gen.Generate(ctx, string(category))
	st.FinishGenerate(out)
	return out, nil
}

// answer records an answer selection and logs it as an event.
func (s *Server) answer(ctx context.Context, st *session.State, option int) (session.Feedback, error) {
	fb, err := st.SelectAnswer(option)
	switch {
	case errors.Is(err, session.ErrNoLesson):
		return fb, &requestError{http.StatusConflict, err.Error()}
	case errors.Is(err, session.ErrOptionRange):
		return fb, &requestError{http.StatusBadRequest, err.Error()}
	case err != nil:
		return fb, err
	}

	v := st.Snapshot()
	if v.Lesson != nil {
		ev := store.AnswerEventData{
			SessionID:   st.ID(),
			Category:    v.Lesson.Category,
			LessonTitle: v.Lesson.Title,
			Chosen:      option,
			Correct:     fb.Correct,
		}
		if err := s.events.AppendAnswer(context.WithoutCancel(ctx), ev); err != nil {
			s.log.Warn("failed to record answer event", "error", err, "session_id", st.ID())
		}
	}
	return fb, nil
}

func statusOf(err error) (int, string) {
	var re *requestError
	if errors.As(err, &re) {
		return re.status, re.message
	}
	return http.StatusInternalServerError, "internal error"
}
