package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/joeaphiboon/BiteSizedLearning/internal/lessons"
	"github.com/joeaphiboon/BiteSizedLearning/internal/session"
)

const maxBodyBytes = 1 << 20

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

type diagnosticResponse struct {
	Kind    lessons.DiagnosticKind `json:"kind"`
	Message string                 `json:"message"`
	Detail  string                 `json:"detail,omitempty"`
}

type feedbackResponse struct {
	Correct bool   `json:"correct"`
	Message string `json:"message"`
}

type lessonResponse struct {
	Lesson     *lessons.Lesson     `json:"lesson"`
	Category   lessons.Category    `json:"category"`
	Topic      string              `json:"topic,omitempty"`
	Selected   *int                `json:"selected"`
	Feedback   *feedbackResponse   `json:"feedback,omitempty"`
	Reflection string              `json:"reflection"`
	Diagnostic *diagnosticResponse `json:"diagnostic,omitempty"`
	Generating bool                `json:"generating"`
}

func toDiagnostic(d *lessons.Diagnostic) *diagnosticResponse {
	if d == nil {
		return nil
	}
	return &diagnosticResponse{Kind: d.Kind, Message: d.Message, Detail: d.Detail}
}

func toLessonResponse(v session.View) lessonResponse {
	resp := lessonResponse{
		Lesson:     v.Lesson,
		Category:   v.Category,
		Topic:      v.Topic,
		Selected:   v.Selected,
		Reflection: v.Reflection,
		Diagnostic: toDiagnostic(v.Diagnostic),
		Generating: v.Generating,
	}
	if v.Feedback != nil {
		resp.Feedback = &feedbackResponse{Correct: v.Feedback.Correct, Message: v.Feedback.Message}
	}
	return resp
}

func (s *Server) apiCategories(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, categoryList())
}

func (s *Server) apiSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Provider string `json:"provider"`
		APIKey   string `json:"apiKey"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	warning := sessionFrom(r.Context()).SetCredentials(strings.TrimSpace(req.Provider), strings.TrimSpace(req.APIKey))
	JSON(w, http.StatusOK, map[string]string{"warning": warning})
}

func (s *Server) apiGetLesson(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, toLessonResponse(sessionFrom(r.Context()).Snapshot()))
}

func (s *Server) apiGenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	st := sessionFrom(r.Context())
	out, err := s.generate(r.Context(), st, req.Category)
	if err != nil {
		status, msg := statusOf(err)
		Error(w, status, msg)
		return
	}
	if !out.OK() {
		JSON(w, http.StatusBadGateway, map[string]any{
			"error":      out.Diagnostic.Message,
			"diagnostic": toDiagnostic(out.Diagnostic),
		})
		return
	}
	JSON(w, http.StatusOK, toLessonResponse(st.Snapshot()))
}

func (s *Server) apiAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Option *int `json:"option"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Option == nil {
		Error(w, http.StatusBadRequest, "option is required")
		return
	}

	fb, err := s.answer(r.Context(), sessionFrom(r.Context()), *req.Option)
	if err != nil {
		status, msg := statusOf(err)
		Error(w, status, msg)
		return
	}
	JSON(w, http.StatusOK, feedbackResponse{Correct: fb.Correct, Message: fb.Message})
}

func (s *Server) apiReflection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := sessionFrom(r.Context()).SetReflection(req.Text); err != nil {
		Error(w, http.StatusConflict, err.Error())
		return
	}
	JSON(w, http.StatusOK, map[string]string{"reflection": req.Text})
}
