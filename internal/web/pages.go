package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/joeaphiboon/BiteSizedLearning/internal/lessons"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	st := sessionFrom(r.Context())
	if err := r.ParseForm(); err != nil {
		s.renderPage(w, r, http.StatusBadRequest, Notice{"error", err.Error()})
		return
	}

	key := strings.TrimSpace(r.PostForm.Get("api_key"))
	provider := strings.TrimSpace(r.PostForm.Get("provider"))
	if key == "" && provider == "" {
		s.renderPage(w, r, http.StatusOK)
		return
	}
	if key == "" {
		_, key = st.Credentials()
	}
	st.SetCredentials(provider, key)
	// renderPage shows the key prefix warning, if any.
	s.renderPage(w, r, http.StatusOK, Notice{"success", "Settings saved."})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	st := sessionFrom(r.Context())
	if err := r.ParseForm(); err != nil {
		s.renderPage(w, r, http.StatusBadRequest, Notice{"error", err.Error()})
		return
	}

	out, err := s.generate(r.Context(), st, r.PostForm.Get("category"))
	if err != nil {
		status, msg := statusOf(err)
		s.renderPage(w, r, status, Notice{"error", msg})
		return
	}
	if !out.OK() {
		s.renderPage(w, r, http.StatusBadGateway,
			Notice{"error", "Failed to generate lesson. Please try again."},
		)
		return
	}
	s.renderPage(w, r, http.StatusOK, Notice{"info", fmt.Sprintf("Generating lesson about: %s", out.Topic)})
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	st := sessionFrom(r.Context())
	option, err := strconv.Atoi(r.FormValue("option"))
	if err != nil {
		s.renderPage(w, r, http.StatusBadRequest, Notice{"error", "option must be a number"})
		return
	}
	if _, err := s.answer(r.Context(), st, option); err != nil {
		status, msg := statusOf(err)
		s.renderPage(w, r, status, Notice{"error", msg})
		return
	}
	// The feedback itself is part of the session view.
	s.renderPage(w, r, http.StatusOK)
}

func (s *Server) handleReflection(w http.ResponseWriter, r *http.Request) {
	st := sessionFrom(r.Context())
	if err := st.SetReflection(r.FormValue("reflection")); err != nil {
		s.renderPage(w, r, http.StatusConflict, Notice{"error", err.Error()})
		return
	}
	s.renderPage(w, r, http.StatusOK, Notice{"success", "Reflection saved."})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	st := sessionFrom(r.Context())
	st.Reset()
	st.SetCategory(lessons.Random)
	s.renderPage(w, r, http.StatusOK)
}
