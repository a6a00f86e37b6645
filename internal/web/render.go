package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/joeaphiboon/BiteSizedLearning/internal/lessons"
	"github.com/joeaphiboon/BiteSizedLearning/internal/llm"
	"github.com/joeaphiboon/BiteSizedLearning/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var optionLetters = []string{"A", "B", "C", "D", "E", "F"}

func parsePage() (*template.Template, error) {
	return template.New("index.html").Funcs(template.FuncMap{
		"letter": func(i int) string {
			if i < len(optionLetters) {
				return optionLetters[i]
			}
			return "?"
		},
		"isSelected": func(sel *int, i int) bool { return sel != nil && *sel == i },
	}).ParseFS(templateFS, "templates/index.html")
}

// Notice is a one-off message shown above the lesson.
type Notice struct {
	Level string // info, success, warning, error
	Text  string
}

type pageData struct {
	session.View
	Categories []categoryInfo
	Providers  []string
	Notices    []Notice
}

type categoryInfo struct {
	Name        lessons.Category `json:"name"`
	Label       string           `json:"label"`
	Description string           `json:"description"`
}

func categoryList() []categoryInfo {
	var out []categoryInfo
	for _, c := range lessons.Selectable() {
		out = append(out, categoryInfo{Name: c, Label: c.Label(), Description: c.Description()})
	}
	return out
}

// renderPage renders the page for the request's session.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, notices ...Notice) {
	v := sessionFrom(r.Context()).Snapshot()
	if v.KeyWarning != "" {
		notices = append(notices, Notice{Level: "warning", Text: v.KeyWarning})
	}

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, pageData{
		View:       v,
		Categories: categoryList(),
		Providers:  llm.Providers,
		Notices:    notices,
	}); err != nil {
		s.log.Error("render page", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
