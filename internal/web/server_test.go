package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeaphiboon/BiteSizedLearning/internal/config"
	"github.com/joeaphiboon/BiteSizedLearning/internal/lessons"
	"github.com/joeaphiboon/BiteSizedLearning/internal/llm"
	"github.com/joeaphiboon/BiteSizedLearning/internal/session"
	"github.com/joeaphiboon/BiteSizedLearning/internal/store"
)

const lessonJSON = `{
  "title": "How Vaccines Train Immunity",
  "category": "science",
  "concept": {"mainIdea": "Vaccines expose the immune system to a harmless version of a pathogen.", "priorKnowledge": "Cells and germs."},
  "exercise": {
    "question": "What does a vaccine mainly train?",
    "options": ["The immune system", "The digestive system", "Bone growth", "Eyesight"],
    "correctAnswer": 0
  },
  "practicalApplication": {"realWorldExample": "Flu shots.", "caseStudy": "Smallpox eradication.", "challengePrompt": "Why are boosters needed?"},
  "reflection": {"connectingPrompt": "Which vaccines have you had?", "nextSteps": "Read about herd immunity.", "relatedTopics": ["Antibodies", "Herd immunity", "mRNA", "Epidemiology"]}
}`

type fakeProviders struct {
	mu   sync.Mutex
	mock *llm.MockProvider
	keys []string
	err  error
}

func (f *fakeProviders) ForKey(_ context.Context, provider, apiKey string) (llm.Provider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, provider+":"+apiKey)
	if f.err != nil {
		return nil, f.err
	}
	return f.mock, nil
}

type answerRecorder struct {
	store.NopRepo
	mu      sync.Mutex
	answers []store.AnswerEventData
}

func (r *answerRecorder) AppendAnswer(_ context.Context, data store.AnswerEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.answers = append(r.answers, data)
	return nil
}

type testEnv struct {
	srv       *httptest.Server
	client    *http.Client
	providers *fakeProviders
	events    *answerRecorder
}

func newTestEnv(t *testing.T, defaultKey string, responses ...llm.MockResponse) *testEnv {
	t.Helper()
	cfg := &config.Config{
		Addr:            ":0",
		SessionTTL:      time.Hour,
		CORSOrigins:     []string{"http://localhost:*"},
		GenerateTimeout: 5 * time.Second,
		ShutdownTimeout: time.Second,
	}
	providers := &fakeProviders{mock: llm.NewMockProvider(responses...)}
	events := &answerRecorder{}

	s, err := New(cfg, Deps{
		Sessions:  session.NewManager(time.Hour, llm.ProviderGroq, defaultKey),
		Providers: providers,
		Lessons:   lessons.DefaultConfig(),
		Events:    events,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testEnv{srv: srv, client: &http.Client{Jar: jar}, providers: providers, events: events}
}

func (e *testEnv) postForm(t *testing.T, path string, form url.Values) (int, string) {
	t.Helper()
	resp, err := e.client.PostForm(e.srv.URL+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func (e *testEnv) postJSON(t *testing.T, path string, v any, out any) int {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	resp, err := e.client.Post(e.srv.URL+path, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (e *testEnv) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := e.client.Get(e.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestIndex_Welcome(t *testing.T) {
	env := newTestEnv(t, "")
	status, body := env.get(t, "/")

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Daily AI Learning Generator")
	assert.Contains(t, body, "<strong>Science</strong>: Scientific concepts, discoveries, and natural phenomena")
	assert.Contains(t, body, `value="random" checked`)
}

func TestGenerate_RequiresAPIKey(t *testing.T) {
	env := newTestEnv(t, "")
	status, body := env.postForm(t, "/generate", url.Values{"category": {"science"}})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, session.PromptAPIKey)
	assert.Empty(t, env.providers.keys, "provider built without a key")
}

func TestSettings_KeyPrefixWarning(t *testing.T) {
	env := newTestEnv(t, "")
	status, body := env.postForm(t, "/settings", url.Values{"provider": {"groq"}, "api_key": {"sk-wrong"}})

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Settings saved.")
	assert.Contains(t, body, "usually start with")
}

func TestFullFlow_HTML(t *testing.T) {
	env := newTestEnv(t, "",
		llm.MockText("Vaccines"),
		llm.MockText("Here you go:\n"+lessonJSON),
	)

	env.postForm(t, "/settings", url.Values{"provider": {"groq"}, "api_key": {"gsk_test"}})

	status, body := env.postForm(t, "/generate", url.Values{"category": {"science"}})
	require.Equal(t, http.StatusOK, status, body)
	assert.Contains(t, body, "Generating lesson about: Vaccines")
	assert.Contains(t, body, "How Vaccines Train Immunity")
	assert.Contains(t, body, "A. The immune system")
	assert.Equal(t, []string{"groq:gsk_test"}, env.providers.keys)

	status, body = env.postForm(t, "/answer", url.Values{"option": {"1"}})
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, session.FeedbackIncorrect)

	_, body = env.postForm(t, "/answer", url.Values{"option": {"0"}})
	assert.Contains(t, body, session.FeedbackCorrect)

	status, body = env.postForm(t, "/reflection", url.Values{"reflection": {"Boosters refresh memory cells"}})
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Boosters refresh memory cells")

	require.Len(t, env.events.answers, 2)
	assert.False(t, env.events.answers[0].Correct)
	assert.True(t, env.events.answers[1].Correct)
	assert.Equal(t, "How Vaccines Train Immunity", env.events.answers[1].LessonTitle)

	status, body = env.postForm(t, "/reset", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Welcome!")
}

func TestGenerate_DiagnosticKeepsLesson(t *testing.T) {
	env := newTestEnv(t, "gsk_server",
		llm.MockText("Vaccines"),
		llm.MockText(lessonJSON),
		llm.MockText("Tides"),
		llm.MockText("No braces here at all."),
	)

	status, _ := env.postForm(t, "/generate", url.Values{"category": {"science"}})
	require.Equal(t, http.StatusOK, status)

	status, body := env.postForm(t, "/generate", url.Values{"category": {"science"}})
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Contains(t, body, "no JSON structure found")
	assert.Contains(t, body, "No braces here at all.")
	assert.Contains(t, body, "How Vaccines Train Immunity", "previous lesson should remain")
}

func TestAPI_Flow(t *testing.T) {
	env := newTestEnv(t, "",
		llm.MockText("Vaccines"),
		llm.MockText(lessonJSON),
	)

	var cats []categoryInfo
	resp, err := env.client.Get(env.srv.URL + "/api/categories")
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cats))
	resp.Body.Close()
	require.Len(t, cats, 5)
	assert.Equal(t, lessons.Random, cats[0].Name)

	var errResp map[string]string
	status := env.postJSON(t, "/api/lesson", map[string]string{"category": "science"}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, session.PromptAPIKey, errResp["error"])

	var settings map[string]string
	status = env.postJSON(t, "/api/settings", map[string]string{"provider": "groq", "apiKey": "gsk_abc"}, &settings)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, settings["warning"])

	status = env.postJSON(t, "/api/lesson", map[string]string{"category": "cooking"}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)

	var lr lessonResponse
	status = env.postJSON(t, "/api/lesson", map[string]string{"category": "science"}, &lr)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, lr.Lesson)
	assert.Equal(t, "science", lr.Lesson.Category)
	assert.Len(t, lr.Lesson.Exercise.Options, 4)
	assert.Nil(t, lr.Selected)

	var fb feedbackResponse
	status = env.postJSON(t, "/api/answer", map[string]int{"option": 0}, &fb)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, fb.Correct)
	assert.Equal(t, session.FeedbackCorrect, fb.Message)

	status = env.postJSON(t, "/api/answer", map[string]int{"option": 9}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)

	status = env.postJSON(t, "/api/answer", map[string]string{}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "option is required", errResp["error"])

	status = env.postJSON(t, "/api/reflection", map[string]string{"text": "memory cells"}, nil)
	assert.Equal(t, http.StatusOK, status)

	_, body := env.get(t, "/api/lesson")
	assert.Contains(t, body, `"reflection":"memory cells"`)
	assert.Contains(t, body, `"selected":0`)
}

func TestAPI_GenerationFailure(t *testing.T) {
	env := newTestEnv(t, "gsk_server",
		llm.MockText("Tides"),
		llm.MockText(`Here is the lesson: {"title":"X"}`),
	)

	var resp struct {
		Error      string             `json:"error"`
		Diagnostic diagnosticResponse `json:"diagnostic"`
	}
	status := env.postJSON(t, "/api/lesson", map[string]string{"category": "science"}, &resp)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, lessons.KindMalformed, resp.Diagnostic.Kind)
	assert.Contains(t, resp.Error, "missing required keys")
	assert.Equal(t, `Here is the lesson: {"title":"X"}`, resp.Diagnostic.Detail)
}

func TestAPI_ConcurrentGenerateRejected(t *testing.T) {
	release := make(chan struct{})
	env := newTestEnv(t, "gsk_server",
		llm.MockResponse{Content: json.RawMessage("Vaccines"), Wait: release},
		llm.MockText(lessonJSON),
	)

	// Establish the session cookie first.
	env.get(t, "/api/lesson")

	done := make(chan int)
	go func() {
		done <- env.postJSON(t, "/api/lesson", map[string]string{"category": "science"}, nil)
	}()

	// Wait until the first generation holds the session.
	require.Eventually(t, func() bool {
		_, body := env.get(t, "/api/lesson")
		return strings.Contains(body, `"generating":true`)
	}, 2*time.Second, 10*time.Millisecond)

	var errResp map[string]string
	status := env.postJSON(t, "/api/lesson", map[string]string{"category": "science"}, &errResp)
	assert.Equal(t, http.StatusConflict, status)

	close(release)
	assert.Equal(t, http.StatusOK, <-done)
}

func TestAnswerWithoutLesson(t *testing.T) {
	env := newTestEnv(t, "")
	var errResp map[string]string
	status := env.postJSON(t, "/api/answer", map[string]int{"option": 0}, &errResp)
	assert.Equal(t, http.StatusConflict, status)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, "")
	resp, err := http.Get(env.srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Cookies(), "health checks should not create sessions")
}

func TestSessionsAreIsolated(t *testing.T) {
	env := newTestEnv(t, "gsk_server",
		llm.MockText("Vaccines"),
		llm.MockText(lessonJSON),
	)
	status := env.postJSON(t, "/api/lesson", map[string]string{"category": "science"}, nil)
	require.Equal(t, http.StatusOK, status)

	other := &http.Client{}
	resp, err := other.Get(env.srv.URL + "/api/lesson")
	require.NoError(t, err)
	defer resp.Body.Close()
	var lr lessonResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&lr))
	assert.Nil(t, lr.Lesson)
}
