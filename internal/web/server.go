// Package web serves the lesson generator as a single HTML page plus a
// small JSON API, one session per browser cookie.
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/joeaphiboon/BiteSizedLearning/internal/config"
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

// Server holds the dependencies shared by all handlers.
type Server struct {
	cfg       *config.Config
	sessions  *session.Manager
	providers ProviderFactory
	lessonCfg lessons.Config
	events    store.EventRepo
	log       *logger.Logger
	page      *template.Template
}

// Deps groups what New needs beyond the server configuration.
type Deps struct {
	Sessions  *session.Manager
	Providers ProviderFactory
	Lessons   lessons.Config
	Events    store.EventRepo
	Log       *logger.Logger
}

func New(cfg *config.Config, deps Deps) (*Server, error) {
	page, err := parsePage()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	s := &Server{
		cfg:       cfg,
		sessions:  deps.Sessions,
		providers: deps.Providers,
		lessonCfg: deps.Lessons,
		events:    deps.Events,
		log:       deps.Log,
		page:      page,
	}
	if s.events == nil {
		s.events = store.NopRepo{}
	}
	if s.log == nil {
		s.log = logger.NewNop()
	}
	return s, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(s.withSession)

	r.Get("/", s.handleIndex)
	r.Post("/settings", s.handleSettings)
	r.Post("/generate", s.handleGenerate)
	r.Post("/answer", s.handleAnswer)
	r.Post("/reflection", s.handleReflection)
	r.Post("/reset", s.handleReset)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
		r.Get("/categories", s.apiCategories)
		r.Post("/settings", s.apiSettings)
		r.Get("/lesson", s.apiGetLesson)
		r.Post("/lesson", s.apiGenerate)
		r.Post("/answer", s.apiAnswer)
		r.Post("/reflection", s.apiReflection)
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully. Expired
// sessions are swept in the background meanwhile.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// Generation holds a request open for two LLM calls.
		WriteTimeout: s.cfg.GenerateTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go s.sessions.Run(ctx, time.Minute)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
