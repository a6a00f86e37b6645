package cmd

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joeaphiboon/BiteSizedLearning/internal/app"
	"github.com/joeaphiboon/BiteSizedLearning/internal/llm"
	"github.com/joeaphiboon/BiteSizedLearning/internal/logger"
	"github.com/joeaphiboon/BiteSizedLearning/internal/screens/lesson"
	"github.com/joeaphiboon/BiteSizedLearning/internal/session"
	"github.com/joeaphiboon/BiteSizedLearning/internal/store"
)

func runTUI(cmd *cobra.Command) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	log := tuiLogger()
	defer log.Sync()

	st := session.New(uuid.NewString(), e.llm.Provider)
	if key := e.llm.APIKey(); key != "" {
		st.SetCredentials(e.llm.Provider, key)
	}

	skip, _ := cmd.Flags().GetBool("skip-welcome")
	opts := app.Options{
		Lesson: lesson.Deps{
			Providers: llm.NewFactory(e.llm, e.events, log),
			Lessons:   e.lessons,
			Events:    e.events,
			Log:       log,
			// Two requests per lesson, each bounded by the provider timeout.
			Timeout: 2 * e.llm.Timeout,
		},
		Session:     st,
		SkipWelcome: skip,
	}
	if e.store != nil {
		opts.History = e.store.EventRepo()
	}
	return app.Run(opts)
}

// tuiLogger writes to a file in the data directory, since the terminal is
// taken by the UI. Any failure falls back to discarding logs.
func tuiLogger() *logger.Logger {
	mode := os.Getenv("BITESIZED_LOG_MODE")
	if mode == "" {
		mode = "prod"
	}
	dir, err := store.DataDir()
	if err != nil {
		return logger.NewNop()
	}
	path := filepath.Join(dir, "bitesized.log")
	if err := store.EnsureDir(path); err != nil {
		return logger.NewNop()
	}
	log, err := logger.NewFile(mode, path)
	if err != nil {
		return logger.NewNop()
	}
	return log
}
