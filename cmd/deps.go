package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joeaphiboon/BiteSizedLearning/internal/lessons"
	"github.com/joeaphiboon/BiteSizedLearning/internal/llm"
	"github.com/joeaphiboon/BiteSizedLearning/internal/store"
)

// env is what every generating command shares.
type env struct {
	store   *store.Store // nil when recording is off or the database failed to open
	events  store.EventRepo
	llm     llm.Config
	lessons lessons.Config
}

func (e *env) Close() {
	if e.store != nil {
		e.store.Close()
	}
}

// setup resolves provider settings and opens the event store. A store that
// cannot be opened only disables recording; it is reported on stderr.
func setup(cmd *cobra.Command) (*env, error) {
	lc, err := lessons.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	e := &env{
		events:  store.NopRepo{},
		llm:     llmConfig(cmd),
		lessons: lc,
	}

	if off, _ := cmd.Flags().GetBool("no-db"); off {
		return e, nil
	}
	s, err := openStore(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: history disabled: %v\n", err)
		return e, nil
	}
	e.store = s
	e.events = s.EventRepo()
	return e, nil
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// llmConfig is the environment configuration with --provider and --model
// applied on top.
func llmConfig(cmd *cobra.Command) llm.Config {
	cfg, _ := llm.DiscoverConfig()
	if p, _ := cmd.Flags().GetString("provider"); p != "" {
		cfg.Provider = p
	}
	if m, _ := cmd.Flags().GetString("model"); m != "" {
		cfg = cfg.WithModel(m)
	}
	return cfg
}
