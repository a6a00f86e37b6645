package cmd

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/joeaphiboon/BiteSizedLearning/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "bitesized",
	Short: "Daily AI learning generator",
	Long: "BiteSized generates a short lesson on science, technology, psychology or history " +
		"with a practice question, a real-world application and a reflection prompt.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A .env file is optional; variables already set win.
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides BITESIZED_DB env var)")
	rootCmd.PersistentFlags().Bool("no-db", false, "Do not record events")
	rootCmd.PersistentFlags().String("provider", "", "LLM provider (groq, openai, anthropic, gemini, openrouter, mock)")
	rootCmd.PersistentFlags().String("model", "", "Model name for the selected provider")
	rootCmd.Flags().Bool("skip-welcome", false, "Start on the category menu")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then BITESIZED_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
