package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joeaphiboon/BiteSizedLearning/internal/lessons"
	"github.com/joeaphiboon/BiteSizedLearning/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past lessons and answer accuracy",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		repo := s.EventRepo()
		w := cmd.OutOrStdout()

		stats, err := repo.StatsByCategory(ctx)
		if err != nil {
			return fmt.Errorf("query stats: %w", err)
		}
		if len(stats) == 0 {
			fmt.Fprintln(w, "No lessons yet. Run `bitesized` or `bitesized generate` to start.")
			return nil
		}

		fmt.Fprintf(w, "%-12s  %9s  %6s  %7s  %7s\n", "Category", "Generated", "Failed", "Answers", "Correct")
		fmt.Fprintln(w, strings.Repeat("─", 50))
		for _, st := range stats {
			fmt.Fprintf(w, "%-12s  %9d  %6d  %7d  %7d\n",
				lessons.Category(st.Category).Label(), st.Generated, st.Failed, st.Answers, st.Correct)
		}

		acc, n, err := repo.FirstTryAccuracy(ctx)
		if err != nil {
			return fmt.Errorf("query accuracy: %w", err)
		}
		if n > 0 {
			fmt.Fprintf(w, "\nFirst-try accuracy: %.0f%% over %d lessons\n", acc*100, n)
		}

		recs, err := repo.QueryLessonEvents(ctx, store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query lessons: %w", err)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Recent lessons")
		fmt.Fprintln(w, strings.Repeat("─", 72))
		for _, r := range recs {
			label := r.Title
			if !r.Success {
				label = "failed: " + r.DiagnosticKind
			}
			cat := r.Category
			if cat == "" {
				cat = r.RequestedCategory
			}
			fmt.Fprintf(w, "%-16s  %-10s  %s\n", r.Timestamp.Local().Format("2006-01-02 15:04"), cat, label)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 10, "Number of recent lessons to show")
}
