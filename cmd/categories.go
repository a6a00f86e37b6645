package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joeaphiboon/BiteSizedLearning/internal/lessons"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the lesson categories",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		for _, c := range lessons.Selectable() {
			fmt.Fprintf(w, "%-12s %s\n", c, c.Description())
		}
	},
}
