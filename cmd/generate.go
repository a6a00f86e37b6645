package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joeaphiboon/BiteSizedLearning/internal/lessons"
	"github.com/joeaphiboon/BiteSizedLearning/internal/llm"
	"github.com/joeaphiboon/BiteSizedLearning/internal/logger"
)

var errGenerateFailed = errors.New("lesson generation failed")

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one lesson and print it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		asJSON, _ := cmd.Flags().GetBool("json")
		verbose, _ := cmd.Flags().GetBool("verbose")

		if _, err := lessons.ParseCategory(category); err != nil {
			return err
		}

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if e.llm.APIKey() == "" && e.llm.Provider != llm.ProviderMock {
			return fmt.Errorf("no %s API key configured; set it in the environment or a .env file", e.llm.Provider)
		}

		log := logger.NewNop()
		if verbose {
			if log, err = logger.New("dev"); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
		}
		defer log.Sync()

		ctx := llm.WithSession(cmd.Context(), uuid.NewString())
		p, err := llm.NewProvider(ctx, e.llm, e.events, log)
		if err != nil {
			return err
		}
		gen := lessons.NewGenerator(p, e.lessons, lessons.WithEvents(e.events), lessons.WithLogger(log))
		out := gen.Generate(ctx, category)

		w := cmd.OutOrStdout()
		if asJSON {
			err = writeJSON(w, out)
		} else {
			printOutcome(w, out)
		}
		if err != nil {
			return err
		}
		if !out.OK() {
			return errGenerateFailed
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().StringP("category", "c", string(lessons.Random), "science, technology, psychology, history or random")
	generateCmd.Flags().Bool("json", false, "Print the result as JSON")
	generateCmd.Flags().BoolP("verbose", "v", false, "Log provider calls to stderr")
}

type generateResult struct {
	Requested  string              `json:"requested"`
	Category   string              `json:"category,omitempty"`
	Topic      string              `json:"topic,omitempty"`
	Lesson     *lessons.Lesson     `json:"lesson,omitempty"`
	Diagnostic *diagnosticJSON     `json:"diagnostic,omitempty"`
	DurationMs int64               `json:"duration_ms"`
}

type diagnosticJSON struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Raw     string `json:"raw,omitempty"`
}

func writeJSON(w io.Writer, out lessons.Outcome) error {
	res := generateResult{
		Requested:  string(out.Requested),
		Category:   string(out.Category),
		Topic:      out.Topic,
		Lesson:     out.Lesson,
		DurationMs: out.Duration.Milliseconds(),
	}
	if d := out.Diagnostic; d != nil {
		res.Diagnostic = &diagnosticJSON{Kind: string(d.Kind), Message: d.Message, Raw: d.Detail}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func printOutcome(w io.Writer, out lessons.Outcome) {
	if !out.OK() {
		fmt.Fprintln(w, "Failed to generate lesson. Please try again.")
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Error: %s\n", out.Diagnostic.Message)
		raw := out.Diagnostic.Detail
		if raw == "" {
			raw = "No response received"
		}
		fmt.Fprintln(w, "Raw response:")
		fmt.Fprintln(w, raw)
		return
	}

	l := out.Lesson
	sep := strings.Repeat("─", 60)
	fmt.Fprintf(w, "Generating lesson about: %s\n\n", out.Topic)
	fmt.Fprintln(w, l.Title)
	fmt.Fprintf(w, "%s · %.1fs\n", lessons.Category(l.Category).Label(), out.Duration.Seconds())
	fmt.Fprintln(w, sep)

	printSection(w, "Core Concept", l.Concept.MainIdea)
	printSection(w, "Prior Knowledge", l.Concept.PriorKnowledge)

	fmt.Fprintln(w, "Practice Question")
	fmt.Fprintln(w, l.Exercise.Question)
	for i, opt := range l.Exercise.Options {
		fmt.Fprintf(w, "  %c) %s\n", 'A'+i, opt)
	}
	fmt.Fprintf(w, "Answer: %c\n\n", 'A'+l.Exercise.CorrectAnswer)

	printSection(w, "Real-World Application", l.PracticalApplication.RealWorldExample)
	printSection(w, "Case Study", l.PracticalApplication.CaseStudy)
	printSection(w, "Challenge", l.PracticalApplication.ChallengePrompt)
	printSection(w, "Reflection", l.Reflection.ConnectingPrompt)
	printSection(w, "Next Steps", l.Reflection.NextSteps)

	fmt.Fprintln(w, "Related Topics")
	for _, t := range l.Reflection.RelatedTopics {
		fmt.Fprintf(w, "  • %s\n", t)
	}
}

func printSection(w io.Writer, heading, body string) {
	fmt.Fprintln(w, heading)
	fmt.Fprintln(w, body)
	fmt.Fprintln(w)
}
