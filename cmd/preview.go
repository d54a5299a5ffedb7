package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/ladderquiz/internal/ladder"
	"github.com/abhisek/ladderquiz/internal/session"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Run a quiz on stdin/stdout (no database)",
	Long: `Play batches of questions line by line without the terminal UI.

Nothing is recorded. Useful for judging question and grading quality
against a provider or model.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringP("subject", "s", "", "Quiz subject (default general science)")
	previewCmd.Flags().StringP("level", "l", ladder.Default.String(), "Starting level")
	previewCmd.Flags().Int("batches", 1, "Batches to play before stopping")
}

func runPreview(cmd *cobra.Command, args []string) error {
	subject, _ := cmd.Flags().GetString("subject")
	levelName, _ := cmd.Flags().GetString("level")
	batches, _ := cmd.Flags().GetInt("batches")

	level, err := ladder.Parse(levelName)
	if err != nil {
		return err
	}

	engine, err := newEngine(cmd.Context(), session.DefaultConfig(), nil)
	if err != nil {
		return err
	}

	return runConsole(cmd.Context(), engine, cmd.InOrStdin(), cmd.OutOrStdout(), subject, level, batches)
}

// runConsole plays up to batches batches, reading one answer per line.
// A blank line submits an empty answer; end of input stops the session.
func runConsole(ctx context.Context, engine *session.Engine, in io.Reader, out io.Writer, subject string, level ladder.Level, batches int) error {
	scanner := bufio.NewScanner(in)
	st := engine.CreateSession(ctx, subject, level)

	fmt.Fprintf(out, "Subject: %s  Level: %s\n\n", st.Subject, st.Level)

	for played := 1; ; played++ {
		for {
			q, ok := engine.CurrentQuestion(st)
			if !ok {
				break
			}

			fmt.Fprintf(out, "── Question %d/%d ──\n%s\n", q.Index+1, q.Total, q.Question)
			fmt.Fprint(out, "\nYour answer: ")
			if !scanner.Scan() {
				fmt.Fprintln(out, "\n(input closed)")
				_, sum := engine.StopAndSummarize(st)
				printSummary(out, sum)
				return scanner.Err()
			}

			turn, err := engine.SubmitAndGrade(ctx, st, q.ID, strings.TrimSpace(scanner.Text()))
			if err != nil {
				return err
			}
			st = turn.State

			fb := turn.Feedback
			fmt.Fprintf(out, "Score: %d/10  %s\n", fb.Score, fb.Reason)
			fmt.Fprintf(out, "Answer: %s\n", fb.CorrectAnswer)
			if fb.Explanation != "" {
				fmt.Fprintf(out, "Explanation: %s\n", fb.Explanation)
			}
			fmt.Fprintln(out)
		}

		if played >= batches {
			_, sum := engine.StopAndSummarize(st)
			printSummary(out, sum)
			return nil
		}

		c := engine.ContinueToNextBatch(ctx, st)
		printSummary(out, c.Summary)
		fmt.Fprintf(out, "Next level: %s (%s)\n\n", c.Level, c.Decision)
		st = c.State
	}
}

func printSummary(out io.Writer, sum session.BatchSummary) {
	fmt.Fprintf(out, "── Batch: %d questions, total %d, average %.2f ──\n", sum.Count, sum.Total, sum.Avg)
}
