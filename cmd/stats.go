package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/ladderquiz/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-subject results, or one session's level history",
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		out := cmd.OutOrStdout()
		if sessionID != "" {
			history, err := s.EventRepo().LevelHistory(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			printLevelHistory(out, sessionID, history)
			return nil
		}

		stats, err := s.EventRepo().SubjectStats(cmd.Context())
		if err != nil {
			return err
		}
		printSubjectStats(out, stats)
		return nil
	},
}

func printSubjectStats(out io.Writer, stats []store.SubjectStats) {
	if len(stats) == 0 {
		fmt.Fprintln(out, "No sessions recorded yet.")
		return
	}

	rule := strings.Repeat("─", 72)
	fmt.Fprintf(out, "%-24s  %8s  %8s  %9s  %6s  %6s\n",
		"Subject", "Sessions", "Answers", "Avg Score", "Up", "Down")
	fmt.Fprintln(out, rule)
	for _, st := range stats {
		fmt.Fprintf(out, "%-24s  %8d  %8d  %9.2f  %6d  %6d\n",
			truncate(st.Subject, 24), st.Sessions, st.Answers, st.AvgScore, st.Promotions, st.Demotions)
	}
}

func printLevelHistory(out io.Writer, sessionID string, history []store.LevelDecision) {
	if len(history) == 0 {
		fmt.Fprintf(out, "No level decisions recorded for session %s.\n", sessionID)
		return
	}

	fmt.Fprintf(out, "Session %s\n", sessionID)
	fmt.Fprintln(out, strings.Repeat("─", 72))
	for i, d := range history {
		fmt.Fprintf(out, "Batch %-3d  %-19s  avg %5.2f  %-8s  %s -> %s\n",
			i+1, d.Timestamp.Local().Format("2006-01-02 15:04:05"), d.Average, d.Decision, d.FromLevel, d.ToLevel)
	}
}

func init() {
	statsCmd.Flags().String("session", "", "Show the level history of one session")
}
