package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/ladderquiz/internal/app"
	"github.com/abhisek/ladderquiz/internal/ladder"
	"github.com/abhisek/ladderquiz/internal/session"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start a quiz in the terminal UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
}

func init() {
	addPlayFlags(playCmd)
}

func addPlayFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("subject", "s", "", "Prefill the subject")
	cmd.Flags().StringP("level", "l", ladder.Default.String(), "Prefill the starting level")
}

// runPlay opens the store, builds the engine, and launches the TUI.
func runPlay(cmd *cobra.Command) error {
	subject, _ := cmd.Flags().GetString("subject")
	levelName, _ := cmd.Flags().GetString("level")
	level, err := ladder.Parse(levelName)
	if err != nil {
		return err
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	engine, err := newEngine(cmd.Context(), session.DefaultConfig(), st.EventRepo())
	if err != nil {
		return fmt.Errorf("%w (set LADDERQUIZ_LLM_PROVIDER or a vendor API key)", err)
	}

	return app.Run(app.Options{
		Engine:  engine,
		Subject: subject,
		Level:   level,
	})
}
