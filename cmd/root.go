package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/ladderquiz/internal/grading"
	"github.com/abhisek/ladderquiz/internal/llm"
	"github.com/abhisek/ladderquiz/internal/problemgen"
	"github.com/abhisek/ladderquiz/internal/session"
	"github.com/abhisek/ladderquiz/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "ladderquiz",
	Short: "Adaptive quiz sessions driven by an LLM",
	Long: `LadderQuiz asks batches of subject questions at a difficulty level, grades
each answer from 0 to 10 and moves the level up or down between batches.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides LADDERQUIZ_DB env var)")
	pf.String("log-level", "warn", "Log level (debug, info, warn, error)")
	pf.String("log-format", "text", "Log format (text, json)")

	addPlayFlags(rootCmd)

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

func setupLogging(cmd *cobra.Command) {
	levelName, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")

	var level slog.Level
	switch strings.ToLower(levelName) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	switch strings.ToLower(format) {
	case "json":
		h = slog.NewJSONHandler(os.Stderr, opts)
	default:
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then LADDERQUIZ_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore opens the event database selected by resolveDBPath.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

// newEngine wires the LLM provider from the environment into a question
// producer, a grader and a session engine. events may be nil.
func newEngine(ctx context.Context, cfg session.Config, events store.EventRepo) (*session.Engine, error) {
	provider, err := llm.NewProviderFromEnv(ctx, events)
	if err != nil {
		return nil, fmt.Errorf("LLM provider: %w", err)
	}

	slog.Debug("LLM provider ready", "model", provider.ModelID())

	producer := problemgen.New(provider, cfg.Batch)
	grader := grading.NewLLMGrader(provider, grading.DefaultGraderConfig())

	var opts []session.Option
	if events != nil {
		opts = append(opts, session.WithEventRepo(events))
	}
	return session.NewEngine(producer, grader, cfg, opts...), nil
}
