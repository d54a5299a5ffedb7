package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/abhisek/ladderquiz/internal/problemgen"
	"github.com/abhisek/ladderquiz/internal/server"
	"github.com/abhisek/ladderquiz/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve quiz sessions over a JSON HTTP API",
	Long: `Serve the quiz API:

  POST /api/start      {subject, level?}
  POST /api/answer     {session_id, q_id, answer}
  POST /api/continue   {session_id, continue}
  GET  /api/sessions/{id}

Sessions live in memory and are lost on restart. Flags can also be set with
LADDERQUIZ_* environment variables or a ladderquiz.yaml config file.`,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringP("addr", "a", ":8000", "HTTP listen address")
	f.Int("batch-size", 5, "Questions per batch (1-5)")
	f.Int("exclusion-window", 12, "Recent questions the generator is asked to avoid")
	f.Float64("promote-at", 8.5, "Batch average that moves the level up")
	f.Float64("demote-below", 6.5, "Batch average below which the level moves down")
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("LADDERQUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("ladderquiz")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/ladderquiz")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}
	return v
}

// sessionConfig reads engine tuning from v, keeping defaults for unset or
// out-of-range values.
func sessionConfig(v *viper.Viper) session.Config {
	cfg := session.DefaultConfig()
	switch n := v.GetInt("batch-size"); {
	case n > problemgen.MaxBatchSize:
		slog.Warn("batch-size above maximum, clamping", "batch_size", n, "max", problemgen.MaxBatchSize)
		cfg.Batch.BatchSize = problemgen.MaxBatchSize
	case n > 0:
		cfg.Batch.BatchSize = n
	}
	if n := v.GetInt("exclusion-window"); n >= 0 {
		cfg.ExclusionWindow = n
	}
	if up, down := v.GetFloat64("promote-at"), v.GetFloat64("demote-below"); down <= up {
		cfg.Policy = session.Policy{PromoteAt: up, DemoteBelow: down}
	} else {
		slog.Warn("demote-below exceeds promote-at, using defaults", "promote_at", up, "demote_below", down)
	}
	return cfg
}

func runServe(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	cfg := sessionConfig(v)
	engine, err := newEngine(cmd.Context(), cfg, st.EventRepo())
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              v.GetString("addr"),
		Handler:           server.New(engine).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			"addr", srv.Addr,
			"batch_size", cfg.Batch.BatchSize,
			"exclusion_window", cfg.ExclusionWindow,
			"promote_at", cfg.Policy.PromoteAt,
			"demote_below", cfg.Policy.DemoteBelow,
		)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
