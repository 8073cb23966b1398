// Command docmind answers questions about one document from the terminal,
// as an interactive chat, or as an MCP stdio server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dgallion1/docmind/internal/app"
	"github.com/dgallion1/docmind/internal/config"
	"github.com/dgallion1/docmind/internal/mcpserver"
	"github.com/dgallion1/docmind/internal/pipeline"
	"github.com/dgallion1/docmind/internal/tui"
)

var version = "dev"

type options struct {
	configPath string
	verbose    bool
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "docmind",
		Short:         "Grounded question answering over a single document",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", envOr("DOCMIND_CONFIG", "config.yaml"), "path to YAML config (optional)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline progress to stderr")

	root.AddCommand(
		newAskCmd(opts),
		newChatCmd(opts),
		newMCPCmd(opts),
		newStatusCmd(opts),
	)
	return root
}

func newAskCmd(opts *options) *cobra.Command {
	var chapter string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "ask FILE QUESTION",
		Short: "Ingest FILE and answer one question",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := load(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}
			defer a.Close()

			ans, err := a.Pipeline.Ask(cmd.Context(), args[1], chapter)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(ans)
			}
			printAnswer(cmd.OutOrStdout(), ans)
			return nil
		},
	}
	cmd.Flags().StringVar(&chapter, "chapter", "", "restrict retrieval to one chapter id (e.g. ch_2)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the validated answer as JSON")
	return cmd
}

func newChatCmd(opts *options) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "chat FILE",
		Short: "Ingest FILE and ask questions interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, sum, err := load(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}
			defer a.Close()

			summary := fmt.Sprintf("%s: %d chapters, %d chunks", sum.Document, sum.ChaptersCount, sum.ChunksCount)
			_, err = tea.NewProgram(tui.New(a.Pipeline, summary, timeout), tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 3*time.Minute, "per-question timeout")
	return cmd
}

func newMCPCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp FILE",
		Short: "Ingest FILE and serve it to MCP clients over stdio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the protocol, so logs always go to stderr.
			a, _, err := load(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}
			defer a.Close()
			return mcpserver.Serve(cmd.Context(), a.Pipeline, version)
		},
	}
}

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status FILE",
		Short: "Ingest FILE and print the resulting index status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := load(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}
			defer a.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(a.Pipeline.Status())
		},
	}
}

// load reads configuration, wires the pipeline and ingests path.
func load(ctx context.Context, opts *options, path string) (*app.App, pipeline.IngestSummary, error) {
	log := newLogger(opts.verbose)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, pipeline.IngestSummary{}, fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, pipeline.IngestSummary{}, fmt.Errorf("invalid configuration: %w", err)
	}

	a, err := app.New(cfg, log)
	if err != nil {
		return nil, pipeline.IngestSummary{}, err
	}
	sum, err := a.Pipeline.IngestFile(ctx, path)
	if err != nil {
		a.Close()
		return nil, pipeline.IngestSummary{}, err
	}
	log.Info("document ingested", "document", sum.Document, "chapters", sum.ChaptersCount, "chunks", sum.ChunksCount)
	return a, sum, nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func printAnswer(w io.Writer, ans pipeline.Answer) {
	fmt.Fprintln(w, ans.Answer)
	if len(ans.Sources) > 0 {
		fmt.Fprintln(w, "\nSources:")
		for _, s := range ans.Sources {
			fmt.Fprintf(w, "  - %s / %s (%s)\n", s.Chapter, s.Section, s.ChunkID)
		}
	}
	fmt.Fprintf(w, "\nConfidence: %.2f\n", ans.Confidence)
	for _, warn := range ans.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warn)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
