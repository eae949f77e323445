package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gratian-dicu-sv/cleanlogs/internal/aggregator"
	"github.com/gratian-dicu-sv/cleanlogs/internal/format"
	"github.com/gratian-dicu-sv/cleanlogs/internal/hub"
	"github.com/gratian-dicu-sv/cleanlogs/internal/model"
	"github.com/gratian-dicu-sv/cleanlogs/internal/output"
	"github.com/gratian-dicu-sv/cleanlogs/internal/pipeline"
	"github.com/gratian-dicu-sv/cleanlogs/internal/server"
	"github.com/gratian-dicu-sv/cleanlogs/internal/tailer"
	"github.com/gratian-dicu-sv/cleanlogs/internal/watcher"
)

const shutdownTimeout = 5 * time.Second

func runPipeline(cmd *cobra.Command, args []string, opts *options, stdin io.Reader) error {
	// --- Set up context with graceful shutdown ---
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler, err := opts.log.NewHandler(cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("configuring logging: %w", err)
	}
	logger := slog.New(handler)

	// --- Choose renderer ---
	var renderer output.Renderer
	switch strings.ToLower(opts.output) {
	case "json":
		renderer = output.NewJSONRenderer(cmd.OutOrStdout())
	case "text":
		renderer = output.NewTextRenderer(cmd.OutOrStdout(), opts.showLevel)
	default:
		return fmt.Errorf("unknown output format %q", opts.output)
	}

	// --- Input ---
	lines, err := openInput(ctx, args, opts, stdin, logger)
	if err != nil {
		return err
	}

	// --- Broadcast ---
	h := hub.New(logger)
	agg := aggregator.FromHub(h)
	go agg.Start(ctx)

	var srv *server.Server
	if !opts.noServer {
		srv = server.New(h, agg, opts.listen, logger, server.WithProfiling(opts.pprof))
		go func() {
			if err := srv.Start(); err != nil {
				logger.Error("live feed stopped", "err", err)
			}
		}()
	}

	// --- Run until input ends or we are interrupted ---
	registry := format.NewRegistry(logger, format.Builtin())
	pipeline.New(registry, renderer, h, pipeline.WithLogger(logger)).Run(ctx, lines)

	h.Close()
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("live feed shutdown", "err", err)
		}
	}
	return nil
}

// openInput reads stdin, or follows files when patterns are given.
func openInput(ctx context.Context, patterns []string, opts *options, stdin io.Reader, logger *slog.Logger) (<-chan model.RawLine, error) {
	if len(patterns) == 0 {
		return tailer.ReadLines(ctx, stdin, "stdin", logger), nil
	}

	w, err := watcher.New(patterns, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if len(w.Paths()) == 0 {
		return nil, fmt.Errorf("no files matched the given patterns: %v", patterns)
	}
	for _, p := range w.Paths() {
		logger.Info("following file", "path", p)
	}

	var ckpt *tailer.Checkpoint
	if opts.state != "" {
		ckpt, err = tailer.NewCheckpoint(opts.state)
		if err != nil {
			return nil, fmt.Errorf("failed to load checkpoint: %w", err)
		}
	}

	t := tailer.New(w, ckpt, logger)
	go w.Start(ctx)
	go t.Start(ctx)

	return t.Lines(), nil
}
