package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/archive"
	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/assembler"
	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/config"
	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/pipeline"
	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/server"
	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/tracing"
)

var cfgPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "report-server",
		Short:         "Serve report rendering and the report archive over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServer,
	}
	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to a config file (yaml, toml or json)")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	logger := config.NewLogger(cfg.Log, os.Stdout)
	ctx := logger.WithContext(cmd.Context())

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing.Endpoint, cfg.Tracing.ServiceName)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("tracing shutdown failed")
		}
	}()

	if err := os.MkdirAll(filepath.Dir(cfg.Archive.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create archive dir: %w", err)
	}
	store, err := archive.Open(cfg.Archive.Path)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer store.Close()

	renderer := pipeline.New(
		assembler.New(assembler.WithPageSize(cfg.PageSize())),
		pipeline.WithCaptureOptions(cfg.CaptureOptions()...),
	)
	srv := server.New(logger, server.Config{
		Addr:            cfg.Server.Addr,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		DrawFromModel:   cfg.Capture.DrawFromModel,
	}, server.Dependencies{
		Renderer: renderer,
		Archive:  store,
		OpenView: server.ChromeOpener(cfg.ChromeOptions()),
	})

	logger.Info().
		Str("archive", cfg.Archive.Path).
		Bool("tracing", cfg.Tracing.Endpoint != "").
		Msg("configuration loaded")
	return srv.ListenAndServe(ctx)
}
