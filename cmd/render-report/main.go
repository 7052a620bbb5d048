package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/assembler"
	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/config"
	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/pipeline"
	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/report"
	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/snapshot"
)

type options struct {
	cfgPath       string
	inputPath     string
	outputDir     string
	name          string
	department    string
	dashboardURL  string
	drawFromModel bool
}

func main() {
	var opts options
	rootCmd := &cobra.Command{
		Use:           "render-report",
		Short:         "Render an employee assessment report model to PDF",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}
	f := rootCmd.Flags()
	f.StringVarP(&opts.cfgPath, "config", "c", "", "Path to a config file (yaml, toml or json)")
	f.StringVarP(&opts.inputPath, "input", "i", "", "Path to the report model JSON")
	f.StringVarP(&opts.outputDir, "output-dir", "o", ".", "Directory to write the PDF into")
	f.StringVar(&opts.name, "name", "", "Employee name")
	f.StringVar(&opts.department, "department", "", "Employee department")
	f.StringVar(&opts.dashboardURL, "dashboard-url", "", "Live dashboard to capture charts from")
	f.BoolVar(&opts.drawFromModel, "draw-from-model", false, "Draw charts from the model when no dashboard is given")
	_ = rootCmd.MarkFlagRequired("input")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.cfgPath)
	if err != nil {
		return err
	}
	logger := config.NewLogger(cfg.Log, os.Stderr)
	ctx = logger.WithContext(ctx)

	in, err := os.Open(opts.inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	model, err := report.Decode(in)
	in.Close()
	if err != nil {
		return err
	}

	var view snapshot.View
	switch {
	case opts.dashboardURL != "":
		cv, err := snapshot.OpenChrome(ctx, opts.dashboardURL, cfg.ChromeOptions())
		if err != nil {
			logger.Warn().Err(err).Msg("dashboard unavailable, rendering without charts")
		} else {
			defer cv.Close()
			view = cv
		}
	case opts.drawFromModel || cfg.Capture.DrawFromModel:
		view = snapshot.NewModelView(model)
	}

	p := pipeline.New(
		assembler.New(assembler.WithPageSize(cfg.PageSize())),
		pipeline.WithCaptureOptions(cfg.CaptureOptions()...),
	)
	res, err := p.RunWithProgress(ctx, pipeline.Request{
		Subject: report.Subject{Name: opts.name, Department: opts.department},
		Model:   model,
		View:    view,
	}, func(stage, message string) {
		zerolog.Ctx(ctx).Info().Str("stage", stage).Msg(message)
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opts.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	out := filepath.Join(opts.outputDir, res.Document.Filename)
	if err := os.WriteFile(out, res.Document.PDF, 0o644); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	logger.Info().
		Str("path", out).
		Int("pages", res.Document.Pages).
		Int("missing_charts", len(res.Document.MissingCharts)).
		Msg("report written")
	return nil
}
