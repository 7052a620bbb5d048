package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/config"
	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/drafting"
)

var (
	cfgPath    string
	inputPath  string
	outputPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "draft-report",
		Short:         "Draft a report model from raw stage scores with an LLM",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runDraft,
	}
	f := rootCmd.Flags()
	f.StringVarP(&cfgPath, "config", "c", "", "Path to a config file (yaml, toml or json)")
	f.StringVarP(&inputPath, "input", "i", "", "Path to the scores JSON")
	f.StringVarP(&outputPath, "output", "o", "", "Path to write the model JSON (defaults to stdout)")
	_ = rootCmd.MarkFlagRequired("input")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runDraft(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	logger := config.NewLogger(cfg.Log, os.Stderr)
	ctx := logger.WithContext(cmd.Context())

	in, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	var scores drafting.Scores
	if err := json.Unmarshal(in, &scores); err != nil {
		return fmt.Errorf("decode scores: %w", err)
	}

	caller, err := drafting.NewAnthropicCallerFromEnv(cfg.Drafting.MaxTokens)
	if err != nil {
		return err
	}
	model, err := drafting.NewDrafter(caller).Draft(ctx, scores)
	if err != nil {
		return err
	}

	b, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	b = append(b, '\n')
	if outputPath == "" {
		_, err = os.Stdout.Write(b)
		return err
	}
	return os.WriteFile(outputPath, b, 0o644)
}
