// Command researchbatch calls a deployed firecrawl-research endpoint many
// times in a row and reports how many calls succeeded.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tjfontaine/story-gateway/internal/batch"
	"github.com/tjfontaine/story-gateway/internal/config"
	"github.com/tjfontaine/story-gateway/internal/telemetry"
	"github.com/tjfontaine/story-gateway/internal/upstream"
)

type options struct {
	configPath string
	targetURL  string
	apiKey     string
	count      int
	delay      time.Duration
	content    string
	jsonOutput bool
	timeout    time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "researchbatch",
		Short: "Run sequential calls against the research endpoint",
		Long: `Run a batch of sequential research calls and summarize the outcome.

The endpoint, key, count and delay default to the batch section of
config.yaml (STORY_BATCH__* environment variables). Flags win.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", config.DefaultPath, "path to config.yaml")
	flags.StringVar(&opts.targetURL, "url", "", "research endpoint URL")
	flags.StringVar(&opts.apiKey, "key", "", "bearer token sent with every call")
	flags.IntVarP(&opts.count, "count", "n", 0, "number of calls")
	flags.DurationVar(&opts.delay, "delay", 0, "pause between calls")
	flags.StringVar(&opts.content, "content", batch.DefaultContent, "story text sent with every call")
	flags.BoolVar(&opts.jsonOutput, "json", false, "print the full report as JSON")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "per-call timeout")
	return cmd
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func runBatch(cmd *cobra.Command, opts *options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if !flags.Changed("url") {
		opts.targetURL = cfg.Batch.ResearchURL
	}
	if !flags.Changed("key") {
		opts.apiKey = cfg.Batch.APIKey
	}
	if !flags.Changed("count") {
		opts.count = cfg.Batch.Count
	}
	if !flags.Changed("delay") {
		opts.delay = cfg.Batch.Delay
	}
	if opts.targetURL == "" {
		return fmt.Errorf("no endpoint: pass --url or set batch.research_url")
	}

	logger, logCloser, err := telemetry.NewLogger(cmd.ErrOrStderr(), telemetry.LogConfig{Level: cfg.Log.Level})
	if err != nil {
		return err
	}
	defer logCloser.Close()

	out := cmd.OutOrStdout()
	runner := &batch.Runner{
		Caller: batch.HTTPCaller{
			URL:        opts.targetURL,
			APIKey:     opts.apiKey,
			HTTPClient: upstream.NewHTTPClient(upstream.ClientOptions{Timeout: opts.timeout}),
		},
		Count:    opts.count,
		Delay:    opts.delay,
		Content:  opts.content,
		Logger:   logger,
		OnResult: printResult(out),
	}
	if opts.jsonOutput {
		runner.OnResult = nil
	}

	report, runErr := runner.Run(cmd.Context())
	if report != nil {
		if opts.jsonOutput {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
		} else {
			printSummary(out, report)
		}
	}
	if runErr != nil {
		return runErr
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d calls failed", report.Failed, report.Total)
	}
	return nil
}

func printResult(out io.Writer) func(batch.Result) {
	ok := color.New(color.FgGreen)
	fail := color.New(color.FgRed)
	return func(r batch.Result) {
		if r.Success {
			ok.Fprintf(out, "#%-4d ok     %5dms\n", r.Index, r.Duration)
			return
		}
		fail.Fprintf(out, "#%-4d failed %5dms  %s\n", r.Index, r.Duration, r.Error)
	}
}

func printSummary(out io.Writer, report *batch.Report) {
	fmt.Fprintln(out)
	color.New(color.FgCyan, color.Bold).Fprintf(out, "Batch complete: %d calls\n", report.Total)
	color.New(color.FgGreen).Fprintf(out, "  successful: %d\n", report.Successful)
	failed := color.New(color.FgGreen)
	if report.Failed > 0 {
		failed = color.New(color.FgRed)
	}
	failed.Fprintf(out, "  failed:     %d\n", report.Failed)
	fmt.Fprintf(out, "  avg:        %dms\n", report.AvgDuration)
}
