package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/ricardonunez-io/logsleuth/internal/formatter"
	slackpkg "github.com/ricardonunez-io/logsleuth/internal/slack"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type analyzeOptions struct {
	outputFormat string
	notify       bool
}

func NewAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze INPUT",
		Short: "Diagnose the error behind an event ID",
		Long: `Fetch the log recorded for an event, let the model inspect it and print a
structured diagnosis.

Examples:
  # Bare event ID
  logsleuth analyze DJC-CF-1211212348-8RJKIC-529-425718

  # A user complaint that contains the event ID
  logsleuth analyze "coupons do not load, my serial is DJC-CF-1211212348-8RJKIC-529-425718"

  # Machine-readable output, posted to Slack as well
  logsleuth analyze AMS-H2-20251218-ABC123 -o json --notify`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outputFormat, "output", "o", formatter.FormatHuman, "Output format (human, json, yaml)")
	cmd.Flags().BoolVar(&opts.notify, "notify", false, "Post the report to Slack")

	return cmd
}

func runAnalyze(cmd *cobra.Command, input string, opts *analyzeOptions) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("input must not be blank")
	}
	if !formatter.ValidFormat(opts.outputFormat) {
		return fmt.Errorf("unknown output format %q (want one of %s)", opts.outputFormat, strings.Join(formatter.Formats, ", "))
	}

	settings := LoadSettings()
	if opts.notify && !settings.Slack.Enabled() {
		return slackpkg.ErrNotConfigured
	}

	agent, err := settings.NewAgent()
	if err != nil {
		return err
	}

	human := opts.outputFormat == formatter.FormatHuman
	if human {
		printHeader(input, settings.LLM.Model)
	}

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " Analyzing with AI..."
	if human {
		s.Start()
	}

	result, err := agent.Analyze(cmd.Context(), input)
	s.Stop()
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	if human {
		printSuccess("Analysis complete")
	}

	if err := formatter.Display(cmd.OutOrStdout(), result, opts.outputFormat); err != nil {
		return err
	}

	if opts.notify {
		if err := slackpkg.SendReport(cmd.Context(), result, settings.Slack); err != nil {
			return fmt.Errorf("slack error: %w", err)
		}
		log.Info().Str("eventId", result.EventID).Msg("Report sent to Slack")
	}

	return nil
}

func printHeader(input, model string) {
	cyan := color.New(color.FgCyan, color.Bold)
	fmt.Fprintln(os.Stderr)
	cyan.Fprintln(os.Stderr, "🔍 Logsleuth Error Analyzer")
	fmt.Fprintf(os.Stderr, "📝 Input: %s\n", input)
	fmt.Fprintf(os.Stderr, "🤖 Model: %s\n", model)
	fmt.Fprintln(os.Stderr)
}

func printSuccess(msg string) {
	green := color.New(color.FgGreen)
	green.Fprintf(os.Stderr, "✓ %s\n", msg)
}
