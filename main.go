package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ricardonunez-io/logsleuth/cmd"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	_ "github.com/joho/godotenv/autoload"
)

var (
	version = "v0.1.0" // Overwritten at build time
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var debug bool

	rootCmd := &cobra.Command{
		Use:   "logsleuth",
		Short: "AI-assisted error log analysis",
		Long: `logsleuth takes a support complaint or an event ID, fetches the matching
service log, checks the health of the services involved and reports the
error code, affected module, risk level and a recommendation.`,
		SilenceUsage: true,
		PersistentPreRun: func(c *cobra.Command, _ []string) {
			setupLogging(debug, c.Name() == "serve")
		},
	}

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		cmd.NewAnalyzeCmd(),
		cmd.NewStatusCmd(),
		cmd.NewServeCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

func setupLogging(debug, jsonOutput bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if raw := strings.TrimSpace(os.Getenv("LOG_LEVEL")); raw != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(raw))
		if err != nil {
			log.Warn().Str("value", raw).Msg("Invalid LOG_LEVEL, defaulting to info")
		} else {
			level = parsed
		}
	}
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if !jsonOutput {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "logsleuth version %s\n", version)
		},
	}
}
