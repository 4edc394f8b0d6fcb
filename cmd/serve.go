package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ricardonunez-io/logsleuth/internal/server"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func NewServeCmd() *cobra.Command {
	var listenAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings := LoadSettings()
			if listenAddr != "" {
				settings.ListenAddr = listenAddr
			}

			agent, err := settings.NewAgent()
			if err != nil {
				return err
			}
			statusSource, err := settings.NewStatusSource()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			go func() {
				sigChan := make(chan os.Signal, 1)
				signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
				sig := <-sigChan
				log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
				cancel()
			}()

			cfg := server.DefaultConfig()
			cfg.ListenAddr = settings.ListenAddr

			log.Info().
				Str("addr", cfg.ListenAddr).
				Str("model", settings.LLM.Model).
				Str("statusSource", settings.StatusSource).
				Msg("Starting Logsleuth API")

			return server.New(agent, statusSource, cfg).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address (overrides LISTEN_ADDR)")

	return cmd
}
