package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ricardonunez-io/logsleuth/internal/status"
	"github.com/spf13/cobra"
)

func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status SERVICE",
		Short: "Print the health report of a service",
		Long: `Print the health report the model sees through the check_server_status tool.

STATUS_SOURCE=mock (default) serves canned reports for order-service,
auth-service and payment-service. STATUS_SOURCE=datadog builds the report
from the service's recent Datadog logs.`,
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			source, err := LoadSettings().NewStatusSource()
			if err != nil {
				return nil, cobra.ShellCompDirectiveError
			}
			if mock, ok := source.(*status.Mock); ok {
				return mock.Services(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			service := strings.TrimSpace(args[0])
			if service == "" {
				return fmt.Errorf("service name must not be blank")
			}

			source, err := LoadSettings().NewStatusSource()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, strings.TrimSpace(source.Fetch(cmd.Context(), service)))
			if mock, ok := source.(*status.Mock); ok && !slices.Contains(mock.Services(), service) {
				fmt.Fprintf(out, "\nKnown services: %s\n", strings.Join(mock.Services(), ", "))
			}
			return nil
		},
	}
}
