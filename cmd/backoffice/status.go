package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/machibo/backoffice/cmd"
	"github.com/machibo/backoffice/internal/app"
	"github.com/machibo/backoffice/internal/colors"
)

// NewStatusCmd creates the status command with explicit dependencies.
func NewStatusCmd(runtime runtimeFunc) *cobra.Command {
	if runtime == nil {
		panic("NewStatusCmd: runtime dependency cannot be nil")
	}

	var formatFlag string

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show session and pending queue status",
		Long: `Show the session state, API endpoint, mute preference and the number of
pending withdrawals.

USAGE:
    backoffice status [OPTIONS]

OPTIONS:
    --format=<format>    Output format: summary, json (default: summary)
    -h, --help           Show this help`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			if err := app.ValidateStatusFormat(formatFlag); err != nil {
				return err
			}
			rt, err := runtime()
			if err != nil {
				return err
			}
			if _, err := rt.Restore(c.Context()); err != nil {
				colors.Warning(fmt.Sprintf("Could not validate the saved session: %v", err))
			}
			uc := app.NewStatusUseCase(rt.Sessions, rt.Client, rt.KV, rt.Settings, rt.Client.BaseURL())
			return uc.Execute(c.Context(), formatFlag, c.OutOrStdout())
		},
	}

	statusCmd.Flags().StringVar(&formatFlag, "format", "summary", "Output format: summary, json")
	return statusCmd
}

var statusCmd = NewStatusCmd(openRuntime)

func init() {
	cmd.RootCmd.AddCommand(statusCmd)
}
