package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/machibo/backoffice/cmd"
	"github.com/machibo/backoffice/internal/colors"
	tuiapp "github.com/machibo/backoffice/internal/tui/app"
)

// NewTUICmd creates the tui command with explicit dependencies. A nil runner
// starts a real terminal program.
func NewTUICmd(runtime runtimeFunc, runner tuiapp.ProgramRunner) *cobra.Command {
	if runtime == nil {
		panic("NewTUICmd: runtime dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive withdrawals console",
		Long: `Open the interactive withdrawals console.

KEYS:
    /, Tab         Edit filters (Enter searches, Esc returns)
    Enter          Search with the edited filters
    Ctrl+R         Clear filters to the last two weeks
    ←/→            Previous/next page
    +/-            More/fewer rows per page
    j/k            Move selection
    d              Show details
    a/x            Approve/reject the selected withdrawal
    m              Toggle the alert sound
    q, Ctrl+C      Quit`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			rt, err := runtime()
			if err != nil {
				return err
			}
			if _, err := rt.Restore(c.Context()); err != nil {
				colors.Warning(fmt.Sprintf("Could not validate the saved session: %v", err))
			}
			client := tuiapp.NewClient(rt, runner, alertPlayer(rt))
			return client.Run(c.Context())
		},
	}
}

var tuiCmd = NewTUICmd(openRuntime, nil)

func init() {
	cmd.RootCmd.AddCommand(tuiCmd)
}
