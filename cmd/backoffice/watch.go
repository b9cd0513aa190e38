package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/machibo/backoffice/cmd"
	"github.com/machibo/backoffice/internal/app"
	"github.com/machibo/backoffice/internal/audio"
	"github.com/machibo/backoffice/internal/poller"
)

// NewWatchCmd creates the watch command with explicit dependencies. A nil
// player selects the configured alert sound.
func NewWatchCmd(runtime runtimeFunc, player audio.Player) *cobra.Command {
	if runtime == nil {
		panic("NewWatchCmd: runtime dependency cannot be nil")
	}

	var armed bool

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch pending withdrawals and alert on new ones",
		Long: `Poll pending withdrawals while signed in and print each update.
A sound plays when new pending withdrawals appear, once alerts are armed
(press Enter or pass --armed) and unless muted.

USAGE:
    backoffice watch [OPTIONS]

OPTIONS:
    --armed        Arm sound alerts immediately
    -h, --help     Show this help`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			rt, err := runtime()
			if err != nil {
				return err
			}
			snap, err := rt.Restore(c.Context())
			if err != nil {
				return fmt.Errorf("watch: %w", err)
			}
			if !snap.Authenticated() {
				return fmt.Errorf("watch: not signed in, run 'backoffice login' first")
			}
			p := player
			if p == nil {
				p = alertPlayer(rt)
			}
			return app.NewWatchUseCase().Execute(c.Context(), app.WatchOptions{
				Poller:   rt.NewPoller(p, &poller.Gate{}),
				Sessions: rt.Sessions,
				Output:   c.OutOrStdout(),
				Input:    c.InOrStdin(),
				Armed:    armed,
			})
		},
	}

	watchCmd.Flags().BoolVar(&armed, "armed", false, "Arm sound alerts immediately")
	return watchCmd
}

var watchCmd = NewWatchCmd(openRuntime, nil)

func init() {
	cmd.RootCmd.AddCommand(watchCmd)
}
