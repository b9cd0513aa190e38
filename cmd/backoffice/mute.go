package main

import (
	"github.com/spf13/cobra"

	"github.com/machibo/backoffice/cmd"
	"github.com/machibo/backoffice/internal/colors"
	"github.com/machibo/backoffice/internal/settings"
)

type muteClient interface {
	SetMuted(muted bool) error
}

// NewMuteCmd creates the mute or unmute command with explicit dependencies.
func NewMuteCmd(client func() muteClient, muted bool) *cobra.Command {
	if client == nil {
		panic("NewMuteCmd: client dependency cannot be nil")
	}

	use, short, done := "unmute", "Play a sound for new pending withdrawals", "Alerts unmuted"
	if muted {
		use, short, done = "mute", "Silence the new pending withdrawal sound", "Alerts muted"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  short + ". The preference is kept across sessions and logouts.",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			if err := client().SetMuted(muted); err != nil {
				return err
			}
			colors.Success(done)
			return nil
		},
	}
}

// defaultMuteClient resolves the preferences file after config is loaded.
func defaultMuteClient() muteClient {
	return settings.DefaultStore()
}

var (
	muteCmd   = NewMuteCmd(defaultMuteClient, true)
	unmuteCmd = NewMuteCmd(defaultMuteClient, false)
)

func init() {
	cmd.RootCmd.AddCommand(muteCmd, unmuteCmd)
}
