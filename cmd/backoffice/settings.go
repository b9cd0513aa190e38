package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/machibo/backoffice/cmd"
	"github.com/machibo/backoffice/internal/app"
	"github.com/machibo/backoffice/internal/settings"
)

const settingsCommandLong = `Manage operator preferences.

USAGE:
    backoffice settings <subcommand>

SUBCOMMANDS:
    show                 Display current preferences
    set <key> <value>    Change one preference (muted, per_page, alert_sound)
    reset                Reset preferences to defaults

EXAMPLES:
    backoffice settings set per_page 25
    backoffice settings reset --force`

// NewSettingsCmd creates the settings command with explicit dependencies.
func NewSettingsCmd(client func() app.SettingsClient) *cobra.Command {
	if client == nil {
		panic("NewSettingsCmd: client dependency cannot be nil")
	}

	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage operator preferences",
		Long:  settingsCommandLong,
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Display current preferences",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return app.NewSettingsUseCase(client()).Show(c.OutOrStdout())
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one preference",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return app.NewSettingsUseCase(client()).Set(args[0], args[1])
		},
	}

	var force bool
	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset preferences to defaults",
		Long: `Reset preferences to defaults by deleting the preferences file.

OPTIONS:
    --force    Reset without confirmation`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return app.NewSettingsUseCase(client()).Reset(app.ResetSettingsInput{
				Force: force,
				ConfirmFn: func() bool {
					return confirmReset(c.InOrStdin(), c.OutOrStdout())
				},
			})
		},
	}
	resetCmd.Flags().BoolVar(&force, "force", false, "Reset without confirmation")

	settingsCmd.AddCommand(showCmd, setCmd, resetCmd)
	return settingsCmd
}

// confirmReset treats anything but y or yes, including read errors, as no.
func confirmReset(in io.Reader, out io.Writer) bool {
	_, _ = fmt.Fprint(out, "Are you sure you want to reset all preferences to defaults? (y/N): ")
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes"
}

func defaultSettingsClient() app.SettingsClient {
	return settings.DefaultStore()
}

var settingsCmd = NewSettingsCmd(defaultSettingsClient)

func init() {
	cmd.RootCmd.AddCommand(settingsCmd)
}
