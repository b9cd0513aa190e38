// Package cmd holds the root command shared by the backoffice binary.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/machibo/backoffice/internal/colors"
	"github.com/machibo/backoffice/internal/config"
	"github.com/machibo/backoffice/internal/logging"
	"github.com/machibo/backoffice/internal/version"
)

var (
	debugFlag bool
	quietFlag bool
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:           "backoffice",
	Short:         "Operator console for the back-office API.",
	Long:          `Operator console for the back-office API: members, withdrawals and the pending queue.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.Load()
		colors.SetDebug(debugFlag || config.GetBool("debug", false))
		colors.SetQuiet(quietFlag || config.GetBool("quiet", false))
		if err := logging.InitGlobal(); err != nil {
			colors.Warning(fmt.Sprintf("logging disabled: %v", err))
		}
		return nil
	},
}

// ErrReported marks an error the command already showed to the operator.
var ErrReported = errors.New("already reported")

// Execute runs the root command. Errors are printed here so that every
// command reports them the same way.
func Execute() error {
	err := RootCmd.Execute()
	if err != nil && !errors.Is(err, ErrReported) {
		colors.Error(err.Error())
	}
	return err
}

func init() {
	RootCmd.Version = version.String()
	RootCmd.CompletionOptions.HiddenDefaultCmd = true
	RootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Print debug output")
	RootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress informational output")

	RootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != cmd.Root() {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), cmd.Long)
			_, _ = fmt.Fprintln(cmd.OutOrStdout())
			_, _ = fmt.Fprint(cmd.OutOrStdout(), cmd.UsageString())
			return
		}
		printHelpText(cmd, cmd.OutOrStdout())
	})
}

// commandOrder is the order commands appear in the root help.
var commandOrder = []string{
	"login",
	"logout",
	"status",
	"withdrawals",
	"members",
	"banks",
	"watch",
	"tui",
	"mute",
	"unmute",
	"settings",
	"help",
	"version",
}

func printHelpText(cmd *cobra.Command, w io.Writer) {
	var cmdLines []string
	for _, name := range commandOrder {
		var found *cobra.Command
		for _, c := range cmd.Commands() {
			if c.Name() == name {
				found = c
				break
			}
		}
		if found == nil {
			continue
		}
		cmdLines = append(cmdLines, fmt.Sprintf("    %-16s %s", found.Name(), found.Short))
	}

	helpText := fmt.Sprintf(`backoffice %s

%s

USAGE:
    backoffice [COMMAND] [OPTIONS]

COMMANDS:
%s

OPTIONS:
    --debug         Print debug output
    -q, --quiet     Suppress informational output
    -h, --help      Show help message

Configuration is read from %s and BACKOFFICE_* environment variables.
`, version.String(), cmd.Short, strings.Join(cmdLines, "\n"), config.Path())
	_, _ = fmt.Fprint(w, helpText)
}
