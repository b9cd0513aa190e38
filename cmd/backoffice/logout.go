package main

import (
	"github.com/spf13/cobra"

	"github.com/machibo/backoffice/cmd"
	"github.com/machibo/backoffice/internal/colors"
)

// NewLogoutCmd creates the logout command with explicit dependencies.
func NewLogoutCmd(runtime runtimeFunc) *cobra.Command {
	if runtime == nil {
		panic("NewLogoutCmd: runtime dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		Long: `Forget the stored access token and the last seen pending withdrawals.
Preferences such as mute are kept.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			rt, err := runtime()
			if err != nil {
				return err
			}
			if err := rt.Auth.Logout(); err != nil {
				return err
			}
			colors.Success("Signed out")
			return nil
		},
	}
}

var logoutCmd = NewLogoutCmd(openRuntime)

func init() {
	cmd.RootCmd.AddCommand(logoutCmd)
}
