package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/machibo/backoffice/cmd"
	"github.com/machibo/backoffice/internal/version"
)

type versionClient interface {
	Version() string
}

type buildInfo struct{}

func (buildInfo) Version() string { return version.String() }

// NewVersionCmd creates the version command with explicit dependencies.
func NewVersionCmd(client versionClient) *cobra.Command {
	if client == nil {
		panic("NewVersionCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Show the current version of backoffice.`,
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(c.OutOrStdout(), "backoffice version %s\n", client.Version())
			return err
		},
	}
}

var versionCmd = NewVersionCmd(buildInfo{})

func init() {
	cmd.RootCmd.AddCommand(versionCmd)
}
