package main

import (
	"github.com/spf13/cobra"

	"github.com/machibo/backoffice/cmd"
	"github.com/machibo/backoffice/internal/format"
)

// NewBanksCmd creates the banks command with explicit dependencies.
func NewBanksCmd(runtime runtimeFunc) *cobra.Command {
	if runtime == nil {
		panic("NewBanksCmd: runtime dependency cannot be nil")
	}

	var formatFlag string
	banksCmd := &cobra.Command{
		Use:   "banks",
		Short: "List banks accepted for withdrawals",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			out, err := format.ParseType(formatFlag)
			if err != nil {
				return err
			}
			rt, err := runtime()
			if err != nil {
				return err
			}
			rows, err := rt.Client.WithdrawalBanks(c.Context())
			if err != nil {
				return err
			}
			return format.WriteRows(c.OutOrStdout(), out, rows, format.BankColumns)
		},
	}
	banksCmd.Flags().StringVar(&formatFlag, "format", "table", "Output format: table, compact, json")
	return banksCmd
}

var banksCmd = NewBanksCmd(openRuntime)

func init() {
	cmd.RootCmd.AddCommand(banksCmd)
}
