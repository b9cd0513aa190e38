package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/machibo/backoffice/cmd"
	"github.com/machibo/backoffice/internal/domain"
	"github.com/machibo/backoffice/internal/errors"
	"github.com/machibo/backoffice/internal/format"
)

// NewWithdrawalsCmd creates the withdrawals command tree with explicit dependencies.
func NewWithdrawalsCmd(runtime runtimeFunc) *cobra.Command {
	if runtime == nil {
		panic("NewWithdrawalsCmd: runtime dependency cannot be nil")
	}

	withdrawalsCmd := &cobra.Command{
		Use:     "withdrawals",
		Aliases: []string{"wd"},
		Short:   "Review and decide withdrawals",
		Long: `Review and decide withdrawals.

USAGE:
    backoffice withdrawals <list|logs|show|game-reports|approve|reject> [OPTIONS]`,
	}
	withdrawalsCmd.AddCommand(
		newWithdrawalListCmd(runtime),
		newWithdrawalLogsCmd(runtime),
		newWithdrawalShowCmd(runtime),
		newWithdrawalGameReportsCmd(runtime),
		newWithdrawalDecisionCmd(runtime, true),
		newWithdrawalDecisionCmd(runtime, false),
	)
	return withdrawalsCmd
}

func newWithdrawalListCmd(runtime runtimeFunc) *cobra.Command {
	var (
		pf       pageFlags
		df       dateFlags
		status   string
		username string
	)
	c := &cobra.Command{
		Use:   "list",
		Short: "List withdrawals",
		Long: `List withdrawals of the last two weeks, newest first.

EXAMPLES:
    backoffice withdrawals list --status pending
    backoffice withdrawals list --username alice --from 2026-10-01 --format json`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			out, err := pf.outputType()
			if err != nil {
				return err
			}
			filter := domain.DefaultWithdrawalFilter(now())
			filter.Status = domain.WithdrawalStatus(strings.ToUpper(status))
			filter.Username = username
			if err := df.apply(&filter.From, &filter.To); err != nil {
				return err
			}
			rt, err := runtime()
			if err != nil {
				return err
			}
			page, err := rt.Client.ListWithdrawals(c.Context(), filter, pf.request(rt))
			if err != nil {
				return err
			}
			return format.WritePage(c.OutOrStdout(), out, page, format.WithdrawalColumns)
		},
	}
	pf.register(c)
	df.register(c)
	c.Flags().StringVar(&status, "status", "", "Status: pending, approved, rejected")
	c.Flags().StringVarP(&username, "username", "u", "", "Member username")
	return c
}

func newWithdrawalLogsCmd(runtime runtimeFunc) *cobra.Command {
	var (
		pf       pageFlags
		df       dateFlags
		username string
	)
	c := &cobra.Command{
		Use:   "logs",
		Short: "List the withdrawal audit log",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			out, err := pf.outputType()
			if err != nil {
				return err
			}
			filter := domain.DefaultLogFilter(now())
			filter.Username = username
			if err := df.apply(&filter.From, &filter.To); err != nil {
				return err
			}
			rt, err := runtime()
			if err != nil {
				return err
			}
			page, err := rt.Client.WithdrawalLogs(c.Context(), filter, pf.request(rt))
			if err != nil {
				return err
			}
			return format.WritePage(c.OutOrStdout(), out, page, format.WithdrawalLogColumns)
		},
	}
	pf.register(c)
	df.register(c)
	c.Flags().StringVarP(&username, "username", "u", "", "Member username")
	return c
}

func newWithdrawalShowCmd(runtime runtimeFunc) *cobra.Command {
	var formatFlag string
	c := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one withdrawal with its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			out, err := format.ParseType(formatFlag)
			if err != nil {
				return err
			}
			rt, err := runtime()
			if err != nil {
				return err
			}
			d, err := rt.Client.WithdrawalDetail(c.Context(), id)
			if err != nil {
				return err
			}
			if out == format.TypeJSON {
				return format.WriteJSON(c.OutOrStdout(), d)
			}
			if err := format.WriteFields(c.OutOrStdout(), format.WithdrawalDetailFields(d)); err != nil {
				return err
			}
			if len(d.Logs) == 0 {
				return nil
			}
			_, _ = fmt.Fprintln(c.OutOrStdout())
			return format.WriteRows(c.OutOrStdout(), out, d.Logs, format.WithdrawalLogColumns)
		},
	}
	c.Flags().StringVar(&formatFlag, "format", "table", "Output format: table, json")
	return c
}

func newWithdrawalGameReportsCmd(runtime runtimeFunc) *cobra.Command {
	var formatFlag string
	c := &cobra.Command{
		Use:   "game-reports <id>",
		Short: "Show game activity behind a withdrawal",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			out, err := format.ParseType(formatFlag)
			if err != nil {
				return err
			}
			rt, err := runtime()
			if err != nil {
				return err
			}
			rows, err := rt.Client.WithdrawalGameReports(c.Context(), id)
			if err != nil {
				return err
			}
			return format.WriteRows(c.OutOrStdout(), out, rows, format.GameReportColumns)
		},
	}
	c.Flags().StringVar(&formatFlag, "format", "table", "Output format: table, compact, json")
	return c
}

func newWithdrawalDecisionCmd(runtime runtimeFunc, approve bool) *cobra.Command {
	use, short := "reject <id>", "Reject a pending withdrawal"
	if approve {
		use, short = "approve <id>", "Approve a pending withdrawal"
	}
	var remark string
	c := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			rt, err := runtime()
			if err != nil {
				return err
			}
			uc := rt.NewDecisionUseCase(errors.NewDefaultCLIHandler())
			if approve {
				err = uc.Approve(c.Context(), id, remark)
			} else {
				err = uc.Reject(c.Context(), id, remark)
			}
			if err != nil {
				return fmt.Errorf("%w: %w", cmd.ErrReported, err)
			}
			return nil
		},
	}
	c.Flags().StringVar(&remark, "remark", "", "Remark stored with the decision")
	return c
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

var withdrawalsCmd = NewWithdrawalsCmd(openRuntime)

func init() {
	cmd.RootCmd.AddCommand(withdrawalsCmd)
}
