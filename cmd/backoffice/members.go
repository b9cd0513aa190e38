package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/machibo/backoffice/cmd"
	"github.com/machibo/backoffice/internal/app"
	"github.com/machibo/backoffice/internal/domain"
	"github.com/machibo/backoffice/internal/format"
)

// NewMembersCmd creates the members command tree with explicit dependencies.
func NewMembersCmd(runtime runtimeFunc) *cobra.Command {
	if runtime == nil {
		panic("NewMembersCmd: runtime dependency cannot be nil")
	}

	membersCmd := &cobra.Command{
		Use:   "members",
		Short: "Look up members and their activity",
		Long: `Look up members and their activity.

USAGE:
    backoffice members <list|show|wallets|wallet-logs|promotion-logs|game-results|game-reports> [OPTIONS]`,
	}
	membersCmd.AddCommand(
		newMemberListCmd(runtime),
		newMemberShowCmd(runtime),
		newMemberWalletsCmd(runtime),
		newMemberLogCmd(runtime, "wallet-logs", "List wallet transactions", func(ctx context.Context, rt *app.Runtime, f domain.LogFilter, p domain.PageRequest, pf *pageFlags, c *cobra.Command) error {
			page, err := rt.Client.MemberWalletLogs(ctx, f, p)
			if err != nil {
				return err
			}
			return writePage(c, pf, page, format.WalletLogColumns)
		}),
		newMemberLogCmd(runtime, "promotion-logs", "List promotion claims", func(ctx context.Context, rt *app.Runtime, f domain.LogFilter, p domain.PageRequest, pf *pageFlags, c *cobra.Command) error {
			page, err := rt.Client.MemberPromotionLogs(ctx, f, p)
			if err != nil {
				return err
			}
			return writePage(c, pf, page, format.PromotionLogColumns)
		}),
		newMemberLogCmd(runtime, "game-results", "List game rounds", func(ctx context.Context, rt *app.Runtime, f domain.LogFilter, p domain.PageRequest, pf *pageFlags, c *cobra.Command) error {
			page, err := rt.Client.MemberGameResults(ctx, f, p)
			if err != nil {
				return err
			}
			return writePage(c, pf, page, format.GameResultColumns)
		}),
		newMemberGameReportsCmd(runtime),
	)
	return membersCmd
}

func writePage[T any](c *cobra.Command, pf *pageFlags, page domain.Page[T], columns []format.Column[T]) error {
	out, err := pf.outputType()
	if err != nil {
		return err
	}
	return format.WritePage(c.OutOrStdout(), out, page, columns)
}

func newMemberListCmd(runtime runtimeFunc) *cobra.Command {
	var (
		pf     pageFlags
		df     dateFlags
		filter domain.MemberFilter
	)
	c := &cobra.Command{
		Use:   "list",
		Short: "List members registered in the date window",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			if _, err := pf.outputType(); err != nil {
				return err
			}
			f := domain.DefaultMemberFilter(now())
			f.Username, f.Name, f.Phone, f.Status = filter.Username, filter.Name, filter.Phone, filter.Status
			if err := df.apply(&f.From, &f.To); err != nil {
				return err
			}
			rt, err := runtime()
			if err != nil {
				return err
			}
			page, err := rt.Client.ListMembers(c.Context(), f, pf.request(rt))
			if err != nil {
				return err
			}
			return writePage(c, &pf, page, format.MemberColumns)
		},
	}
	pf.register(c)
	df.register(c)
	c.Flags().StringVarP(&filter.Username, "username", "u", "", "Username")
	c.Flags().StringVar(&filter.Name, "name", "", "Full name")
	c.Flags().StringVar(&filter.Phone, "phone", "", "Phone number")
	c.Flags().StringVar(&filter.Status, "status", "", "Account status")
	return c
}

func newMemberShowCmd(runtime runtimeFunc) *cobra.Command {
	var formatFlag string
	c := &cobra.Command{
		Use:   "show <username>",
		Short: "Show one member",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			out, err := format.ParseType(formatFlag)
			if err != nil {
				return err
			}
			rt, err := runtime()
			if err != nil {
				return err
			}
			d, err := rt.Client.MemberByUsername(c.Context(), args[0])
			if err != nil {
				return err
			}
			if out == format.TypeJSON {
				return format.WriteJSON(c.OutOrStdout(), d)
			}
			return format.WriteFields(c.OutOrStdout(), format.MemberDetailFields(d))
		},
	}
	c.Flags().StringVar(&formatFlag, "format", "table", "Output format: table, json")
	return c
}

func newMemberWalletsCmd(runtime runtimeFunc) *cobra.Command {
	var formatFlag string
	c := &cobra.Command{
		Use:   "wallets <username>",
		Short: "Show game wallet balances",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			out, err := format.ParseType(formatFlag)
			if err != nil {
				return err
			}
			rt, err := runtime()
			if err != nil {
				return err
			}
			rows, err := rt.Client.MemberGameWallets(c.Context(), args[0])
			if err != nil {
				return err
			}
			return format.WriteRows(c.OutOrStdout(), out, rows, format.GameWalletColumns)
		},
	}
	c.Flags().StringVar(&formatFlag, "format", "table", "Output format: table, compact, json")
	return c
}

type memberLogFunc func(ctx context.Context, rt *app.Runtime, filter domain.LogFilter, page domain.PageRequest, pf *pageFlags, c *cobra.Command) error

func newMemberLogCmd(runtime runtimeFunc, use, short string, run memberLogFunc) *cobra.Command {
	var (
		pf pageFlags
		df dateFlags
	)
	c := &cobra.Command{
		Use:   use + " <username>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			if _, err := pf.outputType(); err != nil {
				return err
			}
			filter := domain.DefaultLogFilter(now())
			filter.Username = args[0]
			if err := df.apply(&filter.From, &filter.To); err != nil {
				return err
			}
			rt, err := runtime()
			if err != nil {
				return err
			}
			return run(c.Context(), rt, filter, pf.request(rt), &pf, c)
		},
	}
	pf.register(c)
	df.register(c)
	return c
}

func newMemberGameReportsCmd(runtime runtimeFunc) *cobra.Command {
	var (
		df         dateFlags
		formatFlag string
	)
	c := &cobra.Command{
		Use:   "game-reports <username>",
		Short: "Summarize game activity per provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			out, err := format.ParseType(formatFlag)
			if err != nil {
				return err
			}
			filter := domain.DefaultLogFilter(now())
			filter.Username = args[0]
			if err := df.apply(&filter.From, &filter.To); err != nil {
				return err
			}
			rt, err := runtime()
			if err != nil {
				return err
			}
			rows, err := rt.Client.MemberGameReports(c.Context(), filter)
			if err != nil {
				return err
			}
			return format.WriteRows(c.OutOrStdout(), out, rows, format.GameReportColumns)
		},
	}
	df.register(c)
	c.Flags().StringVar(&formatFlag, "format", "table", "Output format: table, compact, json")
	return c
}

var membersCmd = NewMembersCmd(openRuntime)

func init() {
	cmd.RootCmd.AddCommand(membersCmd)
}
