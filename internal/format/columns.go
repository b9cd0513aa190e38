package format

import (
	"strconv"
	"strings"

	"github.com/machibo/backoffice/internal/domain"
)

func id(v int64) string { return strconv.FormatInt(v, 10) }

// timestamp trims an API timestamp to "YYYY-MM-DD HH:MM:SS".
func timestamp(ts string) string {
	ts = strings.Replace(ts, "T", " ", 1)
	if len(ts) > 19 {
		ts = ts[:19]
	}
	return ts
}

// WithdrawalColumns lists withdrawals.
var WithdrawalColumns = []Column[domain.Withdrawal]{
	{Name: "ID", Width: 8, Align: AlignRight, Value: func(w domain.Withdrawal) string { return id(w.ID) }},
	{Name: "Date", Width: 19, Value: func(w domain.Withdrawal) string { return timestamp(w.CreatedAt) }},
	{Name: "Username", Width: 16, Value: func(w domain.Withdrawal) string { return w.Username }},
	{Name: "Amount", Width: 12, Align: AlignRight, Value: func(w domain.Withdrawal) string { return w.Amount.String() }},
	{Name: "Bank", Width: 10, Value: func(w domain.Withdrawal) string { return w.BankName }},
	{Name: "Account", Width: 20, Value: func(w domain.Withdrawal) string { return w.AccountNumber + " " + w.AccountName }},
	{Name: "Status", Width: 9, Value: func(w domain.Withdrawal) string { return string(w.Status) }},
}

// WithdrawalLogColumns lists withdrawal audit entries.
var WithdrawalLogColumns = []Column[domain.WithdrawalLog]{
	{Name: "ID", Width: 8, Align: AlignRight, Value: func(l domain.WithdrawalLog) string { return id(l.ID) }},
	{Name: "Date", Width: 19, Value: func(l domain.WithdrawalLog) string { return timestamp(l.CreatedAt) }},
	{Name: "Withdrawal", Width: 10, Align: AlignRight, Value: func(l domain.WithdrawalLog) string { return id(l.WithdrawalID) }},
	{Name: "Username", Width: 16, Value: func(l domain.WithdrawalLog) string { return l.Username }},
	{Name: "Action", Width: 10, Value: func(l domain.WithdrawalLog) string { return l.Action }},
	{Name: "Operator", Width: 12, Value: func(l domain.WithdrawalLog) string { return l.Operator }},
	{Name: "Remark", Width: 24, Value: func(l domain.WithdrawalLog) string { return l.Remark }},
}

// MemberColumns lists members.
var MemberColumns = []Column[domain.Member]{
	{Name: "ID", Width: 8, Align: AlignRight, Value: func(m domain.Member) string { return id(m.ID) }},
	{Name: "Username", Width: 16, Value: func(m domain.Member) string { return m.Username }},
	{Name: "Name", Width: 20, Value: func(m domain.Member) string { return m.Name }},
	{Name: "Phone", Width: 14, Value: func(m domain.Member) string { return m.Phone }},
	{Name: "Balance", Width: 12, Align: AlignRight, Value: func(m domain.Member) string { return m.Balance.String() }},
	{Name: "Status", Width: 10, Value: func(m domain.Member) string { return m.Status }},
	{Name: "Joined", Width: 19, Value: func(m domain.Member) string { return timestamp(m.CreatedAt) }},
}

// GameWalletColumns lists a member's provider balances.
var GameWalletColumns = []Column[domain.GameWallet]{
	{Name: "Provider", Width: 16, Value: func(g domain.GameWallet) string { return g.Provider }},
	{Name: "Balance", Width: 14, Align: AlignRight, Value: func(g domain.GameWallet) string { return g.Balance.String() }},
	{Name: "Currency", Width: 8, Value: func(g domain.GameWallet) string { return g.Currency }},
}

// WalletLogColumns lists wallet movements.
var WalletLogColumns = []Column[domain.WalletLog]{
	{Name: "Date", Width: 19, Value: func(l domain.WalletLog) string { return timestamp(l.CreatedAt) }},
	{Name: "Username", Width: 16, Value: func(l domain.WalletLog) string { return l.Username }},
	{Name: "Type", Width: 12, Value: func(l domain.WalletLog) string { return l.Type }},
	{Name: "Amount", Width: 12, Align: AlignRight, Value: func(l domain.WalletLog) string { return l.Amount.String() }},
	{Name: "Before", Width: 12, Align: AlignRight, Value: func(l domain.WalletLog) string { return l.BalanceBefore.String() }},
	{Name: "After", Width: 12, Align: AlignRight, Value: func(l domain.WalletLog) string { return l.BalanceAfter.String() }},
	{Name: "Remark", Width: 20, Value: func(l domain.WalletLog) string { return l.Remark }},
}

// PromotionLogColumns lists claimed promotions.
var PromotionLogColumns = []Column[domain.PromotionLog]{
	{Name: "Date", Width: 19, Value: func(l domain.PromotionLog) string { return timestamp(l.CreatedAt) }},
	{Name: "Username", Width: 16, Value: func(l domain.PromotionLog) string { return l.Username }},
	{Name: "Promotion", Width: 24, Value: func(l domain.PromotionLog) string { return l.Promotion }},
	{Name: "Amount", Width: 12, Align: AlignRight, Value: func(l domain.PromotionLog) string { return l.Amount.String() }},
	{Name: "Status", Width: 10, Value: func(l domain.PromotionLog) string { return l.Status }},
}

// GameResultColumns lists settled bets.
var GameResultColumns = []Column[domain.GameResult]{
	{Name: "Date", Width: 19, Value: func(r domain.GameResult) string { return timestamp(r.CreatedAt) }},
	{Name: "Username", Width: 16, Value: func(r domain.GameResult) string { return r.Username }},
	{Name: "Provider", Width: 12, Value: func(r domain.GameResult) string { return r.Provider }},
	{Name: "Game", Width: 20, Value: func(r domain.GameResult) string { return r.Game }},
	{Name: "Bet", Width: 10, Align: AlignRight, Value: func(r domain.GameResult) string { return r.Bet.String() }},
	{Name: "Payout", Width: 10, Align: AlignRight, Value: func(r domain.GameResult) string { return r.Payout.String() }},
	{Name: "Result", Width: 6, Value: func(r domain.GameResult) string { return r.Result }},
}

// GameReportColumns lists per-game aggregates.
var GameReportColumns = []Column[domain.GameReport]{
	{Name: "Provider", Width: 12, Value: func(r domain.GameReport) string { return r.Provider }},
	{Name: "Game", Width: 24, Value: func(r domain.GameReport) string { return r.Game }},
	{Name: "Bets", Width: 6, Align: AlignRight, Value: func(r domain.GameReport) string { return strconv.Itoa(r.Bets) }},
	{Name: "Turnover", Width: 12, Align: AlignRight, Value: func(r domain.GameReport) string { return r.Turnover.String() }},
	{Name: "Win/Loss", Width: 12, Align: AlignRight, Value: func(r domain.GameReport) string { return r.WinLoss.String() }},
}

// BankColumns lists withdrawal banks.
var BankColumns = []Column[domain.WithdrawalBank]{
	{Name: "ID", Width: 4, Align: AlignRight, Value: func(b domain.WithdrawalBank) string { return id(b.ID) }},
	{Name: "Code", Width: 8, Value: func(b domain.WithdrawalBank) string { return b.Code }},
	{Name: "Name", Width: 28, Value: func(b domain.WithdrawalBank) string { return b.Name }},
	{Name: "Active", Width: 6, Value: func(b domain.WithdrawalBank) string { return strconv.FormatBool(b.Active) }},
}

// WithdrawalDetailFields lays out a withdrawal detail view.
func WithdrawalDetailFields(d domain.WithdrawalDetail) []Field {
	fields := []Field{
		{"ID", id(d.ID)},
		{"Status", string(d.Status)},
		{"Username", d.Username},
		{"Amount", d.Amount.String()},
		{"Bank", d.BankName},
		{"Account name", d.AccountName},
		{"Account number", d.AccountNumber},
		{"Balance", d.Balance.String()},
		{"Turnover required", d.TurnoverRequired.String()},
		{"Turnover completed", d.TurnoverCompleted.String()},
		{"Remark", d.Remark},
		{"Created", timestamp(d.CreatedAt)},
		{"Updated", timestamp(d.UpdatedAt)},
	}
	if d.Member != nil {
		fields = append(fields, Field{"Member status", d.Member.Status})
	}
	return fields
}

// MemberDetailFields lays out a member detail view.
func MemberDetailFields(d domain.MemberDetail) []Field {
	return []Field{
		{"ID", id(d.ID)},
		{"Username", d.Username},
		{"Name", d.Name},
		{"Phone", d.Phone},
		{"Email", d.Email},
		{"Status", d.Status},
		{"KYC", d.KYCStatus},
		{"Balance", d.Balance.String()},
		{"Bank", d.BankName},
		{"Account name", d.AccountName},
		{"Account number", d.AccountNumber},
		{"Referrer", d.Referrer},
		{"Total deposit", d.TotalDeposit.String()},
		{"Total withdrawal", d.TotalWithdrawal.String()},
		{"Joined", timestamp(d.CreatedAt)},
		{"Last login", timestamp(d.LastLoginAt)},
	}
}
