package domain

import "encoding/json"

// WithdrawalStatus is the server-side state of a withdrawal request.
type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "PENDING"
	WithdrawalApproved WithdrawalStatus = "APPROVED"
	WithdrawalRejected WithdrawalStatus = "REJECTED"
)

// Member is a row of the member list.
type Member struct {
	ID          int64       `json:"id"`
	Username    string      `json:"username"`
	Name        string      `json:"name"`
	Phone       string      `json:"phone"`
	Email       string      `json:"email,omitempty"`
	Status      string      `json:"status"`
	KYCStatus   string      `json:"kyc_status,omitempty"`
	Balance     json.Number `json:"balance"`
	CreatedAt   string      `json:"created_at"`
	LastLoginAt string      `json:"last_login_at,omitempty"`
}

// MemberDetail is the payload of GET /members/u/{username}.
type MemberDetail struct {
	Member
	BankName        string      `json:"bank_name,omitempty"`
	AccountName     string      `json:"account_name,omitempty"`
	AccountNumber   string      `json:"account_number,omitempty"`
	Referrer        string      `json:"referrer,omitempty"`
	TotalDeposit    json.Number `json:"total_deposit,omitempty"`
	TotalWithdrawal json.Number `json:"total_withdrawal,omitempty"`
}

// GameWallet is a member's balance at one game provider.
type GameWallet struct {
	Provider string      `json:"provider"`
	Balance  json.Number `json:"balance"`
	Currency string      `json:"currency,omitempty"`
}

// WalletLog is one wallet ledger movement.
type WalletLog struct {
	ID            int64       `json:"id"`
	Username      string      `json:"username"`
	Type          string      `json:"type"`
	Amount        json.Number `json:"amount"`
	BalanceBefore json.Number `json:"balance_before"`
	BalanceAfter  json.Number `json:"balance_after"`
	Remark        string      `json:"remark,omitempty"`
	CreatedAt     string      `json:"created_at"`
}

// PromotionLog records a promotion claimed by a member.
type PromotionLog struct {
	ID        int64       `json:"id"`
	Username  string      `json:"username"`
	Promotion string      `json:"promotion_name"`
	Amount    json.Number `json:"amount"`
	Status    string      `json:"status"`
	CreatedAt string      `json:"created_at"`
}

// GameResult is a single settled bet.
type GameResult struct {
	ID        int64       `json:"id"`
	Username  string      `json:"username"`
	Provider  string      `json:"provider"`
	Game      string      `json:"game_name"`
	Bet       json.Number `json:"bet"`
	Payout    json.Number `json:"payout"`
	Result    string      `json:"result"`
	CreatedAt string      `json:"created_at"`
}

// GameReport aggregates bets per provider and game.
type GameReport struct {
	Provider string      `json:"provider"`
	Game     string      `json:"game_name"`
	Bets     int         `json:"bets"`
	Turnover json.Number `json:"turnover"`
	WinLoss  json.Number `json:"win_loss"`
}

// Withdrawal is a row of the withdrawal list.
type Withdrawal struct {
	ID            int64            `json:"id"`
	Username      string           `json:"username"`
	Amount        json.Number      `json:"amount"`
	BankName      string           `json:"bank_name"`
	AccountName   string           `json:"account_name"`
	AccountNumber string           `json:"account_number"`
	Status        WithdrawalStatus `json:"status"`
	Remark        string           `json:"remark,omitempty"`
	CreatedAt     string           `json:"created_at"`
	UpdatedAt     string           `json:"updated_at,omitempty"`
}

// WithdrawalDetail is the payload of GET /withdrawals/details/{id}.
type WithdrawalDetail struct {
	Withdrawal
	Member            *Member         `json:"member,omitempty"`
	Balance           json.Number     `json:"balance,omitempty"`
	TurnoverRequired  json.Number     `json:"turnover_required,omitempty"`
	TurnoverCompleted json.Number     `json:"turnover_completed,omitempty"`
	Logs              []WithdrawalLog `json:"logs,omitempty"`
}

// WithdrawalLog is an audit entry for a withdrawal decision.
type WithdrawalLog struct {
	ID           int64  `json:"id"`
	WithdrawalID int64  `json:"withdrawal_id"`
	Username     string `json:"username"`
	Action       string `json:"action"`
	Operator     string `json:"operator"`
	Remark       string `json:"remark,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// WithdrawalBank is a bank accepted for withdrawals.
type WithdrawalBank struct {
	ID     int64  `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// WithdrawalDecision is the body of POST /withdrawals/approve and /withdrawals/reject.
type WithdrawalDecision struct {
	ID     int64  `json:"id"`
	Remark string `json:"remark,omitempty"`
}

// Credentials is the body of POST /auth/login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is the data of a successful login.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	ExpiresIn   int    `json:"expires_in,omitempty"`
	Username    string `json:"username,omitempty"`
}
