package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/machibo/backoffice/internal/domain"
	"github.com/machibo/backoffice/internal/poller"
	"github.com/machibo/backoffice/internal/session"
	"github.com/machibo/backoffice/internal/storage"
)

// StatusInfo summarizes the local session and the pending queue.
type StatusInfo struct {
	Session       session.Status `json:"session"`
	APIBaseURL    string         `json:"api_base_url"`
	Muted         bool           `json:"muted"`
	Pending       *int           `json:"pending,omitempty"`
	StoredPending int            `json:"stored_pending"`
	Error         string         `json:"error,omitempty"`
}

// StatusUseCase collects StatusInfo.
type StatusUseCase struct {
	sessions *session.Store
	lister   poller.Lister
	kv       storage.Store
	mute     poller.MuteSource
	baseURL  string
}

// NewStatusUseCase creates a status use-case.
func NewStatusUseCase(sessions *session.Store, lister poller.Lister, kv storage.Store, mute poller.MuteSource, baseURL string) *StatusUseCase {
	if sessions == nil || lister == nil || kv == nil {
		panic("NewStatusUseCase: dependencies cannot be nil")
	}
	return &StatusUseCase{sessions: sessions, lister: lister, kv: kv, mute: mute, baseURL: baseURL}
}

// ValidateStatusFormat validates status output format.
func ValidateStatusFormat(formatValue string) error {
	switch formatValue {
	case "summary", "json":
		return nil
	default:
		return fmt.Errorf("status: unknown format: %s", formatValue)
	}
}

// Collect gathers the status. The pending count is fetched only when a
// token is held; a failed fetch is reported in Error.
func (u *StatusUseCase) Collect(ctx context.Context) StatusInfo {
	info := StatusInfo{APIBaseURL: u.baseURL}
	if u.mute != nil {
		info.Muted = u.mute.Muted()
	}
	var stored []int64
	if _, err := storage.GetJSON(u.kv, storage.KeyPendingWithdrawalIDs, &stored); err == nil {
		info.StoredPending = len(stored)
	}

	if u.sessions.Token() != "" {
		page, err := u.lister.ListWithdrawals(ctx,
			domain.WithdrawalFilter{Status: domain.WithdrawalPending},
			domain.PageRequest{Page: 1, PerPage: 1})
		if err != nil {
			info.Error = err.Error()
		} else {
			total := page.Pagination.Total
			info.Pending = &total
		}
	}
	info.Session = u.sessions.Status()
	return info
}

// Execute writes the status in formatValue.
func (u *StatusUseCase) Execute(ctx context.Context, formatValue string, w io.Writer) error {
	if err := ValidateStatusFormat(formatValue); err != nil {
		return err
	}
	info := u.Collect(ctx)
	if formatValue == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	_, _ = fmt.Fprintf(w, "Session:  %s\n", info.Session)
	_, _ = fmt.Fprintf(w, "API:      %s\n", info.APIBaseURL)
	_, _ = fmt.Fprintf(w, "Muted:    %t\n", info.Muted)
	if info.Pending != nil {
		_, _ = fmt.Fprintf(w, "Pending:  %d\n", *info.Pending)
	} else {
		_, _ = fmt.Fprintf(w, "Pending:  %d (last seen)\n", info.StoredPending)
	}
	if info.Error != "" {
		_, _ = fmt.Fprintf(w, "Error:    %s\n", info.Error)
	}
	return nil
}
