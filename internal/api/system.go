package api

import (
	"context"

	"github.com/machibo/backoffice/internal/domain"
)

// WithdrawalBanks returns GET /system/withdrawal_banks.
func (c *Client) WithdrawalBanks(ctx context.Context) ([]domain.WithdrawalBank, error) {
	return getRows[domain.WithdrawalBank](ctx, c, "/system/withdrawal_banks", nil)
}
