package app

import (
	"context"
	"fmt"

	"github.com/machibo/backoffice/internal/domain"
	"github.com/machibo/backoffice/internal/errors"
	"github.com/machibo/backoffice/internal/hooks"
)

// DecisionClient approves and rejects withdrawals.
type DecisionClient interface {
	ApproveWithdrawal(ctx context.Context, decision domain.WithdrawalDecision) (string, error)
	RejectWithdrawal(ctx context.Context, decision domain.WithdrawalDecision) (string, error)
}

// HookRunner runs operator scripts for a hook point.
type HookRunner interface {
	Run(ctx context.Context, point string, env map[string]string) error
}

// DecisionUseCase decides withdrawals and always toasts the outcome.
type DecisionUseCase struct {
	client DecisionClient
	toasts errors.ErrorHandler
	hooks  HookRunner
}

// NewDecisionUseCase creates a decision use-case.
func NewDecisionUseCase(client DecisionClient, toasts errors.ErrorHandler) *DecisionUseCase {
	if client == nil {
		panic("NewDecisionUseCase: client dependency cannot be nil")
	}
	if toasts == nil {
		panic("NewDecisionUseCase: toast handler dependency cannot be nil")
	}
	return &DecisionUseCase{client: client, toasts: toasts}
}

// WithHooks runs post-decision scripts after every successful decision.
func (u *DecisionUseCase) WithHooks(h HookRunner) *DecisionUseCase {
	u.hooks = h
	return u
}

// Approve approves withdrawal id.
func (u *DecisionUseCase) Approve(ctx context.Context, id int64, remark string) error {
	msg, err := u.client.ApproveWithdrawal(ctx, domain.WithdrawalDecision{ID: id, Remark: remark})
	errors.ToastOutcome(u.toasts, "Approve", msg, err)
	if err != nil {
		return fmt.Errorf("approve withdrawal %d: %w", id, err)
	}
	u.runHooks(ctx, id, "approve", remark)
	return nil
}

// Reject rejects withdrawal id.
func (u *DecisionUseCase) Reject(ctx context.Context, id int64, remark string) error {
	msg, err := u.client.RejectWithdrawal(ctx, domain.WithdrawalDecision{ID: id, Remark: remark})
	errors.ToastOutcome(u.toasts, "Reject", msg, err)
	if err != nil {
		return fmt.Errorf("reject withdrawal %d: %w", id, err)
	}
	u.runHooks(ctx, id, "reject", remark)
	return nil
}

// runHooks never fails the decision, which the server already applied.
func (u *DecisionUseCase) runHooks(ctx context.Context, id int64, decision, remark string) {
	if u.hooks == nil {
		return
	}
	if err := u.hooks.Run(ctx, hooks.PointPostDecision, hooks.PostDecisionEnv(id, decision, remark)); err != nil {
		u.toasts.Warning(err.Error())
	}
}
